package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danmakutv/server/internal/domain"
	roomService "github.com/danmakutv/server/internal/service/room"
)

type CreateRoomInput struct {
	OwnerId           string `json:"owner_id" validate:"required"`
	CommentCooldownMs int    `json:"comment_cooldown_ms" validate:"min=0,max=60000"`
	AllowComments     bool   `json:"allow_comments"`
	AllowAnonymous    bool   `json:"allow_anonymous"`
	ModerationLevel   int    `json:"moderation_level" validate:"min=0,max=3"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var input CreateRoomInput
	if !c.decodeAndValidate(w, r, &input) {
		return
	}

	createRoomResp, err := c.roomService.CreateRoom(r.Context(), &roomService.CreateRoomParams{
		OwnerId:           input.OwnerId,
		CommentCooldownMs: input.CommentCooldownMs,
		AllowComments:     input.AllowComments,
		AllowAnonymous:    input.AllowAnonymous,
		ModerationLevel:   input.ModerationLevel,
	})
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to create room", "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}

	c.writeJSON(w, http.StatusCreated, map[string]string{"room_id": createRoomResp.RoomId})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	room, err := c.roomService.GetRoom(r.Context(), roomId)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	c.writeJSON(w, http.StatusOK, room)
}

func (c controller) startBroadcast(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	if err := c.roomService.StartBroadcast(r.Context(), roomId); err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c controller) endBroadcast(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	endResp, err := c.roomService.EndBroadcast(r.Context(), roomId)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	// pending publishes to these subscribers are best-effort and discarded
	for _, client := range endResp.Clients {
		client.Conn.Close()
	}

	w.WriteHeader(http.StatusNoContent)
}

type UpdateRoomSettingsInput struct {
	UserId            string `json:"user_id" validate:"required"`
	CommentCooldownMs int    `json:"comment_cooldown_ms" validate:"min=0,max=60000"`
	AllowComments     bool   `json:"allow_comments"`
	AllowAnonymous    bool   `json:"allow_anonymous"`
	ModerationLevel   int    `json:"moderation_level" validate:"min=0,max=3"`
}

func (c controller) updateRoomSettings(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	var input UpdateRoomSettingsInput
	if !c.decodeAndValidate(w, r, &input) {
		return
	}

	if err := c.roomService.UpdateRoomSettings(r.Context(), &roomService.UpdateRoomSettingsParams{
		RoomId:            roomId,
		SenderUserId:      input.UserId,
		CommentCooldownMs: input.CommentCooldownMs,
		AllowComments:     input.AllowComments,
		AllowAnonymous:    input.AllowAnonymous,
		ModerationLevel:   input.ModerationLevel,
	}); err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type RegisterUserInput struct {
	UserId   string `json:"user_id" validate:"required"`
	Username string `json:"username" validate:"required,min=1,max=32"`
	Level    int    `json:"level" validate:"min=0,max=10"`
}

func (c controller) registerUser(w http.ResponseWriter, r *http.Request) {
	var input RegisterUserInput
	if !c.decodeAndValidate(w, r, &input) {
		return
	}

	if err := c.roomService.RegisterUser(r.Context(), &roomService.RegisterUserParams{
		UserId:   input.UserId,
		Username: input.Username,
		Level:    input.Level,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to register user", "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c controller) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, roomService.ErrRoomNotFound):
		c.writeError(w, http.StatusNotFound, "room not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		c.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, roomService.ErrPermissionDenied):
		c.writeError(w, http.StatusForbidden, "permission denied")
	default:
		c.logger.WarnContext(r.Context(), "request failed", "error", err)
		c.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

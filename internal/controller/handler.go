package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	roomService "github.com/danmakutv/server/internal/service/room"
)

// pongWait is how long a connection may stay silent before the heartbeat
// declares it dead: one ping interval plus grace.
func (c controller) pongWait() time.Duration {
	return c.heartbeatInterval + 10*time.Second
}

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")
	if roomId == "" {
		c.writeError(w, http.StatusBadRequest, "empty room id")
		return
	}

	var userId *string
	if v := r.URL.Query().Get("user-id"); v != "" {
		userId = &v
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	joinRoomResp, err := c.roomService.JoinRoom(r.Context(), &roomService.JoinRoomParams{
		RoomId: roomId,
		UserId: userId,
		Conn:   conn,
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to join room", "error", err)
		conn.WriteJSON(newOutput(eventError, map[string]string{"message": joinErrorMessage(err)}))
		return
	}

	client := joinRoomResp.Client
	c.metrics.connectionsOpen.Inc()
	defer c.metrics.connectionsOpen.Dec()
	defer c.disconnect(r.Context(), roomId, client.Id)

	go c.writePump(client)

	c.send(r.Context(), client, newOutput(eventRoomJoined, map[string]any{
		"room_id":         roomId,
		"viewer_count":    joinRoomResp.ViewerCount,
		"recent_comments": joinRoomResp.History,
	}))

	c.broadcast(r.Context(), joinRoomResp.Others, newOutput(eventViewerCount, map[string]int{
		"count": joinRoomResp.ViewerCount,
	}))

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(c.pongWait()))
		return nil
	})

	ctx := context.WithValue(r.Context(), roomIdCtxKey, roomId)
	ctx = context.WithValue(ctx, clientIdCtxKey, client.Id)
	ctx = context.WithValue(ctx, userIdCtxKey, userId)

	if err := c.wsmux.ServeConn(ctx, conn, func(ctx context.Context, err error) {
		c.logger.InfoContext(ctx, "ws message failed", "error", err)
	}); err != nil {
		c.logger.DebugContext(r.Context(), "connection closed", "error", err)
	}
}

// disconnect performs the leave cleanup shared by explicit close and
// heartbeat timeout.
func (c controller) disconnect(ctx context.Context, roomId, clientId string) {
	leaveResp, err := c.roomService.LeaveRoom(ctx, &roomService.LeaveRoomParams{
		RoomId:   roomId,
		ClientId: clientId,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to leave room", "error", err)
		return
	}

	c.broadcast(ctx, leaveResp.Others, newOutput(eventViewerCount, map[string]int{
		"count": leaveResp.ViewerCount,
	}))
}

func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, roomService.ErrRoomNotFound):
		return "room not found"
	case errors.Is(err, roomService.ErrRoomNotLive):
		return "room is not live"
	default:
		return "failed to join room"
	}
}

package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/danmakutv/server/internal/domain"
	"github.com/danmakutv/server/internal/registry"
	"github.com/danmakutv/server/internal/repository"
	"github.com/danmakutv/server/internal/repository/connection"
	"github.com/danmakutv/server/internal/scheduler"
)

const roomIdLength = 8

type CreateRoomParams struct {
	OwnerId           string
	CommentCooldownMs int
	AllowComments     bool
	AllowAnonymous    bool
	ModerationLevel   int
}

type CreateRoomResponse struct {
	RoomId string
}

// CreateRoom registers a new room in waiting status. The lane scheduler
// is not created yet: that happens when the broadcast starts.
func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	roomId := s.generator.GenerateRandomString(roomIdLength)

	cooldownMs := params.CommentCooldownMs
	if cooldownMs == 0 {
		cooldownMs = s.defaultCooldownMs
	}

	if err := s.roomRepo.SetRoom(ctx, &repository.SetRoomParams{
		RoomId:          roomId,
		OwnerId:         params.OwnerId,
		Status:          domain.StatusWaiting.String(),
		CooldownMs:      cooldownMs,
		AllowComments:   params.AllowComments,
		AllowAnonymous:  params.AllowAnonymous,
		ModerationLevel: params.ModerationLevel,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set room: %w", err)
	}

	return CreateRoomResponse{RoomId: roomId}, nil
}

func (s *service) GetRoom(ctx context.Context, roomId string) (domain.Room, error) {
	stored, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return domain.Room{}, ErrRoomNotFound
		}

		return domain.Room{}, err
	}

	return s.toDomainRoom(roomId, stored)
}

func (s *service) toDomainRoom(roomId string, stored repository.Room) (domain.Room, error) {
	var status domain.RoomStatus
	if err := status.UnmarshalText([]byte(stored.Status)); err != nil {
		return domain.Room{}, err
	}

	return domain.Room{
		Id:      roomId,
		OwnerId: stored.OwnerId,
		Status:  status,
		Settings: domain.RoomSettings{
			CommentCooldownMs: stored.CooldownMs,
			AllowComments:     stored.AllowComments,
			AllowAnonymous:    stored.AllowAnonymous,
			ModerationLevel:   stored.ModerationLevel,
		},
	}, nil
}

// StartBroadcast transitions waiting -> live and creates the room's
// single scheduler instance.
func (s *service) StartBroadcast(ctx context.Context, roomId string) error {
	room, err := s.GetRoom(ctx, roomId)
	if err != nil {
		return err
	}

	next, err := room.Status.Transition(domain.StatusLive)
	if err != nil {
		return err
	}

	if err := s.roomRepo.UpdateRoomStatus(ctx, roomId, next.String()); err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}

	cfg := s.schedulerCfg
	if _, err := s.registry.Register(roomId, scheduler.New(&cfg)); err != nil {
		if errors.Is(err, registry.ErrAlreadyRegistered) {
			return nil
		}

		return err
	}

	return nil
}

type EndBroadcastResponse struct {
	Clients []*connection.Client
}

// EndBroadcast transitions live -> ended, tears down the room's
// scheduler and purges every room-scoped key, rate-limit entries
// included. The returned clients are the subscribers to disconnect.
func (s *service) EndBroadcast(ctx context.Context, roomId string) (EndBroadcastResponse, error) {
	room, err := s.GetRoom(ctx, roomId)
	if err != nil {
		return EndBroadcastResponse{}, err
	}

	next, err := room.Status.Transition(domain.StatusEnded)
	if err != nil {
		return EndBroadcastResponse{}, err
	}

	clients := s.getClientsByRoomId(ctx, roomId, "")

	if err := s.roomRepo.UpdateRoomStatus(ctx, roomId, next.String()); err != nil {
		return EndBroadcastResponse{}, fmt.Errorf("failed to update room status: %w", err)
	}

	if err := s.registry.Unregister(roomId); err != nil && !errors.Is(err, registry.ErrNotRegistered) {
		return EndBroadcastResponse{}, err
	}

	if err := s.roomRepo.PurgeRoom(ctx, roomId); err != nil {
		return EndBroadcastResponse{}, fmt.Errorf("failed to purge room: %w", err)
	}

	return EndBroadcastResponse{Clients: clients}, nil
}

type UpdateRoomSettingsParams struct {
	RoomId            string
	SenderUserId      string
	CommentCooldownMs int
	AllowComments     bool
	AllowAnonymous    bool
	ModerationLevel   int
}

func (s *service) UpdateRoomSettings(ctx context.Context, params *UpdateRoomSettingsParams) error {
	room, err := s.GetRoom(ctx, params.RoomId)
	if err != nil {
		return err
	}

	if room.OwnerId != params.SenderUserId {
		return ErrPermissionDenied
	}

	if err := s.roomRepo.UpdateRoomSettings(ctx, &repository.UpdateRoomSettingsParams{
		RoomId:          params.RoomId,
		CooldownMs:      params.CommentCooldownMs,
		AllowComments:   params.AllowComments,
		AllowAnonymous:  params.AllowAnonymous,
		ModerationLevel: params.ModerationLevel,
	}); err != nil {
		return fmt.Errorf("failed to update room settings: %w", err)
	}

	return nil
}

type RegisterUserParams struct {
	UserId   string
	Username string
	Level    int
}

// RegisterUser caches a collaborator-owned user projection so level
// lookups stay cheap per submission.
func (s *service) RegisterUser(ctx context.Context, params *RegisterUserParams) error {
	return s.roomRepo.SetUser(ctx, &repository.SetUserParams{
		UserId:   params.UserId,
		Username: params.Username,
		Level:    params.Level,
	})
}

package redis

import (
	"context"

	"github.com/danmakutv/server/internal/repository"
)

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) SetRoom(ctx context.Context, params *repository.SetRoomParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	room := repository.Room{
		OwnerId:         params.OwnerId,
		Status:          params.Status,
		CooldownMs:      params.CooldownMs,
		AllowComments:   params.AllowComments,
		AllowAnonymous:  params.AllowAnonymous,
		ModerationLevel: params.ModerationLevel,
	}

	roomKey := r.getRoomKey(params.RoomId)
	r.hSetStruct(ctx, pipe, roomKey, room)
	pipe.Expire(ctx, roomKey, roomStateTTL)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (repository.Room, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{"room_id": roomId})

	exists, err := r.rc.Exists(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return repository.Room{}, err
	}
	if exists == 0 {
		return repository.Room{}, repository.ErrRoomNotFound
	}

	var room repository.Room
	if err := r.rc.HGetAll(ctx, r.getRoomKey(roomId)).Scan(&room); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return repository.Room{}, err
	}

	return room, nil
}

func (r repo) UpdateRoomStatus(ctx context.Context, roomId, status string) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
		"status":  status,
	})

	exists, err := r.rc.Exists(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return repository.ErrRoomNotFound
	}

	return r.rc.HSet(ctx, r.getRoomKey(roomId), "status", status).Err()
}

func (r repo) UpdateRoomSettings(ctx context.Context, params *repository.UpdateRoomSettingsParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	exists, err := r.rc.Exists(ctx, r.getRoomKey(params.RoomId)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return repository.ErrRoomNotFound
	}

	return r.rc.HSet(ctx, r.getRoomKey(params.RoomId), map[string]any{
		"cooldown_ms":      params.CooldownMs,
		"allow_comments":   params.AllowComments,
		"allow_anonymous":  params.AllowAnonymous,
		"moderation_level": params.ModerationLevel,
	}).Err()
}

// PurgeRoom drops the room hash and every room-scoped key: subscriber
// list, history, cooldown and last-comment entries.
func (r repo) PurgeRoom(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{"room_id": roomId})

	if err := r.rc.Del(ctx, r.getRoomKey(roomId)).Err(); err != nil {
		return err
	}

	return r.purgeByPattern(ctx, r.getRoomKey(roomId)+":*")
}

func (r repo) getUserKey(userId string) string {
	return "user:" + userId
}

func (r repo) SetUser(ctx context.Context, params *repository.SetUserParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	user := repository.User{
		Username: params.Username,
		Level:    params.Level,
	}

	r.hSetStruct(ctx, pipe, r.getUserKey(params.UserId), user)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetUser(ctx context.Context, userId string) (repository.User, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{"user_id": userId})

	exists, err := r.rc.Exists(ctx, r.getUserKey(userId)).Result()
	if err != nil {
		return repository.User{}, err
	}
	if exists == 0 {
		return repository.User{}, repository.ErrUserNotFound
	}

	var user repository.User
	if err := r.rc.HGetAll(ctx, r.getUserKey(userId)).Scan(&user); err != nil {
		return repository.User{}, err
	}

	return user, nil
}

package redis

import (
	"context"

	"github.com/danmakutv/server/internal/repository"
)

func (r repo) getSubscriberListKey(roomId string) string {
	return r.getRoomKey(roomId) + ":subscriberlist"
}

func (r repo) AddSubscriber(ctx context.Context, params *repository.AddSubscriberParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	subscriberListKey := r.getSubscriberListKey(params.RoomId)
	r.addWithIncrement(ctx, pipe, subscriberListKey, params.ClientId)
	pipe.Expire(ctx, subscriberListKey, roomStateTTL)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) RemoveSubscriber(ctx context.Context, params *repository.RemoveSubscriberParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	return r.rc.ZRem(ctx, r.getSubscriberListKey(params.RoomId), params.ClientId).Err()
}

// GetSubscriberIds returns the room's client ids in join order.
func (r repo) GetSubscriberIds(ctx context.Context, roomId string) ([]string, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{"room_id": roomId})

	clientIds, err := r.rc.ZRange(ctx, r.getSubscriberListKey(roomId), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return clientIds, nil
}

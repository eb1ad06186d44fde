package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func (r repo) getCooldownKey(roomId, submitterKey string) string {
	return r.getRoomKey(roomId) + ":cooldown:" + submitterKey
}

func (r repo) getLastCommentKey(roomId, submitterKey string) string {
	return r.getRoomKey(roomId) + ":lastcomment:" + submitterKey
}

func (r repo) getViolationsKey(submitterKey string) string {
	return "violations:" + submitterKey
}

func (r repo) getBlockKey(submitterKey string) string {
	return "block:" + submitterKey
}

// AcquireCooldown spends the submitter's cooldown slot for the room. It
// returns 0 when the slot was free and the remaining wait otherwise. The
// slot is keyed on redis expiry, so the boundary is inclusive: a retry at
// exactly the cooldown is accepted.
func (r repo) AcquireCooldown(ctx context.Context, roomId, submitterKey string, cooldown time.Duration) (time.Duration, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id":       roomId,
		"submitter_key": submitterKey,
		"cooldown":      cooldown,
	})

	if cooldown <= 0 {
		return 0, nil
	}

	key := r.getCooldownKey(roomId, submitterKey)
	ok, err := r.rc.SetNX(ctx, key, 1, cooldown).Result()
	if err != nil {
		return 0, err
	}
	if ok {
		return 0, nil
	}

	remaining, err := r.rc.PTTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if remaining < 0 {
		return 0, nil
	}

	return remaining, nil
}

func (r repo) SetLastCommentText(ctx context.Context, roomId, submitterKey, text string) error {
	return r.rc.Set(ctx, r.getLastCommentKey(roomId, submitterKey), text, 10*time.Minute).Err()
}

func (r repo) GetLastCommentText(ctx context.Context, roomId, submitterKey string) (string, error) {
	text, err := r.rc.Get(ctx, r.getLastCommentKey(roomId, submitterKey)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}

		return "", err
	}

	return text, nil
}

// IncrementViolations bumps the submitter's violation counter and returns
// the new count. The counter decays after 24h of good behavior.
func (r repo) IncrementViolations(ctx context.Context, submitterKey string) (int, error) {
	key := r.getViolationsKey(submitterKey)

	pipe := r.rc.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 24*time.Hour)

	if err := r.executePipe(ctx, pipe); err != nil {
		return 0, err
	}

	return int(incr.Val()), nil
}

func (r repo) SetBlock(ctx context.Context, submitterKey string, duration time.Duration) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"submitter_key": submitterKey,
		"duration":      duration,
	})

	return r.rc.Set(ctx, r.getBlockKey(submitterKey), 1, duration).Err()
}

// GetBlockRemaining returns how long the submitter stays blocked, 0 when
// not blocked.
func (r repo) GetBlockRemaining(ctx context.Context, submitterKey string) (time.Duration, error) {
	remaining, err := r.rc.PTTL(ctx, r.getBlockKey(submitterKey)).Result()
	if err != nil {
		return 0, err
	}
	if remaining < 0 {
		return 0, nil
	}

	return remaining, nil
}

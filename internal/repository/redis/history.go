package redis

import (
	"context"
	"encoding/json"

	"github.com/danmakutv/server/internal/domain"
	"github.com/danmakutv/server/internal/repository"
)

func (r repo) getHistoryKey(roomId string) string {
	return r.getRoomKey(roomId) + ":history"
}

// AddCommentToHistory appends the comment to the room's bounded ring:
// LPUSH plus LTRIM keeps the newest historySize entries.
func (r repo) AddCommentToHistory(ctx context.Context, comment *domain.Comment) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id":    comment.RoomId,
		"comment_id": comment.Id,
	})

	raw, err := json.Marshal(comment)
	if err != nil {
		return err
	}

	historyKey := r.getHistoryKey(comment.RoomId)
	pipe := r.rc.TxPipeline()
	pipe.LPush(ctx, historyKey, raw)
	pipe.LTrim(ctx, historyKey, 0, int64(r.historySize)-1)
	pipe.Expire(ctx, historyKey, roomStateTTL)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

// GetCommentHistory returns the ring contents oldest first.
func (r repo) GetCommentHistory(ctx context.Context, roomId string) ([]domain.Comment, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{"room_id": roomId})

	raws, err := r.rc.LRange(ctx, r.getHistoryKey(roomId), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	comments := make([]domain.Comment, 0, len(raws))
	for i := len(raws) - 1; i >= 0; i-- {
		var comment domain.Comment
		if err := json.Unmarshal([]byte(raws[i]), &comment); err != nil {
			return nil, err
		}

		comments = append(comments, comment)
	}

	return comments, nil
}

// RemoveCommentFromHistory deletes the comment with the given id.
func (r repo) RemoveCommentFromHistory(ctx context.Context, roomId, commentId string) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id":    roomId,
		"comment_id": commentId,
	})

	raws, err := r.rc.LRange(ctx, r.getHistoryKey(roomId), 0, -1).Result()
	if err != nil {
		return err
	}

	for _, raw := range raws {
		var comment domain.Comment
		if err := json.Unmarshal([]byte(raw), &comment); err != nil {
			continue
		}

		if comment.Id == commentId {
			return r.rc.LRem(ctx, r.getHistoryKey(roomId), 1, raw).Err()
		}
	}

	return repository.ErrCommentNotFound
}

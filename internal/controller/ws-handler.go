package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	roomService "github.com/danmakutv/server/internal/service/room"
)

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

type CommentInput struct {
	Text    string `json:"text"`
	Command string `json:"command"`
	Vpos    int    `json:"vpos"`
}

func (c controller) handleComment(ctx context.Context, _ *websocket.Conn, input CommentInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	clientId := c.getClientIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	submitResp, err := c.roomService.SubmitComment(ctx, &roomService.SubmitCommentParams{
		RoomId:   roomId,
		ClientId: clientId,
		UserId:   userId,
		Text:     input.Text,
		Command:  input.Command,
		Vpos:     input.Vpos,
	})
	if err != nil {
		var reject *roomService.RejectError
		if errors.As(err, &reject) {
			c.metrics.commentsRejected.WithLabelValues(reject.Kind).Inc()
			c.replyToSender(ctx, clientId, newOutput(eventCommentRejected, map[string]any{
				"reason":         reject.Reason,
				"retry_after_ms": reject.RetryAfterMs,
			}))
			return nil
		}

		// internal failure rejects the offending submission only
		c.replyToSender(ctx, clientId, newOutput(eventError, map[string]string{
			"message": "failed to submit comment",
		}))
		return fmt.Errorf("failed to submit comment: %w", err)
	}

	c.metrics.commentsAdmitted.Inc()
	c.broadcast(ctx, submitResp.Clients, newOutput(eventNewComment, submitResp.Comment))

	return nil
}

type DeleteCommentInput struct {
	CommentId string `json:"comment_id"`
}

func (c controller) handleDeleteComment(ctx context.Context, _ *websocket.Conn, input DeleteCommentInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	clientId := c.getClientIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	senderUserId := ""
	if userId != nil {
		senderUserId = *userId
	}

	deleteResp, err := c.roomService.DeleteComment(ctx, &roomService.DeleteCommentParams{
		RoomId:       roomId,
		SenderUserId: senderUserId,
		CommentId:    input.CommentId,
	})
	if err != nil {
		switch {
		case errors.Is(err, roomService.ErrPermissionDenied):
			c.replyToSender(ctx, clientId, newOutput(eventError, map[string]string{
				"message": "permission denied",
			}))
			return nil
		case errors.Is(err, roomService.ErrCommentNotFound):
			c.replyToSender(ctx, clientId, newOutput(eventError, map[string]string{
				"message": "comment not found",
			}))
			return nil
		}

		return fmt.Errorf("failed to delete comment: %w", err)
	}

	c.broadcast(ctx, deleteResp.Clients, newOutput(eventCommentDeleted, map[string]string{
		"comment_id": input.CommentId,
	}))

	return nil
}

// replyToSender writes an event only to the submitting connection.
func (c controller) replyToSender(ctx context.Context, clientId string, output *Output) {
	client, err := c.clientRepo.GetClient(clientId)
	if err != nil {
		return
	}

	c.send(ctx, client, output)
}

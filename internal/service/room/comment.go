package room

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/danmakutv/server/internal/command"
	"github.com/danmakutv/server/internal/domain"
	"github.com/danmakutv/server/internal/policy"
	"github.com/danmakutv/server/internal/repository"
	"github.com/danmakutv/server/internal/repository/connection"
	"github.com/danmakutv/server/internal/scheduler"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func sanitizeText(text string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(text, ""))
}

type SubmitCommentParams struct {
	RoomId   string
	ClientId string
	UserId   *string
	Text     string
	Command  string
	Vpos     int
}

type SubmitCommentResponse struct {
	Comment domain.Comment
	Clients []*connection.Client
}

// SubmitComment runs the full admission pipeline: room gate, block
// check, validation, cooldown, policy, style resolution, lane
// assignment, history append. The returned clients are every subscriber
// of the room; the comment is broadcast to all of them, sender included.
//
// The cooldown slot is spent before moderation runs: a policy rejection
// does not refund it.
func (s *service) SubmitComment(ctx context.Context, params *SubmitCommentParams) (SubmitCommentResponse, error) {
	room, err := s.GetRoom(ctx, params.RoomId)
	if err != nil {
		return SubmitCommentResponse{}, err
	}

	if room.Status != domain.StatusLive {
		return SubmitCommentResponse{}, &RejectError{
			Kind:   RejectKindRoomNotLive,
			Reason: "room is not live",
		}
	}
	if !room.Settings.AllowComments {
		return SubmitCommentResponse{}, &RejectError{
			Kind:   RejectKindCommentsDisabled,
			Reason: "comments are disabled",
		}
	}

	anonymous := params.UserId == nil
	if anonymous && !room.Settings.AllowAnonymous {
		return SubmitCommentResponse{}, &RejectError{
			Kind:   RejectKindValidation,
			Reason: "anonymous comments are not allowed",
		}
	}

	key := submitterKey(params.UserId, params.ClientId)

	blocked, err := s.roomRepo.GetBlockRemaining(ctx, key)
	if err != nil {
		return SubmitCommentResponse{}, err
	}
	if blocked > 0 {
		return SubmitCommentResponse{}, &RejectError{
			Kind:         RejectKindModeration,
			Reason:       "temporarily blocked",
			RetryAfterMs: blocked.Milliseconds(),
		}
	}

	text := sanitizeText(params.Text)
	if text == "" {
		return SubmitCommentResponse{}, &RejectError{
			Kind:   RejectKindValidation,
			Reason: "comment text is empty",
		}
	}
	if utf8.RuneCountInString(text) > domain.MaxCommentLength {
		return SubmitCommentResponse{}, &RejectError{
			Kind:   RejectKindValidation,
			Reason: "comment text is too long",
		}
	}

	remaining, err := s.roomRepo.AcquireCooldown(ctx, params.RoomId, key,
		time.Duration(room.Settings.CommentCooldownMs)*time.Millisecond)
	if err != nil {
		return SubmitCommentResponse{}, err
	}
	if remaining > 0 {
		return SubmitCommentResponse{}, &RejectError{
			Kind:         RejectKindRateLimited,
			Reason:       policy.ReasonTooFast,
			RetryAfterMs: remaining.Milliseconds(),
		}
	}

	userLevel := 0
	if !anonymous {
		user, err := s.roomRepo.GetUser(ctx, *params.UserId)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return SubmitCommentResponse{}, ErrUserNotFound
			}

			return SubmitCommentResponse{}, err
		}

		userLevel = user.Level
	}

	previousText, err := s.roomRepo.GetLastCommentText(ctx, params.RoomId, key)
	if err != nil {
		return SubmitCommentResponse{}, err
	}

	if violation := s.policy.Check(text, previousText); violation != nil {
		return SubmitCommentResponse{}, s.recordViolation(ctx, key, violation)
	}

	style := s.policy.Clamp(command.Parse(params.Command), userLevel, anonymous)

	regRoom, err := s.registry.Get(params.RoomId)
	if err != nil {
		return SubmitCommentResponse{}, err
	}

	durationMs := scheduler.DurationMs(text, style.Position)
	textWidth := scheduler.TextWidth(text, style.Size)
	placement := regRoom.Place(style.Position, textWidth, durationMs)

	comment := domain.Comment{
		Id:         uuid.NewString(),
		RoomId:     params.RoomId,
		UserId:     params.UserId,
		Text:       text,
		Style:      style,
		Lane:       placement.Lane,
		X:          placement.X,
		Y:          placement.Y,
		Speed:      placement.Speed,
		DurationMs: placement.DurationMs,
		CreatedAt:  s.nowFunc().UnixMilli(),
		Vpos:       params.Vpos,
		UserLevel:  userLevel,
	}

	if err := comment.Validate(regRoom.TotalLanes()); err != nil {
		return SubmitCommentResponse{}, &RejectError{
			Kind:   RejectKindValidation,
			Reason: err.Error(),
		}
	}

	if err := s.roomRepo.SetLastCommentText(ctx, params.RoomId, key, text); err != nil {
		return SubmitCommentResponse{}, err
	}

	if err := s.roomRepo.AddCommentToHistory(ctx, &comment); err != nil {
		return SubmitCommentResponse{}, fmt.Errorf("failed to add comment to history: %w", err)
	}

	return SubmitCommentResponse{
		Comment: comment,
		Clients: s.getClientsByRoomId(ctx, params.RoomId, ""),
	}, nil
}

// recordViolation increments the submitter's counter and arms the
// escalating block when the threshold is reached, then returns the
// rejection for the offending message.
func (s *service) recordViolation(ctx context.Context, key string, violation *policy.Violation) error {
	count, err := s.roomRepo.IncrementViolations(ctx, key)
	if err != nil {
		return err
	}

	if s.policy.ShouldBlock(count) {
		if err := s.roomRepo.SetBlock(ctx, key, s.policy.BlockDuration(count)); err != nil {
			return err
		}
	}

	return &RejectError{
		Kind:   RejectKindModeration,
		Reason: violation.Reason,
	}
}

type DeleteCommentParams struct {
	RoomId       string
	SenderUserId string
	CommentId    string
}

type DeleteCommentResponse struct {
	Clients []*connection.Client
}

// DeleteComment removes a comment from the history ring. Owner only.
func (s *service) DeleteComment(ctx context.Context, params *DeleteCommentParams) (DeleteCommentResponse, error) {
	room, err := s.GetRoom(ctx, params.RoomId)
	if err != nil {
		return DeleteCommentResponse{}, err
	}

	if room.OwnerId == "" || room.OwnerId != params.SenderUserId {
		return DeleteCommentResponse{}, ErrPermissionDenied
	}

	if err := s.roomRepo.RemoveCommentFromHistory(ctx, params.RoomId, params.CommentId); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return DeleteCommentResponse{}, ErrCommentNotFound
		}

		return DeleteCommentResponse{}, err
	}

	return DeleteCommentResponse{
		Clients: s.getClientsByRoomId(ctx, params.RoomId, ""),
	}, nil
}

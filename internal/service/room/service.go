package room

import (
	"context"
	"errors"
	"time"

	"github.com/danmakutv/server/internal/domain"
	"github.com/danmakutv/server/internal/policy"
	"github.com/danmakutv/server/internal/registry"
	"github.com/danmakutv/server/internal/repository"
	"github.com/danmakutv/server/internal/repository/connection"
	"github.com/danmakutv/server/internal/scheduler"
	"github.com/danmakutv/server/pkg/randstr"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrCommentNotFound  = errors.New("comment not found")
)

// Reject kinds. A rejection is a verdict on one submission: it is
// reported only to the submitting connection and never crashes the room.
const (
	RejectKindValidation       = "validation"
	RejectKindRateLimited      = "rate_limited"
	RejectKindModeration       = "moderation"
	RejectKindRoomNotLive      = "room_not_live"
	RejectKindCommentsDisabled = "comments_disabled"
)

type RejectError struct {
	Kind         string
	Reason       string
	RetryAfterMs int64
}

func (e *RejectError) Error() string {
	return "comment rejected: " + e.Reason
}

type iRoomRepo interface {
	// room
	SetRoom(context.Context, *repository.SetRoomParams) error
	GetRoom(ctx context.Context, roomId string) (repository.Room, error)
	UpdateRoomStatus(ctx context.Context, roomId, status string) error
	UpdateRoomSettings(context.Context, *repository.UpdateRoomSettingsParams) error
	PurgeRoom(ctx context.Context, roomId string) error
	// user
	SetUser(context.Context, *repository.SetUserParams) error
	GetUser(ctx context.Context, userId string) (repository.User, error)
	// subscribers
	AddSubscriber(context.Context, *repository.AddSubscriberParams) error
	RemoveSubscriber(context.Context, *repository.RemoveSubscriberParams) error
	GetSubscriberIds(ctx context.Context, roomId string) ([]string, error)
	// history
	AddCommentToHistory(context.Context, *domain.Comment) error
	GetCommentHistory(ctx context.Context, roomId string) ([]domain.Comment, error)
	RemoveCommentFromHistory(ctx context.Context, roomId, commentId string) error
	// moderation
	AcquireCooldown(ctx context.Context, roomId, submitterKey string, cooldown time.Duration) (time.Duration, error)
	SetLastCommentText(ctx context.Context, roomId, submitterKey, text string) error
	GetLastCommentText(ctx context.Context, roomId, submitterKey string) (string, error)
	IncrementViolations(ctx context.Context, submitterKey string) (int, error)
	SetBlock(ctx context.Context, submitterKey string, duration time.Duration) error
	GetBlockRemaining(ctx context.Context, submitterKey string) (time.Duration, error)
}

type iClientRepo interface {
	Add(*connection.Client) error
	RemoveByClientId(string) error
	GetClient(string) (*connection.Client, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	Scheduler         scheduler.Config
	DefaultCooldownMs int
}

type service struct {
	roomRepo          iRoomRepo
	clientRepo        iClientRepo
	registry          *registry.Registry
	policy            *policy.Policy
	generator         iGenerator
	schedulerCfg      scheduler.Config
	defaultCooldownMs int
	nowFunc           func() time.Time
}

func NewService(roomRepo iRoomRepo, clientRepo iClientRepo, reg *registry.Registry, pol *policy.Policy, cfg *Config) *service {
	s := service{
		roomRepo:          roomRepo,
		clientRepo:        clientRepo,
		registry:          reg,
		policy:            pol,
		schedulerCfg:      cfg.Scheduler,
		defaultCooldownMs: cfg.DefaultCooldownMs,
		nowFunc:           time.Now,
	}

	letterBytes := []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	s.generator = randstr.New(letterBytes)

	return &s
}

// SetNowFunc overrides the time source. Test hook.
func (s *service) SetNowFunc(now func() time.Time) {
	s.nowFunc = now
}

package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danmakutv/server/internal/domain"
	"github.com/danmakutv/server/internal/repository/connection"
	roomService "github.com/danmakutv/server/internal/service/room"
	"github.com/danmakutv/server/pkg/validator"
	"github.com/danmakutv/server/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *roomService.CreateRoomParams) (roomService.CreateRoomResponse, error)
	GetRoom(ctx context.Context, roomId string) (domain.Room, error)
	StartBroadcast(ctx context.Context, roomId string) error
	EndBroadcast(ctx context.Context, roomId string) (roomService.EndBroadcastResponse, error)
	UpdateRoomSettings(context.Context, *roomService.UpdateRoomSettingsParams) error
	RegisterUser(context.Context, *roomService.RegisterUserParams) error
	JoinRoom(context.Context, *roomService.JoinRoomParams) (roomService.JoinRoomResponse, error)
	LeaveRoom(context.Context, *roomService.LeaveRoomParams) (roomService.LeaveRoomResponse, error)
	SubmitComment(context.Context, *roomService.SubmitCommentParams) (roomService.SubmitCommentResponse, error)
	DeleteComment(context.Context, *roomService.DeleteCommentParams) (roomService.DeleteCommentResponse, error)
}

type iClientRepo interface {
	GetClient(string) (*connection.Client, error)
}

type Config struct {
	HeartbeatInterval time.Duration
}

type controller struct {
	roomService       iRoomService
	clientRepo        iClientRepo
	upgrader          websocket.Upgrader
	validate          *validator.Validator
	logger            *slog.Logger
	wsmux             *wsrouter.WSRouter
	metrics           *metrics
	heartbeatInterval time.Duration
}

func NewController(rs iRoomService, clientRepo iClientRepo, logger *slog.Logger, cfg *Config) *controller {
	heartbeat := cfg.HeartbeatInterval
	if heartbeat == 0 {
		heartbeat = 30 * time.Second
	}

	c := &controller{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService:       rs,
		clientRepo:        clientRepo,
		validate:          validator.NewValidator(),
		logger:            logger,
		metrics:           getMetrics(),
		heartbeatInterval: heartbeat,
	}
	c.wsmux = c.getWSRouter()

	return c
}

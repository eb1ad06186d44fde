package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danmakutv/server/internal/controller"
	"github.com/danmakutv/server/internal/policy"
	"github.com/danmakutv/server/internal/registry"
	"github.com/danmakutv/server/internal/repository/connection/inmemory"
	"github.com/danmakutv/server/internal/repository/redis"
	"github.com/danmakutv/server/internal/scheduler"
	"github.com/danmakutv/server/internal/service/room"
	"github.com/danmakutv/server/pkg/ctxlogger"
	"github.com/danmakutv/server/pkg/redisclient"
)

type AppConfig struct {
	Host               string `json:"host"`
	Port               int    `json:"port"`
	LogLevel           string `json:"log_level"`
	RedisHost          string `json:"redis_host"`
	RedisPort          int    `json:"redis_port"`
	RedisPassword      string `json:"-"`
	TotalLanes         int    `json:"total_lanes"`
	ScreenWidth        int    `json:"screen_width"`
	HistorySize        int    `json:"history_size"`
	DefaultCooldownMs  int    `json:"default_cooldown_ms"`
	HeartbeatIntervalS int    `json:"heartbeat_interval_s"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.TotalLanes < 1 {
		return fmt.Errorf("total lanes must be greater than 0")
	}
	if cfg.ScreenWidth < 1 {
		return fmt.Errorf("screen width must be greater than 0")
	}
	if cfg.HistorySize < 100 || cfg.HistorySize > 1000 {
		return fmt.Errorf("history size must be between 100 and 1000")
	}
	if cfg.DefaultCooldownMs < 0 {
		return fmt.Errorf("default cooldown must not be negative")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	roomRepo := redis.NewRepo(rc, logger, cfg.HistorySize)
	clientRepo := inmemory.NewRepo()
	reg := registry.New()
	pol := policy.New(&policy.Config{})
	roomService := room.NewService(roomRepo, clientRepo, reg, pol, &room.Config{
		Scheduler: scheduler.Config{
			TotalLanes:  cfg.TotalLanes,
			ScreenWidth: float64(cfg.ScreenWidth),
		},
		DefaultCooldownMs: cfg.DefaultCooldownMs,
	})
	controller := controller.NewController(roomService, clientRepo, logger, &controller.Config{
		HeartbeatInterval: time.Duration(cfg.HeartbeatIntervalS) * time.Second,
	})
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}

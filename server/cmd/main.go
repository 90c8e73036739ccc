package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"simmer/config"
	"simmer/server"
	"simmer/server/application"
	"simmer/server/domain"
	"simmer/utils"
)

func main() {
	configPath := flag.String("config", utils.GetEnvDefault("SIMMER_CONFIG", ""), "path to a YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "err", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	if cfg.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PubSub初期化
	pubsub := domain.NewSimplePubSub()

	roomID := domain.RoomID(cfg.Room)
	roomManager := domain.NewSimpleRoomManager(roomID)

	metrics := application.NewMetrics()
	state := application.NewState()
	orders := application.NewOrderManager(state, cfg.Tuning.Orders, nil, metrics)
	app := application.NewKitchenApplication(state, orders, cfg.Tuning, cfg.IngredientAuthority, metrics)

	room := domain.NewRoom(roomID, pubsub, app, cfg.Tuning.TickPeriod)
	go func() {
		if err := room.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "room error", "err", err)
		}
	}()

	endpoint := domain.DefaultEndpointOptions()
	endpoint.HeartbeatInterval = cfg.Heartbeat.Interval
	endpoint.IdleTimeout = cfg.Heartbeat.IdleTimeout

	router := server.Route(server.RouteDeps{
		PubSub:      pubsub,
		RoomManager: roomManager,
		Endpoint:    endpoint,
		State:       application.NewSnapshotService(room, app),
		Metrics:     cfg.Metrics,
		Gatherer:    metrics.Registry(),
	})
	s := server.NewServer(cfg.ListenAddr(), router)

	go func() {
		if err := s.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "err", err)
			stop()
		}
	}()
	slog.InfoContext(ctx, "server listening", "addr", s.Addr(), "room", roomID, "authority", cfg.IngredientAuthority)

	<-ctx.Done()
	slog.InfoContext(ctx, "shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "graceful shutdown failed", "error", err)
		if err := s.Close(); err != nil {
			slog.ErrorContext(ctx, "forced close failed", "error", err)
		}
	}
	slog.InfoContext(ctx, "server shutdown complete")
}

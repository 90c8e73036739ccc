package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"simmer/client"
	"simmer/config"
	"simmer/protocol"
	"simmer/utils"
)

const (
	frameRate      = 60
	reconnectDelay = 2 * time.Second
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	botCount, err := utils.GetEnvInt("BOT_COUNT", 3)
	if err != nil || botCount <= 0 {
		slog.Error("invalid BOT_COUNT", "value", os.Getenv("BOT_COUNT"))
		os.Exit(1)
	}
	serverURL := utils.GetEnvDefault("SERVER_URL", fmt.Sprintf("ws://%s/ws", cfg.ListenAddr()))
	slog.Info("starting bots", "count", botCount, "server", serverURL)

	eg, ctx := errgroup.WithContext(ctx)
	for i := range botCount {
		eg.Go(func() error {
			runBot(ctx, cfg, serverURL, i)
			return nil
		})
	}
	_ = eg.Wait()
	slog.Info("all bots stopped")
}

func runBot(ctx context.Context, cfg config.Config, serverURL string, id int) {
	logger := slog.With("botID", id)

	for {
		if ctx.Err() != nil {
			return
		}
		err := botSession(ctx, cfg, serverURL, logger)
		if err != nil && ctx.Err() == nil {
			logger.Warn("bot session ended, reconnecting", "err", err)
			select {
			case <-time.After(reconnectDelay):
			case <-ctx.Done():
				return
			}
		}
	}
}

func botSession(ctx context.Context, cfg config.Config, serverURL string, logger *slog.Logger) error {
	conn, err := client.Dial(ctx, serverURL)
	if err != nil {
		return err
	}
	defer conn.CloseNow()
	logger.Info("connected")

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	engine := client.NewEngine(cfg.Tuning, cfg.Kitchen, client.ModeFor(cfg.IngredientAuthority), conn, rng)
	bot := client.NewRuleBot(cfg.Tuning, rng)

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	inbox := make(chan protocol.Envelope, 64)
	eg, egCtx := errgroup.WithContext(sessionCtx)
	eg.Go(func() error {
		defer close(inbox)
		return conn.ReadLoop(egCtx, inbox)
	})
	eg.Go(func() error {
		return client.Run(egCtx, engine, client.NewWallTicker(time.Second/frameRate), bot, inbox)
	})
	return eg.Wait()
}

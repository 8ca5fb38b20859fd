package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamwarden/internal/bot"
	"streamwarden/internal/config"
	"streamwarden/internal/store"
	"streamwarden/internal/twitch"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	st, err := store.New(cfg.DataDir, logger)
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}

	twitchClient, err := twitch.NewClient(cfg.Twitch.ClientID, logger)
	if err != nil {
		logger.Fatal("twitch client init failed", zap.Error(err))
	}
	refresher := twitch.NewRefresher(cfg.Twitch.ClientID, cfg.Twitch.ClientSecret, store.NewTokenRepo(st), twitchClient, logger)
	refresher.Seed()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := refresher.Tick(ctx); err != nil {
		logger.Warn("initial twitch token refresh failed", zap.Error(err))
	}
	cancel()

	botSvc, err := bot.New(cfg, logger, st, twitchClient, refresher)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	botSvc.Close(shutdownCtx)
}

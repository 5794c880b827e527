package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashbot/internal/api"
	"cashbot/internal/auth"
	"cashbot/internal/config"
	"cashbot/internal/game"
	"cashbot/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("load .env", "err", err)
	}
	cfg, err := config.LoadAPI(config.Path())
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	st, closeStore, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("store open failed", "driver", cfg.Store.Driver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	gameSvc := game.NewService(st, logger)
	game.NewScheduler(gameSvc, cfg.LotteryPoll, logger).Start(ctx)

	server := api.New(cfg, logger, auth.NewTokenVerifier(cfg.Token), gameSvc)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("cashbot api listening", "addr", cfg.Addr, "store", cfg.Store.Driver)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

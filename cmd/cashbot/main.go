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
	"cashbot/internal/discord"
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
	cfg, err := config.LoadBot(config.Path())
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	st, closeStore, err := store.Open(ctx, cfg.API.Store, logger)
	if err != nil {
		logger.Error("store open failed", "driver", cfg.API.Store.Driver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	gameSvc := game.NewService(st, logger)
	bot, err := discord.New(cfg.Discord, gameSvc, logger)
	if err != nil {
		logger.Error("discord init failed", "err", err)
		os.Exit(1)
	}
	gameSvc.SetAnnouncer(bot)
	bot.SetPlayerTokens(auth.NewPlayerTokens(cfg.API.Token, cfg.API.PlayerTokenTTL))
	if err := bot.Open(ctx); err != nil {
		logger.Error("discord connect failed", "err", err)
		os.Exit(1)
	}
	defer bot.Close()

	game.NewScheduler(gameSvc, cfg.API.LotteryPoll, logger).Start(ctx)

	if !config.ServeAPI() {
		logger.Info("cashbot running", "prefix", cfg.Discord.CommandPrefix)
		<-ctx.Done()
		return
	}

	// The HTTP listener doubles as the keep-alive endpoint for hosts that
	// expect the process to bind a port.
	server := api.New(cfg.API, logger, auth.NewTokenVerifier(cfg.API.Token), gameSvc)
	httpServer := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("cashbot running", "prefix", cfg.Discord.CommandPrefix, "addr", cfg.API.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"garden_bot/internal/bot"
	"garden_bot/internal/config"
	"garden_bot/internal/feed"
	"garden_bot/internal/logger"
	"garden_bot/internal/monitor"
	"garden_bot/internal/notify"
	"garden_bot/internal/render"
	"garden_bot/internal/schedule"
	"garden_bot/internal/storage"
	"garden_bot/internal/supervisor"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load(ctx)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(log)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	formatter := render.New(cfg.ItemEmoji, cfg.ItemMentions)
	tracker := monitor.NewTracker()

	b, err := bot.New(cfg.TelegramBotToken, cfg, store, formatter, tracker, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	deps := monitor.Deps{
		Feed:      feed.New(http.DefaultClient, cfg.Feed.BaseURL, cfg.Feed.APIKey, cfg.Feed.RequestsPerMinute),
		Store:     store,
		Publisher: notify.NewPublisher(b, store, log),
		Render:    formatter,
		Log:       log,
	}
	runner := schedule.NewRunner(log, tracker)

	log.Info("starting bot")
	if err := supervisor.Run(ctx, log, runner, monitor.All(deps, cfg.Channels), b); err != nil {
		log.Error("supervisor", "error", err)
		os.Exit(1)
	}
	log.Info("bot stopped")
}

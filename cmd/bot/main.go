// Package main contains the entrypoint for the hashtag scoring bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/Ectormind/bot-punteggio-ha-repository/internal/bot"
	"github.com/Ectormind/bot-punteggio-ha-repository/internal/bot/handlers"
	"github.com/Ectormind/bot-punteggio-ha-repository/internal/bot/tasks"
	"github.com/Ectormind/bot-punteggio-ha-repository/internal/config"
	"github.com/Ectormind/bot-punteggio-ha-repository/internal/database"
	"github.com/Ectormind/bot-punteggio-ha-repository/internal/logger"
	"github.com/Ectormind/bot-punteggio-ha-repository/internal/scoring"
	"github.com/Ectormind/bot-punteggio-ha-repository/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// scoring engine, telegram bot, scheduler), handles graceful shutdown, and
// returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	location, err := time.LoadLocation(cfg.Scoring.Timezone)
	if err != nil {
		log.Error("Failed to load scoring timezone", "timezone", cfg.Scoring.Timezone, "error", err)
		return 1
	}

	catalog, err := scoring.NewCatalog(cfg.Scoring.Hashtags)
	if err != nil {
		log.Error("Invalid hashtag catalog", "error", err)
		return 1
	}
	log.Info("Hashtag catalog loaded", "hashtags", catalog.Len())

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	engine := scoring.NewEngine(store, catalog, scoring.Messages{
		AlreadyUsed:       cfg.Messages.AlreadyUsed,
		Awarded:           cfg.Messages.Awarded,
		LeaderboardHeader: cfg.Messages.LeaderboardHeader,
		LeaderboardEmpty:  cfg.Messages.LeaderboardEmpty,
		ResetDone:         cfg.Messages.ResetDone,
	}, location, log)

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
	}
	if cfg.Telegram.Webhook.Enabled && cfg.Telegram.Webhook.SecretToken != "" {
		botOpts = append(botOpts, tgbot.WithWebhookSecretToken(cfg.Telegram.Webhook.SecretToken))
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	authorizer := telegram.NewChatMemberAuthorizer(
		tg,
		cfg.Telegram.AuthorizedUserIDs,
		cfg.Telegram.AlertTarget(),
		cfg.Messages.UnauthorizedAlert,
		log,
	)

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Engine:     engine,
		Authorizer: authorizer,
	}
	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllHandlers(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Config:   cfg,
		Location: location,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, db, store, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}

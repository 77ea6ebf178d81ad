// Package bot implements the core bot lifecycle management and component
// orchestration: the Telegram update transport (long polling or webhook) and
// the task scheduler.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/Ectormind/bot-punteggio-ha-repository/internal/config"
	"github.com/Ectormind/bot-punteggio-ha-repository/internal/database"
)

const webhookShutdownTimeout = 5 * time.Second

// Bot represents the main bot application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	db        *sqlx.DB
	store     database.Store
	tgBot     *tgbot.Bot
	scheduler *Scheduler
}

// NewBot creates a new instance of the bot with all required dependencies.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	db *sqlx.DB,
	store database.Store,
	tgBot *tgbot.Bot,
	scheduler *Scheduler,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		db:        db,
		store:     store,
		tgBot:     tgBot,
		scheduler: scheduler,
	}
}

// Run starts the bot and all its components, handling graceful shutdown on
// context cancellation. It returns an error if any component fails during
// startup or execution.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	if b.cfg.Telegram.Webhook.Enabled {
		b.runWebhook(g, gCtx)
	} else {
		b.runPolling(g, gCtx)
	}

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}

		return nil
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

// runPolling starts the long-polling update listener.
func (b *Bot) runPolling(g *errgroup.Group, gCtx context.Context) {
	g.Go(func() error {
		b.logger.Info("Starting Telegram long-polling listener...")

		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram listener stopped unexpectedly without context cancellation.")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})
}

// runWebhook registers the webhook with Telegram and serves updates over HTTP.
func (b *Bot) runWebhook(g *errgroup.Group, gCtx context.Context) {
	whCfg := b.cfg.Telegram.Webhook

	g.Go(func() error {
		b.logger.Info("Registering Telegram webhook", "url", whCfg.PublicURL)
		if _, err := b.tgBot.SetWebhook(gCtx, &tgbot.SetWebhookParams{
			URL:         whCfg.PublicURL,
			SecretToken: whCfg.SecretToken,
		}); err != nil {
			return fmt.Errorf("failed to register webhook: %w", err)
		}

		b.tgBot.StartWebhook(gCtx)
		b.logger.Info("Telegram webhook listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Webhook listener stopped unexpectedly without context cancellation.")
			return fmt.Errorf("webhook listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		srv := &http.Server{
			Addr:    whCfg.ListenAddr,
			Handler: b.tgBot.WebhookHandler(),
		}

		errCh := make(chan error, 1)
		go func() {
			b.logger.Info("Webhook HTTP server listening", "addr", whCfg.ListenAddr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-gCtx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), webhookShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				b.logger.Error("Error shutting down webhook HTTP server", "error", err)
				return fmt.Errorf("failed to shut down webhook server: %w", err)
			}
			b.logger.Info("Webhook HTTP server stopped.")
			return nil
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("webhook server failed: %w", err)
			}
			return nil
		}
	})
}

package handlers

import (
	"context"
	"log/slog"

	"github.com/Ectormind/bot-punteggio-ha-repository/internal/config"
	"github.com/Ectormind/bot-punteggio-ha-repository/internal/scoring"
)

// Authorizer decides whether a chat is permitted to use the bot. Handlers
// consult it before any user-facing operation; implementations must not
// return an error, only a verdict.
type Authorizer interface {
	IsChatAuthorized(ctx context.Context, chatID int64) bool
}

// HandlerDeps provides dependencies for Telegram command and message handlers.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Engine     *scoring.Engine
	Authorizer Authorizer
}

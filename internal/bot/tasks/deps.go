// Package tasks implements the bot's scheduled maintenance tasks.
package tasks

import (
	"log/slog"
	"time"

	"github.com/Ectormind/bot-punteggio-ha-repository/internal/config"
	"github.com/Ectormind/bot-punteggio-ha-repository/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Config   *config.Config
	Location *time.Location
}

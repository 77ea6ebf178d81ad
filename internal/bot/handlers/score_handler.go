package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MatchScorable reports whether an update is a scorable chat message: a plain
// text message or a captioned attachment that is not a command.
func MatchScorable(update *models.Update) bool {
	msg := update.Message
	if msg == nil {
		return false
	}
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text == "" {
		return false
	}
	return !strings.HasPrefix(text, "/")
}

// NewScoreHandler returns the handler that scans incoming messages for catalog
// hashtags and awards points through the scoring engine.
func NewScoreHandler(deps HandlerDeps) bot.HandlerFunc {
	return scoreHandler{deps}.Handle
}

type scoreHandler struct {
	deps HandlerDeps
}

func (h scoreHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "score")

	msg := update.Message
	if msg == nil {
		return
	}

	// A photo message carries its text in the caption.
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	user := displayName(msg.From)
	chatID := msg.Chat.ID

	notices, err := h.deps.Engine.HandleMessage(ctx, chatID, user, text, time.Now())
	if err != nil {
		// Store failures stay out of the chat; the two scoring notices are the
		// only user-facing outcomes of a message event.
		log.ErrorContext(ctx, "Failed to score message", "error", err, "chat_id", chatID, "user", user)
		return
	}

	for _, notice := range notices {
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: notice}); err != nil {
			log.ErrorContext(ctx, "Failed to send scoring notice", "error", err, "chat_id", chatID)
		}
	}
}

// displayName resolves a sender to their handle, falling back to the first
// name. Returns "" when neither exists; such events are dropped (no anonymous
// scoring).
func displayName(from *models.User) string {
	if from == nil {
		return ""
	}
	if from.Username != "" {
		return from.Username
	}
	return from.FirstName
}

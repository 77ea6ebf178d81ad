// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ChatAuthorized creates a middleware that gates every user-facing operation
// behind the authorization predicate. Updates from unauthorized chats are
// dropped without a reply; the authorizer itself alerts the fallback user.
func ChatAuthorized(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil {
				return
			}

			chatID := update.Message.Chat.ID
			if !deps.Authorizer.IsChatAuthorized(ctx, chatID) {
				deps.Logger.WarnContext(ctx, "Dropping update from unauthorized chat",
					"middleware", "ChatAuthorized", "chat_id", chatID)
				return
			}

			next(ctx, bot, update)
		}
	}
}

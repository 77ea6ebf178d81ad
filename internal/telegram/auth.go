package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ChatMemberAPI is the subset of the Telegram client used by the authorizer.
// *bot.Bot satisfies it; tests can substitute a fake.
type ChatMemberAPI interface {
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// ChatMemberAuthorizer authorizes a chat when at least one allow-listed user
// is currently a member, administrator, or owner of it. Probe failures for one
// identity fall through to the next; when none succeeds the chat is rejected
// and an alert is sent to the fallback user.
type ChatMemberAuthorizer struct {
	api           ChatMemberAPI
	authorizedIDs []int64
	alertUserID   int64
	alertTemplate string
	logger        *slog.Logger
}

// NewChatMemberAuthorizer creates the Telegram-backed authorization gate.
// alertTemplate must contain a %d placeholder for the offending chat ID.
func NewChatMemberAuthorizer(api ChatMemberAPI, authorizedIDs []int64, alertUserID int64, alertTemplate string, logger *slog.Logger) *ChatMemberAuthorizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ChatMemberAuthorizer{
		api:           api,
		authorizedIDs: authorizedIDs,
		alertUserID:   alertUserID,
		alertTemplate: alertTemplate,
		logger:        logger.With("component", "authorizer"),
	}
}

// IsChatAuthorized reports whether the chat is permitted to use the bot.
func (a *ChatMemberAuthorizer) IsChatAuthorized(ctx context.Context, chatID int64) bool {
	for _, userID := range a.authorizedIDs {
		member, err := a.api.GetChatMember(ctx, &bot.GetChatMemberParams{
			ChatID: chatID,
			UserID: userID,
		})
		if err != nil {
			// A failed probe for one identity is not a rejection; try the next.
			a.logger.WarnContext(ctx, "Membership probe failed",
				"chat_id", chatID, "user_id", userID, "error", err)
			continue
		}

		if isPresent(member) {
			a.logger.DebugContext(ctx, "Chat authorized",
				"chat_id", chatID, "authorized_user_id", userID)
			return true
		}
	}

	a.logger.WarnContext(ctx, "Chat not authorized, sending alert",
		"chat_id", chatID, "alert_user_id", a.alertUserID)
	a.sendAlert(ctx, chatID)
	return false
}

func (a *ChatMemberAuthorizer) sendAlert(ctx context.Context, chatID int64) {
	if a.alertUserID == 0 {
		return
	}
	_, err := a.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: a.alertUserID,
		Text:   fmt.Sprintf(a.alertTemplate, chatID),
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to send unauthorized-chat alert",
			"chat_id", chatID, "alert_user_id", a.alertUserID, "error", err)
	}
}

// isPresent reports whether a chat member status counts as present in the chat.
func isPresent(member *models.ChatMember) bool {
	if member == nil {
		return false
	}
	switch member.Type {
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator, models.ChatMemberTypeMember:
		return true
	default:
		return false
	}
}

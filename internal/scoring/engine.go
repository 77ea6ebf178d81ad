package scoring

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Ectormind/bot-punteggio-ha-repository/internal/database"
)

// Messages holds the user-facing notice templates used by the engine.
// AlreadyUsed takes the user name and a comma-separated hashtag list;
// Awarded takes the user name and the point total.
type Messages struct {
	AlreadyUsed       string
	Awarded           string
	LeaderboardHeader string
	LeaderboardEmpty  string
	ResetDone         string
}

// Engine converts inbound message events into point awards, each granted at
// most once per user per hashtag per calendar day. It trusts its caller to
// have passed the authorization gate and performs no authorization itself.
type Engine struct {
	store    database.Store
	catalog  Catalog
	messages Messages
	location *time.Location
	logger   *slog.Logger
}

// NewEngine creates a scoring engine over the given store and catalog.
// The location determines where the calendar day boundary falls.
func NewEngine(store database.Store, catalog Catalog, messages Messages, location *time.Location, logger *slog.Logger) *Engine {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		store:    store,
		catalog:  catalog,
		messages: messages,
		location: location,
		logger:   logger.With("component", "scoring_engine"),
	}
}

// Day formats the calendar date of t in the engine's location.
func (e *Engine) Day(t time.Time) string {
	return t.In(e.location).Format(database.DateLayout)
}

// HandleMessage scores one inbound message and returns the user-facing
// notices it produced, in order. Malformed input (empty user or text) and
// messages containing no catalog hashtag are dropped silently with no state
// mutated. Store failures are returned to the caller unwrapped of any
// partial notices.
func (e *Engine) HandleMessage(ctx context.Context, chatID int64, user, text string, now time.Time) ([]string, error) {
	if user == "" || strings.TrimSpace(text) == "" {
		e.logger.DebugContext(ctx, "Dropping event with empty user or text", "chat_id", chatID)
		return nil, nil
	}

	matched := e.catalog.Match(text)
	if len(matched) == 0 {
		return nil, nil
	}

	day := e.Day(now)
	e.logger.DebugContext(ctx, "Scoring message",
		"chat_id", chatID, "user", user, "day", day, "matched", matched)

	var alreadyUsed []string
	var awards []database.Award
	for _, tag := range matched {
		used, err := e.store.HasUsedToday(ctx, chatID, user, tag, day)
		if err != nil {
			return nil, fmt.Errorf("failed to check usage of %q: %w", tag, err)
		}
		if used {
			alreadyUsed = append(alreadyUsed, tag)
		} else {
			awards = append(awards, database.Award{Hashtag: tag, Points: e.catalog.Points(tag)})
		}
	}

	var notices []string
	if len(alreadyUsed) > 0 {
		notices = append(notices, fmt.Sprintf(e.messages.AlreadyUsed, user, strings.Join(alreadyUsed, ", ")))
	}

	if len(awards) > 0 {
		granted, total, err := e.store.AwardPoints(ctx, chatID, user, awards, day)
		if err != nil {
			return nil, fmt.Errorf("failed to award points: %w", err)
		}
		// total can be zero when a concurrent duplicate delivery won every
		// insert race; in that case the other event already announced it.
		if total > 0 {
			e.logger.InfoContext(ctx, "Points awarded",
				"chat_id", chatID, "user", user, "total", total, "hashtags", len(granted))
			notices = append(notices, fmt.Sprintf(e.messages.Awarded, user, total))
		}
	}

	return notices, nil
}

// Leaderboard renders the current standings for a chat.
func (e *Engine) Leaderboard(ctx context.Context, chatID int64) (string, error) {
	entries, err := e.store.GetLeaderboard(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return FormatLeaderboard(entries, e.messages.LeaderboardHeader, e.messages.LeaderboardEmpty), nil
}

// Reset clears all scores and usage records for a chat and returns the
// confirmation notice.
func (e *Engine) Reset(ctx context.Context, chatID int64) (string, error) {
	if err := e.store.ResetChat(ctx, chatID); err != nil {
		return "", fmt.Errorf("failed to reset chat: %w", err)
	}
	e.logger.InfoContext(ctx, "Chat scores reset", "chat_id", chatID)
	return e.messages.ResetDone, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for score and usage-ledger operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetLeaderboard returns a chat's standings ordered by points descending.
	// Ties are broken by insertion order. Returns an empty slice when the chat
	// has no records.
	GetLeaderboard(ctx context.Context, chatID int64) ([]LeaderboardEntry, error)

	// HasUsedToday reports whether the hashtag has already been credited to the
	// user in the chat on the given calendar day.
	HasUsedToday(ctx context.Context, chatID int64, userName, hashtag, day string) (bool, error)

	// AwardPoints credits the given hashtags to the user in a single transaction:
	// every usage record and the score increment succeed or fail together.
	// Hashtags already present in the ledger for that day are skipped, so
	// duplicate deliveries of the same message award exactly once. It returns
	// the awards actually granted and the total points added.
	AwardPoints(ctx context.Context, chatID int64, userName string, awards []Award, day string) ([]Award, int, error)

	// ResetChat deletes all score and usage records for the chat in a single
	// transaction, so readers never observe a partial reset.
	ResetChat(ctx context.Context, chatID int64) error

	// PruneUsageBefore deletes usage records older than the given day across all
	// chats and returns the number of rows removed. Only the current day's rows
	// are load-bearing for dedup.
	PruneUsageBefore(ctx context.Context, day string) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetLeaderboard returns a chat's standings ordered by points descending.
func (s *sqlxStore) GetLeaderboard(ctx context.Context, chatID int64) ([]LeaderboardEntry, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	entries := []LeaderboardEntry{}
	query := `
        SELECT user_name, points
        FROM scores
        WHERE chat_id = ?
        ORDER BY points DESC, id ASC;
    `

	err := s.db.SelectContext(ctx, &entries, query, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting leaderboard", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get leaderboard for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Fetched leaderboard", "chat_id", chatID, "count", len(entries))
	return entries, nil
}

// HasUsedToday is a pure existence check against the usage ledger.
func (s *sqlxStore) HasUsedToday(ctx context.Context, chatID int64, userName, hashtag, day string) (bool, error) {
	if chatID == 0 {
		return false, fmt.Errorf("chat_id cannot be zero")
	}
	if userName == "" || hashtag == "" || day == "" {
		return false, fmt.Errorf("user_name, hashtag and day must be non-empty")
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	var count int
	query := `
        SELECT COUNT(*) FROM hashtag_usage
        WHERE chat_id = ? AND user_name = ? AND hashtag = ? AND used_on = ?;
    `

	if err := s.db.GetContext(ctx, &count, query, chatID, userName, hashtag, day); err != nil {
		s.logger.ErrorContext(ctx, "Error checking hashtag usage",
			"chat_id", chatID, "user_name", userName, "hashtag", hashtag, "error", err)
		return false, fmt.Errorf("failed to check usage of %q for user %q in chat %d: %w",
			hashtag, userName, chatID, err)
	}

	return count > 0, nil
}

// AwardPoints credits the given hashtags to the user atomically.
//
// The usage rows are inserted with ON CONFLICT DO NOTHING so a concurrent
// duplicate delivery loses the race cleanly: its insert affects zero rows, the
// hashtag is dropped from the grant set, and no points are added for it. The
// score upsert and all usage inserts share one transaction, so a failure
// between them can never leave points credited without a matching ledger entry.
func (s *sqlxStore) AwardPoints(ctx context.Context, chatID int64, userName string, awards []Award, day string) ([]Award, int, error) {
	if chatID == 0 {
		return nil, 0, fmt.Errorf("chat_id cannot be zero")
	}
	if userName == "" || day == "" {
		return nil, 0, fmt.Errorf("user_name and day must be non-empty")
	}
	if len(awards) == 0 {
		return nil, 0, nil
	}
	for _, a := range awards {
		if a.Points <= 0 {
			return nil, 0, fmt.Errorf("award for %q has non-positive points %d", a.Hashtag, a.Points)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for award",
			"chat_id", chatID, "user_name", userName, "error", err)
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back award transaction", "error", rollbackErr)
			}
		}
	}()

	now := time.Now().UTC()
	usageQuery := `
        INSERT INTO hashtag_usage (created_at, chat_id, user_name, hashtag, used_on)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (chat_id, user_name, hashtag, used_on) DO NOTHING;
    `

	granted := make([]Award, 0, len(awards))
	total := 0
	for _, award := range awards {
		result, err := tx.ExecContext(ctx, usageQuery, now, chatID, userName, award.Hashtag, day)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error recording hashtag usage",
				"chat_id", chatID, "user_name", userName, "hashtag", award.Hashtag, "error", err)
			return nil, 0, fmt.Errorf("failed to record usage of %q: %w", award.Hashtag, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to check usage insert result for %q: %w", award.Hashtag, err)
		}
		if affected == 0 {
			// Already credited today, benign under duplicate delivery.
			s.logger.DebugContext(ctx, "Hashtag already recorded for today, skipping award",
				"chat_id", chatID, "user_name", userName, "hashtag", award.Hashtag, "day", day)
			continue
		}

		granted = append(granted, award)
		total += award.Points
	}

	if total > 0 {
		scoreQuery := `
            INSERT INTO scores (created_at, updated_at, chat_id, user_name, points)
            VALUES (?, ?, ?, ?, ?)
            ON CONFLICT (chat_id, user_name)
            DO UPDATE SET points = points + excluded.points, updated_at = excluded.updated_at;
        `
		if _, err := tx.ExecContext(ctx, scoreQuery, now, now, chatID, userName, total); err != nil {
			s.logger.ErrorContext(ctx, "Error incrementing score",
				"chat_id", chatID, "user_name", userName, "delta", total, "error", err)
			return nil, 0, fmt.Errorf("failed to add %d points for user %q in chat %d: %w",
				total, userName, chatID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit award transaction",
			"chat_id", chatID, "user_name", userName, "error", err)
		return nil, 0, fmt.Errorf("failed to commit award transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Awarded points",
		"chat_id", chatID, "user_name", userName, "granted", len(granted), "total", total)
	return granted, total, nil
}

// ResetChat deletes all score and usage records for the chat atomically.
func (s *sqlxStore) ResetChat(ctx context.Context, chatID int64) error {
	if chatID == 0 {
		return fmt.Errorf("chat_id cannot be zero")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for chat reset", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to begin transaction for chat reset: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back reset transaction", "error", rollbackErr)
			}
		}
	}()

	scoresResult, err := tx.ExecContext(ctx, `DELETE FROM scores WHERE chat_id = ?`, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting scores during reset", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to delete scores for chat %d: %w", chatID, err)
	}
	scoresCount, _ := scoresResult.RowsAffected()

	usageResult, err := tx.ExecContext(ctx, `DELETE FROM hashtag_usage WHERE chat_id = ?`, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting hashtag usage during reset", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to delete hashtag usage for chat %d: %w", chatID, err)
	}
	usageCount, _ := usageResult.RowsAffected()

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit reset transaction", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to commit reset transaction: %w", err)
	}
	tx = nil

	s.logger.InfoContext(ctx, "Chat reset completed",
		"chat_id", chatID, "scores_deleted", scoresCount, "usage_deleted", usageCount)
	return nil
}

// PruneUsageBefore deletes usage records older than the given day.
func (s *sqlxStore) PruneUsageBefore(ctx context.Context, day string) (int64, error) {
	if day == "" {
		return 0, fmt.Errorf("day must be non-empty")
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	// used_on is an ISO calendar date, so lexicographic order is date order.
	result, err := s.db.ExecContext(ctx, `DELETE FROM hashtag_usage WHERE used_on < ?`, day)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning hashtag usage", "before", day, "error", err)
		return 0, fmt.Errorf("failed to prune usage records before %s: %w", day, err)
	}

	pruned, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned usage records: %w", err)
	}

	s.logger.InfoContext(ctx, "Pruned old usage records", "before", day, "count", pruned)
	return pruned, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}

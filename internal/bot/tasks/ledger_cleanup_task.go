package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/Ectormind/bot-punteggio-ha-repository/internal/database"
)

const cleanupTimeout = time.Minute

// newLedgerCleanupTask returns a task that prunes usage-ledger rows older than
// the configured retention window. Only the current day's rows guard dedup;
// older rows are dead weight.
func newLedgerCleanupTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "ledger_cleanup")
	retention := deps.Config.Scoring.LedgerRetentionDays

	return func(ctx context.Context) error {
		timeoutCtx, cancel := context.WithTimeout(ctx, cleanupTimeout)
		defer cancel()

		cutoff := time.Now().In(deps.Location).AddDate(0, 0, -retention).Format(database.DateLayout)

		pruned, err := deps.Store.PruneUsageBefore(timeoutCtx, cutoff)
		if err != nil {
			return fmt.Errorf("ledger cleanup failed: %w", err)
		}

		log.InfoContext(ctx, "Ledger cleanup completed", "before", cutoff, "pruned", pruned)
		return nil
	}
}

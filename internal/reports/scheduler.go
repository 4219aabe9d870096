package reports

import (
	"context"
	"log/slog"
	"time"
)

// Schedule takes a snapshot every interval until ctx is done. A failed
// snapshot is logged and the schedule continues.
func Schedule(ctx context.Context, interval time.Duration, agg *Aggregator, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("report scheduler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("report scheduler stopped")
			return
		case <-ticker.C:
			if _, err := agg.Snapshot(ctx); err != nil && ctx.Err() == nil {
				logger.Error("scheduled snapshot failed", "error", err)
			}
		}
	}
}

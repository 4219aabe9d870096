package reports

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/lifecycle"
	"github.com/JaimeStill/lacuna/pkg/pagination"
)

// System defines the public contract for report operations.
type System interface {
	Handler(maxBodySize int64) *Handler

	// Start schedules periodic snapshots on lc when an interval is configured.
	Start(lc *lifecycle.Coordinator)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Report], error)

	Find(ctx context.Context, id uuid.UUID) (*Report, error)

	// Archived streams the archived JSON copy of a report.
	Archived(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)

	Snapshot(ctx context.Context) (*Report, error)

	// RunAnalysis detects gaps, generates FAQs, and records an analysis_run report.
	RunAnalysis(ctx context.Context, batch signals.Batch) (*RunResult, error)
}

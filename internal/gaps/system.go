package gaps

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/pagination"
)

// System defines the public contract for gap domain operations.
type System interface {
	Handler(maxBodySize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Gap], error)

	Find(ctx context.Context, id uuid.UUID) (*Gap, error)

	// Create records a manually reported gap. Fails with ErrDuplicate when the
	// topic already has an unresolved gap.
	Create(ctx context.Context, cmd CreateCommand) (*Gap, error)

	// Analyze ingests a raw batch and runs detection over it.
	Analyze(ctx context.Context, batch signals.Batch) (*DetectResult, error)
	Detect(ctx context.Context, sigs []signals.Signal) (*DetectResult, error)

	// UpdateStatus applies a manual, adjacent status transition.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Gap, error)

	// ResolveTopic resolves every unresolved gap for topic, passing through
	// intermediate statuses. Returns the gaps it resolved.
	ResolveTopic(ctx context.Context, topic string) ([]Gap, error)

	Stats(ctx context.Context) (*Stats, error)
}

package gaps

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/pkg/pagination"
)

// UpsertFunc receives the topic's unresolved gap, or nil when none exists, and
// returns the gap to persist. Returning a nil gap leaves storage unchanged.
type UpsertFunc func(current *Gap) (*Gap, error)

// UpdateFunc mutates a gap in place. Returning an error discards the mutation.
type UpdateFunc func(g *Gap) error

// Store persists gaps. Upsert and Update are atomic per record: Upsert serializes
// writers on the topic and Update serializes writers on the gap.
type Store interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Gap], error)
	Find(ctx context.Context, id uuid.UUID) (*Gap, error)
	Upsert(ctx context.Context, topic string, fn UpsertFunc) (gap *Gap, changed bool, err error)
	Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*Gap, error)
	Unresolved(ctx context.Context, topic string) ([]Gap, error)
	Stats(ctx context.Context) (*Stats, error)
}

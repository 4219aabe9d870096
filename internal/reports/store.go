package reports

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/pkg/pagination"
)

// Store persists reports. Reports are append-only.
type Store interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Report], error)
	Find(ctx context.Context, id uuid.UUID) (*Report, error)
	Create(ctx context.Context, r *Report) error
}

package faqs

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/pkg/pagination"
)

// UpdateFunc mutates an FAQ in place. Returning an error discards the mutation.
type UpdateFunc func(f *FAQ) error

// Store persists FAQs. Writers are serialized per topic, so a generated draft
// cannot be created while another unpublished FAQ holds its topic.
type Store interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[FAQ], error)
	Find(ctx context.Context, id uuid.UUID) (*FAQ, error)
	// Create persists f. Generated FAQs fail with ErrDuplicate when the topic
	// already has an unpublished FAQ.
	Create(ctx context.Context, f *FAQ) error
	Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*FAQ, error)
	// Unpublished returns the topic's FAQs that are not yet published.
	Unpublished(ctx context.Context, topic string) ([]FAQ, error)
	Stats(ctx context.Context) (*Stats, error)
}

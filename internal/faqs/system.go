package faqs

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/gaps"
	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/pagination"
)

// System defines the public contract for FAQ domain operations.
type System interface {
	Handler(maxBodySize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[FAQ], error)

	Find(ctx context.Context, id uuid.UUID) (*FAQ, error)
	Create(ctx context.Context, cmd CreateCommand) (*FAQ, error)
	Edit(ctx context.Context, id uuid.UUID, cmd EditCommand) (*FAQ, error)

	// Generate ingests a raw batch and drafts FAQs from it.
	Generate(ctx context.Context, batch signals.Batch) (*GenerateResult, error)
	GenerateFrom(ctx context.Context, sigs []signals.Signal) (*GenerateResult, error)

	Submit(ctx context.Context, id uuid.UUID) (*FAQ, error)
	Approve(ctx context.Context, id uuid.UUID) (*FAQ, error)

	// Publish publishes the FAQ and resolves the open gaps on its topic.
	Publish(ctx context.Context, id uuid.UUID, override bool) (*FAQ, error)

	Feedback(ctx context.Context, id uuid.UUID, helpful bool) (*FAQ, error)
	Stats(ctx context.Context) (*Stats, error)
}

// GapResolver resolves the gaps covered by a published FAQ.
type GapResolver interface {
	ResolveTopic(ctx context.Context, topic string) ([]gaps.Gap, error)
}

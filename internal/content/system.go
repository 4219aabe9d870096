package content

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/gaps"
)

// System defines the content operations exposed by the API.
type System interface {
	Handler(maxBodySize int64) *Handler

	List(ctx context.Context, q ListQuery) ([]Item, error)
	Coverage(ctx context.Context, expectedTopics []string) (*Coverage, error)
	Suggest(ctx context.Context, req SuggestionRequest) (*Suggestion, error)
}

// GapFinder resolves the gap a suggestion request refers to.
type GapFinder interface {
	Find(ctx context.Context, id uuid.UUID) (*gaps.Gap, error)
}

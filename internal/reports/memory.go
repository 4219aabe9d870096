package reports

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/pkg/pagination"
	"github.com/JaimeStill/lacuna/pkg/query"
)

type memory struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]Report
}

// NewMemory creates an in-process Store.
func NewMemory() Store {
	return &memory{reports: make(map[uuid.UUID]Report)}
}

func (m *memory) List(
	_ context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Report], error) {
	m.mu.RLock()
	matched := make([]Report, 0, len(m.reports))
	for _, r := range m.reports {
		if filters.Kind == nil || r.Kind == *filters.Kind {
			matched = append(matched, r)
		}
	}
	m.mu.RUnlock()

	sort := sortFields(page.Sort)
	if len(sort) == 0 {
		sort = []query.SortField{defaultSort}
	}
	slices.SortStableFunc(matched, func(a, b Report) int {
		for _, f := range sort {
			var c int
			switch f.Field {
			case "generated_at":
				c = a.GeneratedAt.Compare(b.GeneratedAt)
			case "gap_count":
				c = cmp.Compare(a.GapCount, b.GapCount)
			case "faq_count":
				c = cmp.Compare(a.FAQCount, b.FAQCount)
			case "kind":
				c = cmp.Compare(a.Kind, b.Kind)
			}
			if f.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	total := len(matched)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)

	result := pagination.NewPageResult(matched[start:end], total, page.Page, page.PageSize)
	return &result, nil
}

func (m *memory) Find(_ context.Context, id uuid.UUID) (*Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *memory) Create(ctx context.Context, r *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reports[r.ID]; ok {
		return ErrDuplicate
	}
	m.reports[r.ID] = *r
	return nil
}

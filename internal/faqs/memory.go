package faqs

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/pkg/keylock"
	"github.com/JaimeStill/lacuna/pkg/pagination"
	"github.com/JaimeStill/lacuna/pkg/query"
)

type memory struct {
	mu    sync.RWMutex
	faqs  map[uuid.UUID]*FAQ
	locks keylock.Map
}

// NewMemory creates an in-process Store. Writers to the same topic are
// serialized by a keyed lock.
func NewMemory() Store {
	return &memory{faqs: make(map[uuid.UUID]*FAQ)}
}

func (m *memory) List(
	_ context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[FAQ], error) {
	m.mu.RLock()
	matched := make([]FAQ, 0, len(m.faqs))
	for _, f := range m.faqs {
		if filters.Matches(f) && matchesSearch(f, page.Search) {
			matched = append(matched, *f.clone())
		}
	}
	m.mu.RUnlock()

	sort := sortFields(page.Sort)
	if len(sort) == 0 {
		sort = []query.SortField{defaultSort}
	}
	slices.SortStableFunc(matched, func(a, b FAQ) int {
		for _, s := range sort {
			c := compareField(&a, &b, s.Field)
			if s.Descending {
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

func (m *memory) Find(_ context.Context, id uuid.UUID) (*FAQ, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.faqs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f.clone(), nil
}

func (m *memory) Create(ctx context.Context, f *FAQ) error {
	unlock := m.locks.Lock(f.Topic)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.faqs[f.ID]; ok {
		return ErrDuplicate
	}
	if f.Origin == OriginGenerated {
		for _, existing := range m.faqs {
			if existing.Origin == OriginGenerated && existing.Topic == f.Topic && existing.Status != StatusPublished {
				return ErrDuplicate
			}
		}
	}

	m.faqs[f.ID] = f.clone()
	return nil
}

func (m *memory) Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*FAQ, error) {
	m.mu.RLock()
	f, ok := m.faqs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	unlock := m.locks.Lock(f.Topic)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	working := m.faqs[id].clone()
	m.mu.RUnlock()

	if err := fn(working); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.faqs[id] = working.clone()
	m.mu.Unlock()

	return working, nil
}

func (m *memory) Unpublished(_ context.Context, topic string) ([]FAQ, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []FAQ
	for _, f := range m.faqs {
		if f.Topic == topic && f.Status != StatusPublished {
			out = append(out, *f.clone())
		}
	}
	slices.SortFunc(out, func(a, b FAQ) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (m *memory) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := NewStats()
	var (
		confidence float64
		generated  int
	)
	for _, f := range m.faqs {
		stats.Total++
		stats.ByStatus[f.Status]++
		stats.HelpfulTotal += f.HelpfulCount
		stats.NotHelpfulTotal += f.NotHelpfulCount
		if f.Origin == OriginGenerated {
			generated++
			confidence += f.ConfidenceScore
		}
	}
	if generated > 0 {
		stats.AverageConfidence = confidence / float64(generated)
	}
	return &stats, nil
}

func matchesSearch(f *FAQ, search *string) bool {
	if search == nil || *search == "" {
		return true
	}
	s := strings.ToLower(*search)
	return strings.Contains(strings.ToLower(f.Question), s) ||
		strings.Contains(strings.ToLower(f.Answer), s) ||
		strings.Contains(strings.ToLower(f.Category), s)
}

func compareField(a, b *FAQ, field string) int {
	switch field {
	case "question":
		return cmp.Compare(a.Question, b.Question)
	case "category":
		return cmp.Compare(a.Category, b.Category)
	case "topic":
		return cmp.Compare(a.Topic, b.Topic)
	case "status":
		return cmp.Compare(a.Status, b.Status)
	case "confidence_score":
		return cmp.Compare(a.ConfidenceScore, b.ConfidenceScore)
	case "helpful_count":
		return cmp.Compare(a.HelpfulCount, b.HelpfulCount)
	case "not_helpful_count":
		return cmp.Compare(a.NotHelpfulCount, b.NotHelpfulCount)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}

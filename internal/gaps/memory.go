package gaps

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
	gaps  map[uuid.UUID]*Gap
	locks keylock.Map
}

// NewMemory creates an in-process Store. Writers to the same topic are
// serialized by a keyed lock.
func NewMemory() Store {
	return &memory{gaps: make(map[uuid.UUID]*Gap)}
}

func (m *memory) List(
	_ context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Gap], error) {
	m.mu.RLock()
	matched := make([]Gap, 0, len(m.gaps))
	for _, g := range m.gaps {
		if !filters.Matches(g) || !matchesSearch(g, page.Search) {
			continue
		}
		if err := checkIntegrity(g); err != nil {
			m.mu.RUnlock()
			return nil, err
		}
		matched = append(matched, *g.clone())
	}
	m.mu.RUnlock()

	sort := sortFields(page.Sort)
	if len(sort) == 0 {
		sort = []query.SortField{defaultSort}
	}
	slices.SortStableFunc(matched, func(a, b Gap) int {
		for _, f := range sort {
			c := compareField(&a, &b, f.Field)
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

func (m *memory) Find(_ context.Context, id uuid.UUID) (*Gap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.gaps[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := checkIntegrity(g); err != nil {
		return nil, err
	}
	return g.clone(), nil
}

func (m *memory) Upsert(ctx context.Context, topic string, fn UpsertFunc) (*Gap, bool, error) {
	unlock := m.locks.Lock(topic)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	current := m.unresolved(topic)

	var arg *Gap
	if current != nil {
		arg = current.clone()
	}

	next, err := fn(arg)
	if err != nil {
		return nil, false, err
	}
	if next == nil {
		if current == nil {
			return nil, false, nil
		}
		return current.clone(), false, nil
	}

	if err := checkIntegrity(next); err != nil {
		return nil, false, err
	}
	if current != nil && current.ID != next.ID {
		return nil, false, ErrDuplicate
	}

	m.mu.Lock()
	m.gaps[next.ID] = next.clone()
	m.mu.Unlock()

	return next, true, nil
}

func (m *memory) Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*Gap, error) {
	m.mu.RLock()
	g, ok := m.gaps[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	unlock := m.locks.Lock(g.Topic)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	working := m.gaps[id].clone()
	m.mu.RUnlock()

	if err := fn(working); err != nil {
		return nil, err
	}
	if err := checkIntegrity(working); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.gaps[id] = working.clone()
	m.mu.Unlock()

	return working, nil
}

func (m *memory) Unresolved(_ context.Context, topic string) ([]Gap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Gap
	for _, g := range m.gaps {
		if g.Topic == topic && g.Status != StatusResolved {
			out = append(out, *g.clone())
		}
	}
	slices.SortFunc(out, func(a, b Gap) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (m *memory) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := NewStats()
	var impact float64
	for _, g := range m.gaps {
		stats.Total++
		stats.ByPriority[g.Priority]++
		stats.ByStatus[g.Status]++
		impact += g.ImpactScore
		if g.Status != StatusResolved {
			stats.Top = append(stats.Top, g.highlight())
		}
	}
	if stats.Total > 0 {
		stats.AverageImpact = impact / float64(stats.Total)
	}

	slices.SortFunc(stats.Top, func(a, b Highlight) int {
		if c := cmp.Compare(b.ImpactScore, a.ImpactScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Topic, b.Topic)
	})
	if len(stats.Top) > TopLimit {
		stats.Top = stats.Top[:TopLimit]
	}
	return &stats, nil
}

func (m *memory) unresolved(topic string) *Gap {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, g := range m.gaps {
		if g.Topic == topic && g.Status != StatusResolved {
			return g
		}
	}
	return nil
}

func matchesSearch(g *Gap, search *string) bool {
	if search == nil || *search == "" {
		return true
	}
	s := strings.ToLower(*search)
	return strings.Contains(strings.ToLower(g.Title), s) ||
		strings.Contains(strings.ToLower(g.Description), s) ||
		strings.Contains(strings.ToLower(g.Topic), s)
}

func compareField(a, b *Gap, field string) int {
	switch field {
	case "title":
		return cmp.Compare(a.Title, b.Title)
	case "topic":
		return cmp.Compare(a.Topic, b.Topic)
	case "priority":
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	case "impact_score":
		return cmp.Compare(a.ImpactScore, b.ImpactScore)
	case "status":
		return cmp.Compare(a.Status, b.Status)
	case "signal_count":
		return cmp.Compare(a.SignalCount, b.SignalCount)
	case "last_signal_at":
		return a.LastSignalAt.Compare(b.LastSignalAt)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}

package gaps

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/JaimeStill/lacuna/pkg/query"
	"github.com/JaimeStill/lacuna/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "gaps", "g").
	Project("id", "id").
	Project("title", "title").
	Project("description", "description").
	Project("topic", "topic").
	Project("priority", "priority").
	Project("impact_score", "impact_score").
	Project("status", "status").
	Project("signal_count", "signal_count").
	Project("search_count", "search_count").
	Project("ticket_count", "ticket_count").
	Project("last_signal_at", "last_signal_at").
	Project("evidence", "evidence").
	Project("version", "version").
	Project("created_at", "created_at").
	Project("updated_at", "updated_at").
	Project("resolved_at", "resolved_at")

var defaultSort = query.SortField{
	Field:      "impact_score",
	Descending: true,
}

// Filters contains optional filtering criteria for gap queries.
// Nil fields are ignored. Status, Priority, and Topic use exact matching.
// MinImpact keeps gaps scoring at least the given value.
type Filters struct {
	Status    *Status   `json:"status,omitempty"`
	Priority  *Priority `json:"priority,omitempty"`
	Topic     *string   `json:"topic,omitempty"`
	MinImpact *float64  `json:"min_impact,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	var status, priority *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	if f.Priority != nil {
		p := string(*f.Priority)
		priority = &p
	}

	return b.
		WhereEquals("status", status).
		WhereEquals("priority", priority).
		WhereEquals("topic", f.Topic).
		WhereAtLeast("impact_score", f.MinImpact)
}

// Matches reports whether g satisfies every set filter.
func (f Filters) Matches(g *Gap) bool {
	if f.Status != nil && g.Status != *f.Status {
		return false
	}
	if f.Priority != nil && g.Priority != *f.Priority {
		return false
	}
	if f.Topic != nil && g.Topic != *f.Topic {
		return false
	}
	if f.MinImpact != nil && g.ImpactScore < *f.MinImpact {
		return false
	}
	return true
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unknown status or priority values are rejected.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if s := values.Get("status"); s != "" {
		status, err := ParseStatus(s)
		if err != nil {
			return f, err
		}
		f.Status = &status
	}

	if p := values.Get("priority"); p != "" {
		priority, err := ParsePriority(p)
		if err != nil {
			return f, err
		}
		f.Priority = &priority
	}

	if t := values.Get("topic"); t != "" {
		f.Topic = &t
	}

	if m := values.Get("min_impact"); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil || v < 0 || v > 1 {
			return f, fmt.Errorf("%w: min_impact must be within [0,1]", ErrInvalidFilter)
		}
		f.MinImpact = &v
	}

	return f, nil
}

func sortFields(fields []query.SortField) []query.SortField {
	out := make([]query.SortField, 0, len(fields))
	for _, f := range fields {
		if projection.Has(f.Field) {
			out = append(out, f)
		}
	}
	return out
}

func scanGap(s repository.Scanner) (Gap, error) {
	var (
		g        Gap
		evidence []byte
	)

	err := s.Scan(
		&g.ID,
		&g.Title,
		&g.Description,
		&g.Topic,
		&g.Priority,
		&g.ImpactScore,
		&g.Status,
		&g.SignalCount,
		&g.SearchCount,
		&g.TicketCount,
		&g.LastSignalAt,
		&evidence,
		&g.Version,
		&g.CreatedAt,
		&g.UpdatedAt,
		&g.ResolvedAt,
	)
	if err != nil {
		return g, err
	}

	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &g.Evidence); err != nil {
			return g, fmt.Errorf("decode evidence for gap %s: %w", g.ID, err)
		}
	}

	if err := checkIntegrity(&g); err != nil {
		return g, fmt.Errorf("%w: gap %s has priority %s with score %.4f", err, g.ID, g.Priority, g.ImpactScore)
	}

	return g, nil
}

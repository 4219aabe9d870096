package reports

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/lacuna/pkg/query"
	"github.com/JaimeStill/lacuna/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "reports", "r").
	Project("id", "id").
	Project("kind", "kind").
	Project("generated_at", "generated_at").
	Project("gap_count", "gap_count").
	Project("faq_count", "faq_count").
	Project("body", "body")

var defaultSort = query.SortField{
	Field:      "generated_at",
	Descending: true,
}

// Filters contains optional filtering criteria for report queries.
type Filters struct {
	Kind *Kind `json:"kind,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	var kind *string
	if f.Kind != nil {
		k := string(*f.Kind)
		kind = &k
	}
	return b.WhereEquals("kind", kind)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters
	if k := values.Get("kind"); k != "" {
		kind, err := ParseKind(k)
		if err != nil {
			return f, err
		}
		f.Kind = &kind
	}
	return f, nil
}

func sortFields(fields []query.SortField) []query.SortField {
	out := make([]query.SortField, 0, len(fields))
	for _, f := range fields {
		if projection.Has(f.Field) && f.Field != "body" {
			out = append(out, f)
		}
	}
	return out
}

// Reports are stored whole in the body column. The remaining columns are
// denormalized for filtering and sorting.
func scanReport(s repository.Scanner) (Report, error) {
	var (
		r    Report
		body []byte
	)

	var (
		kind               Kind
		gapCount, faqCount int
	)
	if err := s.Scan(&r.ID, &kind, &r.GeneratedAt, &gapCount, &faqCount, &body); err != nil {
		return r, err
	}

	if err := json.Unmarshal(body, &r); err != nil {
		return r, fmt.Errorf("decode report %s: %w", r.ID, err)
	}
	return r, nil
}

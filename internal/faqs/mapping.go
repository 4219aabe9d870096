package faqs

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/lacuna/pkg/query"
	"github.com/JaimeStill/lacuna/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "faqs", "f").
	Project("id", "id").
	Project("question", "question").
	Project("answer", "answer").
	Project("category", "category").
	Project("topic", "topic").
	Project("status", "status").
	Project("origin", "origin").
	Project("confidence_score", "confidence_score").
	Project("helpful_count", "helpful_count").
	Project("not_helpful_count", "not_helpful_count").
	Project("source_tickets", "source_tickets").
	Project("related_queries", "related_queries").
	Project("version", "version").
	Project("created_at", "created_at").
	Project("updated_at", "updated_at").
	Project("published_at", "published_at")

var defaultSort = query.SortField{
	Field:      "created_at",
	Descending: true,
}

// Filters contains optional filtering criteria for FAQ queries.
// Nil fields are ignored; all fields use exact matching.
type Filters struct {
	Status   *Status `json:"status,omitempty"`
	Category *string `json:"category,omitempty"`
	Topic    *string `json:"topic,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}

	return b.
		WhereEquals("status", status).
		WhereEquals("category", f.Category).
		WhereEquals("topic", f.Topic)
}

// Matches reports whether f satisfies every set filter.
func (f Filters) Matches(faq *FAQ) bool {
	if f.Status != nil && faq.Status != *f.Status {
		return false
	}
	if f.Category != nil && faq.Category != *f.Category {
		return false
	}
	if f.Topic != nil && faq.Topic != *f.Topic {
		return false
	}
	return true
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if s := values.Get("status"); s != "" {
		status, err := ParseStatus(s)
		if err != nil {
			return f, err
		}
		f.Status = &status
	}

	if c := values.Get("category"); c != "" {
		f.Category = &c
	}

	if t := values.Get("topic"); t != "" {
		f.Topic = &t
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

func scanFAQ(s repository.Scanner) (FAQ, error) {
	var (
		f                FAQ
		tickets, queries []byte
	)

	err := s.Scan(
		&f.ID,
		&f.Question,
		&f.Answer,
		&f.Category,
		&f.Topic,
		&f.Status,
		&f.Origin,
		&f.ConfidenceScore,
		&f.HelpfulCount,
		&f.NotHelpfulCount,
		&tickets,
		&queries,
		&f.Version,
		&f.CreatedAt,
		&f.UpdatedAt,
		&f.PublishedAt,
	)
	if err != nil {
		return f, err
	}

	if err := decodeList(tickets, &f.SourceTickets); err != nil {
		return f, fmt.Errorf("decode source_tickets for faq %s: %w", f.ID, err)
	}
	if err := decodeList(queries, &f.RelatedQueries); err != nil {
		return f, fmt.Errorf("decode related_queries for faq %s: %w", f.ID, err)
	}
	return f, nil
}

func decodeList(data []byte, dst *[]string) error {
	if len(data) == 0 {
		*dst = []string{}
		return nil
	}
	return json.Unmarshal(data, dst)
}

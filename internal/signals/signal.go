// Package signals normalizes raw search-query and support-ticket records into
// uniform, immutable evidence units consumed by gap detection and FAQ generation.
package signals

import (
	"fmt"
	"time"
)

// Source identifies the kind of record a signal was derived from.
type Source string

const (
	SourceSearchQuery   Source = "search_query"
	SourceSupportTicket Source = "support_ticket"
)

// ParseSource validates s as a known Source.
func ParseSource(s string) (Source, error) {
	switch src := Source(s); src {
	case SourceSearchQuery, SourceSupportTicket:
		return src, nil
	}
	return "", fmt.Errorf("%w: unknown source %q", ErrValidation, s)
}

// Signal is a normalized unit of user-intent evidence.
type Signal struct {
	Text        string    `json:"text"`
	TopicHint   string    `json:"topic_hint,omitempty"`
	Source      Source    `json:"source"`
	Timestamp   time.Time `json:"timestamp"`
	Ref         string    `json:"ref,omitempty"`
	Weight      int       `json:"weight"`
	Detail      string    `json:"detail,omitempty"`
	Fingerprint string    `json:"fingerprint"`
}

// SearchQuery is a raw search record. Count is the number of times the query was issued.
type SearchQuery struct {
	Query     string     `json:"query"`
	Count     int        `json:"count,omitempty"`
	Topic     string     `json:"topic,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// SupportTicket is a raw ticket record. Category acts as the topic hint.
type SupportTicket struct {
	ID          string     `json:"id,omitempty"`
	Subject     string     `json:"subject"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Resolution  string     `json:"resolution,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// Batch is the request body accepted by analysis and generation endpoints.
type Batch struct {
	SearchQueries  []SearchQuery   `json:"search_queries"`
	SupportTickets []SupportTicket `json:"support_tickets"`
}

// Empty reports whether the batch carries no records.
func (b Batch) Empty() bool {
	return len(b.SearchQueries) == 0 && len(b.SupportTickets) == 0
}

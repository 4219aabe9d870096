// Package faqs implements the FAQ domain: draft generation from support-ticket
// clusters, curated authoring, the review lifecycle, and reader feedback.
package faqs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is an FAQ's position in its review lifecycle.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusPublished     Status = "published"
)

// ParseStatus validates s as a known Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusPublished:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Origin records how an FAQ entered the system.
type Origin string

const (
	OriginGenerated Origin = "generated"
	OriginCurated   Origin = "curated"
)

// FAQ is a question-and-answer record.
type FAQ struct {
	ID              uuid.UUID  `json:"id"`
	Question        string     `json:"question"`
	Answer          string     `json:"answer"`
	Category        string     `json:"category"`
	Topic           string     `json:"topic"`
	Status          Status     `json:"status"`
	Origin          Origin     `json:"origin"`
	ConfidenceScore float64    `json:"confidence_score"`
	HelpfulCount    int64      `json:"helpful_count"`
	NotHelpfulCount int64      `json:"not_helpful_count"`
	SourceTickets   []string   `json:"source_tickets"`
	RelatedQueries  []string   `json:"related_queries"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PublishedAt     *time.Time `json:"published_at"`
}

// HelpfulnessRatio returns helpful / (helpful + not helpful), or nil without feedback.
func (f FAQ) HelpfulnessRatio() *float64 {
	total := f.HelpfulCount + f.NotHelpfulCount
	if total == 0 {
		return nil
	}
	r := float64(f.HelpfulCount) / float64(total)
	return &r
}

// MarshalJSON adds the derived helpfulness_ratio.
func (f FAQ) MarshalJSON() ([]byte, error) {
	type alias FAQ
	return json.Marshal(struct {
		alias
		HelpfulnessRatio *float64 `json:"helpfulness_ratio"`
	}{
		alias:            alias(f),
		HelpfulnessRatio: f.HelpfulnessRatio(),
	})
}

// CreateCommand authors a curated FAQ.
type CreateCommand struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// EditCommand changes the content of a draft or pending FAQ. Nil fields are left unchanged.
type EditCommand struct {
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
	Category *string `json:"category,omitempty"`
}

// Stats aggregates the FAQ collection for reporting. AverageConfidence covers
// generated FAQs only; curated answers carry a fixed confidence of 1.
type Stats struct {
	Total             int            `json:"total"`
	ByStatus          map[Status]int `json:"by_status"`
	AverageConfidence float64        `json:"average_confidence"`
	HelpfulTotal      int64          `json:"helpful_total"`
	NotHelpfulTotal   int64          `json:"not_helpful_total"`
}

// NewStats returns Stats with every known status present at zero.
func NewStats() Stats {
	return Stats{
		ByStatus: map[Status]int{
			StatusDraft:         0,
			StatusPendingReview: 0,
			StatusApproved:      0,
			StatusPublished:     0,
		},
	}
}

func (f *FAQ) clone() *FAQ {
	c := *f
	c.SourceTickets = append([]string(nil), f.SourceTickets...)
	c.RelatedQueries = append([]string(nil), f.RelatedQueries...)
	if f.PublishedAt != nil {
		t := *f.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

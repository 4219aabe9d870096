// Package content fronts the external Content Analyzer: a collaborator that
// inventories the knowledge base, reports topic coverage, and proposes new
// content for a gap.
package content

import (
	"context"

	"github.com/google/uuid"
)

// Item is a knowledge-base entry as reported by the Content Analyzer.
type Item struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	ContentType       string  `json:"content_type"`
	Category          string  `json:"category"`
	ViewCount         int64   `json:"view_count"`
	FreshnessScore    float64 `json:"freshness_score"`
	CompletenessScore float64 `json:"completeness_score"`
	LastUpdated       string  `json:"last_updated"`
}

// ListQuery narrows a content listing.
type ListQuery struct {
	ContentType string
	Category    string
	Limit       int
}

// Coverage compares existing content against a set of expected topics.
type Coverage struct {
	TotalTopics        int      `json:"total_topics"`
	CoveredTopics      int      `json:"covered_topics"`
	CoveragePercentage float64  `json:"coverage_percentage"`
	WellCovered        []string `json:"well_covered"`
	PartiallyCovered   []string `json:"partially_covered"`
	NotCovered         []string `json:"not_covered"`
	Recommendations    []string `json:"recommendations"`
}

// SuggestionRequest asks for new content addressing a gap. When GapID is set
// the title and description are taken from the stored gap.
type SuggestionRequest struct {
	GapID          *uuid.UUID `json:"gap_id,omitempty"`
	GapTitle       string     `json:"gap_title"`
	GapDescription string     `json:"gap_description"`
}

// Suggestion is a proposed piece of content.
type Suggestion struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	Outline         []string `json:"outline"`
	Priority        string   `json:"priority"`
	TargetAudience  string   `json:"target_audience"`
	EstimatedEffort string   `json:"estimated_effort"`
	SEOKeywords     []string `json:"seo_keywords"`
}

// Analyzer is the Content Analyzer collaborator.
type Analyzer interface {
	List(ctx context.Context, q ListQuery) ([]Item, error)
	Coverage(ctx context.Context, expectedTopics []string) (*Coverage, error)
	Suggest(ctx context.Context, req SuggestionRequest) (*Suggestion, error)
}

// Disabled is the Analyzer used when no Content Analyzer is configured.
// Every call fails with ErrUnavailable.
var Disabled Analyzer = disabled{}

type disabled struct{}

func (disabled) List(context.Context, ListQuery) ([]Item, error) {
	return nil, ErrUnavailable
}

func (disabled) Coverage(context.Context, []string) (*Coverage, error) {
	return nil, ErrUnavailable
}

func (disabled) Suggest(context.Context, SuggestionRequest) (*Suggestion, error) {
	return nil, ErrUnavailable
}

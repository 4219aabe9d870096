// Package reports aggregates gap and FAQ state into immutable analysis reports,
// on demand and on a schedule, and records full analysis runs.
package reports

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/cluster"
	"github.com/JaimeStill/lacuna/internal/faqs"
	"github.com/JaimeStill/lacuna/internal/gaps"
)

// Kind distinguishes scheduled or manual snapshots from analysis runs.
type Kind string

const (
	KindSnapshot    Kind = "snapshot"
	KindAnalysisRun Kind = "analysis_run"
)

// ParseKind validates s as a known Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSnapshot, KindAnalysisRun:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Report is an immutable point-in-time summary.
type Report struct {
	ID                uuid.UUID             `json:"id"`
	Kind              Kind                  `json:"kind"`
	GeneratedAt       time.Time             `json:"generated_at"`
	GapCount          int                   `json:"gap_count"`
	FAQCount          int                   `json:"faq_count"`
	GapsByPriority    map[gaps.Priority]int `json:"gaps_by_priority"`
	GapsByStatus      map[gaps.Status]int   `json:"gaps_by_status"`
	FAQsByStatus      map[faqs.Status]int   `json:"faqs_by_status"`
	AverageImpact     float64               `json:"average_impact"`
	AverageConfidence float64               `json:"average_confidence"`
	HelpfulTotal      int64                 `json:"helpful_total"`
	NotHelpfulTotal   int64                 `json:"not_helpful_total"`
	Coverage          float64               `json:"coverage"`
	TopGaps           []gaps.Highlight      `json:"top_gaps"`
	Run               *Run                  `json:"run,omitempty"`
	ArchiveKey        string                `json:"archive_key,omitempty"`
}

// Run summarizes one analysis run.
type Run struct {
	SignalsAnalyzed int               `json:"signals_analyzed"`
	GapsUpserted    int               `json:"gaps_upserted"`
	FAQsGenerated   int               `json:"faqs_generated"`
	FAQsSkipped     int               `json:"faqs_skipped"`
	Failures        []cluster.Failure `json:"failures"`
	DurationMS      int64             `json:"duration_ms"`
}

// RunResult is returned by an analysis run: the detection and generation
// outcomes plus the report that recorded them.
type RunResult struct {
	Detection  *gaps.DetectResult   `json:"detection"`
	Generation *faqs.GenerateResult `json:"generation"`
	Report     *Report              `json:"report"`
}

// archiveKey returns the blob key a report is archived under.
func archiveKey(r *Report) string {
	return fmt.Sprintf("reports/%04d/%02d/%s.json", r.GeneratedAt.Year(), int(r.GeneratedAt.Month()), r.ID)
}

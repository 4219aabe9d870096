// Package gaps implements the knowledge-gap domain: detection from clustered
// signals, impact scoring, priority classification, and the gap review lifecycle.
package gaps

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/signals"
)

// Status is a gap's position in its review lifecycle.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// ParseStatus validates s as a known Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusOpen, StatusInProgress, StatusResolved:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Priority is the triage tier derived from a gap's impact score.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// ParsePriority validates s as a known Priority.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// Rank orders priorities from critical (3) down to low (0).
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	}
	return 0
}

// Gap is a detected documentation deficiency.
type Gap struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Topic        string     `json:"topic"`
	Priority     Priority   `json:"priority"`
	ImpactScore  float64    `json:"impact_score"`
	Status       Status     `json:"status"`
	SignalCount  int        `json:"signal_count"`
	SearchCount  int        `json:"search_count"`
	TicketCount  int        `json:"ticket_count"`
	LastSignalAt time.Time  `json:"last_signal_at"`
	Evidence     []Evidence `json:"evidence"`
	Version      int64      `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ResolvedAt   *time.Time `json:"resolved_at"`
}

// Evidence is one signal observation merged into a gap, keyed by fingerprint.
type Evidence struct {
	Fingerprint string         `json:"fingerprint"`
	Source      signals.Source `json:"source"`
	Weight      int            `json:"weight"`
	Excerpt     string         `json:"excerpt"`
	ObservedAt  time.Time      `json:"observed_at"`
}

// CreateCommand records a gap reported by a reviewer instead of detected from
// signals. Priority is optional; when set it must match the tier of ImpactScore.
type CreateCommand struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Topic       string    `json:"topic"`
	ImpactScore float64   `json:"impact_score"`
	Priority    *Priority `json:"priority,omitempty"`
}

const maxTitleLength = 200

func (c CreateCommand) validate() error {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, maxTitleLength)
	}
	if signals.NormalizeTopic(c.Topic) == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	if math.IsNaN(c.ImpactScore) || c.ImpactScore < 0 || c.ImpactScore > 1 {
		return fmt.Errorf("%w: impact_score must be between 0 and 1", ErrInvalidInput)
	}
	if c.Priority != nil {
		p, err := ParsePriority(string(*c.Priority))
		if err != nil {
			return err
		}
		if want := PriorityFor(c.ImpactScore); p != want {
			return fmt.Errorf("%w: priority %s does not match impact_score %.2f (%s)",
				ErrInvalidInput, p, c.ImpactScore, want)
		}
	}
	return nil
}

// TopLimit is how many unresolved gaps Stats ranks in Top.
const TopLimit = 5

// Stats aggregates the gap collection for reporting. Top holds the unresolved
// gaps with the highest impact, at most TopLimit, highest first.
type Stats struct {
	Total         int              `json:"total"`
	ByPriority    map[Priority]int `json:"by_priority"`
	ByStatus      map[Status]int   `json:"by_status"`
	AverageImpact float64          `json:"average_impact"`
	Top           []Highlight      `json:"top"`
}

// Highlight is the reporting view of a single gap.
type Highlight struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Topic       string    `json:"topic"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	ImpactScore float64   `json:"impact_score"`
}

func (g *Gap) highlight() Highlight {
	return Highlight{
		ID:          g.ID,
		Title:       g.Title,
		Topic:       g.Topic,
		Priority:    g.Priority,
		Status:      g.Status,
		ImpactScore: g.ImpactScore,
	}
}

// NewStats returns Stats with every known priority and status present at zero.
func NewStats() Stats {
	return Stats{
		ByPriority: map[Priority]int{
			PriorityCritical: 0,
			PriorityHigh:     0,
			PriorityMedium:   0,
			PriorityLow:      0,
		},
		ByStatus: map[Status]int{
			StatusOpen:       0,
			StatusInProgress: 0,
			StatusResolved:   0,
		},
		Top: []Highlight{},
	}
}

func (g *Gap) clone() *Gap {
	c := *g
	c.Evidence = append([]Evidence(nil), g.Evidence...)
	if g.ResolvedAt != nil {
		t := *g.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}

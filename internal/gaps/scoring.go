package gaps

import (
	"math"
	"time"

	"github.com/JaimeStill/lacuna/internal/signals"
)

// Priority thresholds. A gap's priority is the highest tier whose threshold
// its impact score meets.
const (
	CriticalThreshold = 0.75
	HighThreshold     = 0.50
	MediumThreshold   = 0.25
)

// SourceBonus is added when a gap carries evidence from both signal sources.
const SourceBonus = 0.1

// ScoreParams tunes impact scoring.
type ScoreParams struct {
	// VolumeScale is the signal count at which the volume term reaches 1-1/e.
	VolumeScale float64
	// HalfLife is the age at which the recency term halves.
	HalfLife time.Duration
}

// DefaultScoreParams returns the default scoring parameters.
func DefaultScoreParams() ScoreParams {
	return ScoreParams{
		VolumeScale: 8,
		HalfLife:    168 * time.Hour,
	}
}

// PriorityFor maps an impact score to its priority tier.
func PriorityFor(score float64) Priority {
	switch {
	case score >= CriticalThreshold:
		return PriorityCritical
	case score >= HighThreshold:
		return PriorityHigh
	case score >= MediumThreshold:
		return PriorityMedium
	}
	return PriorityLow
}

// Score computes the impact score of a body of evidence as of now.
// The score rises with total weight and with the recency of the newest
// observation. Empty evidence scores 0.
func Score(evidence []Evidence, now time.Time, p ScoreParams) float64 {
	if len(evidence) == 0 {
		return 0
	}
	if p.VolumeScale <= 0 || p.HalfLife <= 0 {
		p = DefaultScoreParams()
	}

	var (
		count           int
		newest          time.Time
		search, tickets bool
	)
	for _, e := range evidence {
		count += e.Weight
		if e.ObservedAt.After(newest) {
			newest = e.ObservedAt
		}
		switch e.Source {
		case signals.SourceSearchQuery:
			search = true
		case signals.SourceSupportTicket:
			tickets = true
		}
	}

	volume := 1 - math.Exp(-float64(count)/p.VolumeScale)

	age := max(now.Sub(newest), 0)
	recency := math.Pow(0.5, float64(age)/float64(p.HalfLife))

	score := volume * (0.8 + 0.2*recency)
	if search && tickets {
		score += SourceBonus
	}

	return clamp(score)
}

func clamp(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}

// checkIntegrity reports ErrIntegrity when a stored gap's priority does not
// match its impact score.
func checkIntegrity(g *Gap) error {
	if g.ImpactScore < 0 || g.ImpactScore > 1 || g.Priority != PriorityFor(g.ImpactScore) {
		return ErrIntegrity
	}
	return nil
}

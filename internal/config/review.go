package config

import (
	"fmt"
	"os"
	"strconv"
)

const EnvReviewMinConfidence = "LACUNA_REVIEW_MIN_CONFIDENCE"

// ReviewConfig holds FAQ review workflow thresholds.
type ReviewConfig struct {
	// MinConfidence promotes generated drafts to pending_review and gates
	// draft publishing without override.
	MinConfidence float64 `toml:"min_confidence"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ReviewConfig) Finalize() error {
	if c.MinConfidence == 0 {
		c.MinConfidence = 0.7
	}
	if v := os.Getenv(EnvReviewMinConfidence); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.MinConfidence = f
		}
	}
	if c.MinConfidence <= 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in (0,1]: %v", c.MinConfidence)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ReviewConfig) Merge(overlay *ReviewConfig) {
	if overlay.MinConfidence != 0 {
		c.MinConfidence = overlay.MinConfidence
	}
}

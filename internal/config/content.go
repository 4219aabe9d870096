package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvContentBaseURL    = "LACUNA_CONTENT_BASE_URL"
	EnvContentTimeout    = "LACUNA_CONTENT_TIMEOUT"
	EnvContentMaxRetries = "LACUNA_CONTENT_MAX_RETRIES"
)

// ContentConfig points at the external Content Analyzer. An empty base_url
// leaves the content endpoints answering 503.
type ContentConfig struct {
	BaseURL    string `toml:"base_url"`
	Timeout    string `toml:"timeout"`
	MaxRetries int    `toml:"max_retries"`
}

// Enabled reports whether a Content Analyzer has been configured.
func (c *ContentConfig) Enabled() bool {
	return c.BaseURL != ""
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *ContentConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ContentConfig) Finalize() error {
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 1
	}

	if v := os.Getenv(EnvContentBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvContentTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvContentMaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}

	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout %q", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative: %d", c.MaxRetries)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ContentConfig) Merge(overlay *ContentConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
}

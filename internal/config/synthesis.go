package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvSynthesisBaseURL       = "LACUNA_SYNTHESIS_BASE_URL"
	EnvSynthesisAPIKey        = "LACUNA_SYNTHESIS_API_KEY"
	EnvSynthesisModel         = "LACUNA_SYNTHESIS_MODEL"
	EnvSynthesisRatePerSecond = "LACUNA_SYNTHESIS_RATE_PER_SECOND"
	EnvSynthesisTimeout       = "LACUNA_SYNTHESIS_TIMEOUT"
	EnvSynthesisMaxRetries    = "LACUNA_SYNTHESIS_MAX_RETRIES"
)

// SynthesisConfig configures the OpenAI-compatible answer synthesizer.
// Synthesis is optional: an empty api_key disables FAQ generation.
type SynthesisConfig struct {
	BaseURL       string  `toml:"base_url"`
	APIKey        string  `toml:"api_key"`
	Model         string  `toml:"model"`
	Temperature   float64 `toml:"temperature"`
	MaxTokens     int     `toml:"max_tokens"`
	RatePerSecond float64 `toml:"rate_per_second"`
	Burst         int     `toml:"burst"`
	Timeout       string  `toml:"timeout"`
	MaxRetries    int     `toml:"max_retries"`
}

// Enabled reports whether an API key has been configured.
func (c *SynthesisConfig) Enabled() bool {
	return c.APIKey != ""
}

// TimeoutDuration returns the per-attempt Timeout as a time.Duration.
func (c *SynthesisConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *SynthesisConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *SynthesisConfig) Merge(overlay *SynthesisConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.RatePerSecond != 0 {
		c.RatePerSecond = overlay.RatePerSecond
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
}

func (c *SynthesisConfig) loadDefaults() {
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.2
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 800
	}
	if c.RatePerSecond == 0 {
		c.RatePerSecond = 2
	}
	if c.Burst == 0 {
		c.Burst = 2
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
}

func (c *SynthesisConfig) loadEnv() {
	if v := os.Getenv(EnvSynthesisBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvSynthesisAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvSynthesisModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvSynthesisRatePerSecond); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv(EnvSynthesisTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvSynthesisMaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
}

func (c *SynthesisConfig) validate() error {
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout %q", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative: %d", c.MaxRetries)
	}
	if c.RatePerSecond < 0 {
		return fmt.Errorf("rate_per_second must not be negative: %v", c.RatePerSecond)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvEventsRedisAddr     = "LACUNA_EVENTS_REDIS_ADDR"
	EnvEventsRedisPassword = "LACUNA_EVENTS_REDIS_PASSWORD"
	EnvEventsRedisDB       = "LACUNA_EVENTS_REDIS_DB"
	EnvEventsStream        = "LACUNA_EVENTS_STREAM"
)

// EventsConfig configures the Redis stream that mirrors invalidation events.
// An empty redis_addr keeps events in process.
type EventsConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Stream        string `toml:"stream"`
	MaxLen        int64  `toml:"max_len"`
	Timeout       string `toml:"timeout"`
}

// Enabled reports whether a Redis address has been configured.
func (c *EventsConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *EventsConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EventsConfig) Finalize() error {
	if c.Stream == "" {
		c.Stream = "lacuna:invalidations"
	}
	if c.MaxLen == 0 {
		c.MaxLen = 10000
	}
	if c.Timeout == "" {
		c.Timeout = "2s"
	}

	if v := os.Getenv(EnvEventsRedisAddr); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv(EnvEventsRedisPassword); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv(EnvEventsRedisDB); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv(EnvEventsStream); v != "" {
		c.Stream = v
	}

	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.MaxLen < 0 {
		return fmt.Errorf("max_len must not be negative: %d", c.MaxLen)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *EventsConfig) Merge(overlay *EventsConfig) {
	if overlay.RedisAddr != "" {
		c.RedisAddr = overlay.RedisAddr
	}
	if overlay.RedisPassword != "" {
		c.RedisPassword = overlay.RedisPassword
	}
	if overlay.RedisDB != 0 {
		c.RedisDB = overlay.RedisDB
	}
	if overlay.Stream != "" {
		c.Stream = overlay.Stream
	}
	if overlay.MaxLen != 0 {
		c.MaxLen = overlay.MaxLen
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

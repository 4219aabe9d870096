package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvLoggingLevel  = "LACUNA_LOG_LEVEL"
	EnvLoggingFormat = "LACUNA_LOG_FORMAT"
)

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SlogLevel returns Level as a slog.Level.
func (c *LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// JSON reports whether the JSON handler is selected.
func (c *LoggingConfig) JSON() bool {
	return c.Format == "json"
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LoggingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

func (c *LoggingConfig) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

func (c *LoggingConfig) loadEnv() {
	if v := os.Getenv(EnvLoggingLevel); v != "" {
		c.Level = v
	}
	if v := os.Getenv(EnvLoggingFormat); v != "" {
		c.Format = v
	}
	c.Level = strings.ToLower(c.Level)
	c.Format = strings.ToLower(c.Format)
}

func (c *LoggingConfig) validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}

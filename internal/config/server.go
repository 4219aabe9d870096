package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost            = "LACUNA_SERVER_HOST"
	EnvServerPort            = "LACUNA_SERVER_PORT"
	EnvServerReadTimeout     = "LACUNA_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "LACUNA_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "LACUNA_SERVER_SHUTDOWN_TIMEOUT"
	EnvServerHeaderTimeout   = "LACUNA_SERVER_READ_HEADER_TIMEOUT"
	EnvServerIdleTimeout     = "LACUNA_SERVER_IDLE_TIMEOUT"
)

// ServerConfig holds HTTP server parameters. WriteTimeout bounds the longest
// synchronous request, a full analysis run, so it must cover the synthesis
// budget for a batch.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ReadTimeoutDuration returns ReadTimeout as a time.Duration.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

// ReadHeaderTimeoutDuration returns ReadHeaderTimeout as a time.Duration.
func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadHeaderTimeout)
	return d
}

// IdleTimeoutDuration returns IdleTimeout as a time.Duration.
func (c *ServerConfig) IdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	return d
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.ReadTimeout != "" {
		c.ReadTimeout = overlay.ReadTimeout
	}
	if overlay.ReadHeaderTimeout != "" {
		c.ReadHeaderTimeout = overlay.ReadHeaderTimeout
	}
	if overlay.WriteTimeout != "" {
		c.WriteTimeout = overlay.WriteTimeout
	}
	if overlay.IdleTimeout != "" {
		c.IdleTimeout = overlay.IdleTimeout
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "30s"
	}
	if c.ReadHeaderTimeout == "" {
		c.ReadHeaderTimeout = "10s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "5m"
	}
	if c.IdleTimeout == "" {
		c.IdleTimeout = "2m"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv(EnvServerReadTimeout); v != "" {
		c.ReadTimeout = v
	}
	if v := os.Getenv(EnvServerHeaderTimeout); v != "" {
		c.ReadHeaderTimeout = v
	}
	if v := os.Getenv(EnvServerWriteTimeout); v != "" {
		c.WriteTimeout = v
	}
	if v := os.Getenv(EnvServerIdleTimeout); v != "" {
		c.IdleTimeout = v
	}
	if v := os.Getenv(EnvServerShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := time.ParseDuration(c.ReadTimeout); err != nil {
		return fmt.Errorf("invalid read_timeout: %w", err)
	}
	header, err := time.ParseDuration(c.ReadHeaderTimeout)
	if err != nil {
		return fmt.Errorf("invalid read_header_timeout: %w", err)
	}
	if read := c.ReadTimeoutDuration(); read > 0 && header > read {
		return fmt.Errorf("read_header_timeout %s exceeds read_timeout %s", c.ReadHeaderTimeout, c.ReadTimeout)
	}
	if _, err := time.ParseDuration(c.WriteTimeout); err != nil {
		return fmt.Errorf("invalid write_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.IdleTimeout); err != nil {
		return fmt.Errorf("invalid idle_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/lacuna/pkg/database"
	"github.com/JaimeStill/lacuna/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvLacunaEnv             = "LACUNA_ENV"
	EnvLacunaShutdownTimeout = "LACUNA_SHUTDOWN_TIMEOUT"
	EnvLacunaVersion         = "LACUNA_VERSION"
	EnvLacunaStore           = "LACUNA_STORE"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

var databaseEnv = &database.Env{
	Host:            "LACUNA_DB_HOST",
	Port:            "LACUNA_DB_PORT",
	Name:            "LACUNA_DB_NAME",
	User:            "LACUNA_DB_USER",
	Password:        "LACUNA_DB_PASSWORD",
	SSLMode:         "LACUNA_DB_SSL_MODE",
	MaxOpenConns:    "LACUNA_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "LACUNA_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "LACUNA_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "LACUNA_DB_CONN_TIMEOUT",
	ApplicationName: "LACUNA_DB_APPLICATION_NAME",
}

var storageEnv = &storage.Env{
	ContainerName:    "LACUNA_STORAGE_CONTAINER_NAME",
	ConnectionString: "LACUNA_STORAGE_CONNECTION_STRING",
}

// Config is the root configuration for the Lacuna service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Logging         LoggingConfig   `toml:"logging"`
	Review          ReviewConfig    `toml:"review"`
	Analysis        AnalysisConfig  `toml:"analysis"`
	Synthesis       SynthesisConfig `toml:"synthesis"`
	Events          EventsConfig    `toml:"events"`
	Content         ContentConfig   `toml:"content"`
	Store           string          `toml:"store"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the LACUNA_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvLacunaEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads .env (if present) into the process environment, then the base
// config (if present), applies any environment overlay, and finalizes all
// values. Variables already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.Store != "" {
		c.Store = overlay.Store
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Logging.Merge(&overlay.Logging)
	c.Review.Merge(&overlay.Review)
	c.Analysis.Merge(&overlay.Analysis)
	c.Synthesis.Merge(&overlay.Synthesis)
	c.Events.Merge(&overlay.Events)
	c.Content.Merge(&overlay.Content)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if c.Store == StorePostgres {
		if c.Database.ApplicationName == "" {
			c.Database.ApplicationName = "lacuna"
		}
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Review.Finalize(); err != nil {
		return fmt.Errorf("review: %w", err)
	}
	if err := c.Analysis.Finalize(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if err := c.Synthesis.Finalize(); err != nil {
		return fmt.Errorf("synthesis: %w", err)
	}
	if err := c.Events.Finalize(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.Content.Finalize(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.Store == "" {
		c.Store = StorePostgres
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvLacunaShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvLacunaVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvLacunaStore); v != "" {
		c.Store = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	if c.Store != StorePostgres && c.Store != StoreMemory {
		return fmt.Errorf("invalid store %q: must be %s or %s", c.Store, StorePostgres, StoreMemory)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvLacunaEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, events) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/lacuna/internal/config"
	"github.com/JaimeStill/lacuna/internal/events"
	"github.com/JaimeStill/lacuna/pkg/database"
	"github.com/JaimeStill/lacuna/pkg/lifecycle"
	"github.com/JaimeStill/lacuna/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil for the memory store. Storage and Stream are nil when not configured.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Bus       *events.Bus
	Stream    *events.StreamPublisher
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(&cfg.Logging)

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Bus:       events.NewBus(),
	}

	if cfg.Store == config.StorePostgres {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	if cfg.Storage.Enabled() {
		store, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = store
	}

	if cfg.Events.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Events.RedisAddr,
			Password: cfg.Events.RedisPassword,
			DB:       cfg.Events.RedisDB,
		})
		infra.Stream = events.NewStreamPublisher(
			client,
			cfg.Events.Stream,
			cfg.Events.MaxLen,
			cfg.Events.TimeoutDuration(),
			logger,
		)
		infra.Bus.Subscribe(infra.Stream.Append)
	}

	return infra, nil
}

// NewLogger builds the service logger from the logging config.
func NewLogger(cfg *config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.JSON() {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	if i.Stream != nil {
		i.Lifecycle.OnStartup(func() {
			if err := i.Stream.Ping(i.Lifecycle.Context()); err != nil {
				i.Logger.Warn("event stream unreachable, events stay in process", "error", err)
			}
		})
		i.Lifecycle.OnShutdown(func() {
			<-i.Lifecycle.Context().Done()
			if err := i.Stream.Close(); err != nil {
				i.Logger.Error("event stream close failed", "error", err)
			}
		})
	}
	return nil
}

// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/lacuna/internal/config"
	"github.com/JaimeStill/lacuna/internal/infrastructure"
	"github.com/JaimeStill/lacuna/pkg/middleware"
	"github.com/JaimeStill/lacuna/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware,
// and registers the report scheduler with the lifecycle coordinator.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	domain.Reports.Start(runtime.Lifecycle)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))
	m.Use(middleware.Recover(runtime.Infrastructure.Logger))

	return m, nil
}

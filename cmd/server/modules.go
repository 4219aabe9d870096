package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/lacuna/internal/api"
	"github.com/JaimeStill/lacuna/internal/config"
	"github.com/JaimeStill/lacuna/internal/infrastructure"
	"github.com/JaimeStill/lacuna/pkg/database"
	"github.com/JaimeStill/lacuna/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		if infra.Database != nil {
			if err := infra.Database.Ping(r.Context()); err != nil {
				infra.Logger.Warn("readiness check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "not ready", "reason": database.ErrNotReady.Error()})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	return router
}

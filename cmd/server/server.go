package main

import (
	"time"

	"github.com/JaimeStill/lacuna/internal/config"
	"github.com/JaimeStill/lacuna/internal/infrastructure"
	"github.com/JaimeStill/lacuna/pkg/formatting"
)

type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"lacuna initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"store", cfg.Store,
		"max_body", formatting.FormatBytes(cfg.API.MaxBodySizeBytes(), 1),
		"synthesis", cfg.Synthesis.Enabled(),
		"events", cfg.Events.Enabled(),
		"content", cfg.Content.Enabled(),
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}

package main

import (
	"net/http"
	"time"

	"github.com/JaimeStill/cadence/internal/config"
	"github.com/JaimeStill/cadence/internal/infrastructure"
)

// Server owns the infrastructure, mounted modules and HTTP listener.
type Server struct {
	infra   *infrastructure.Infrastructure
	handler http.Handler
	http    *httpServer
}

// NewServer wires infrastructure and modules without touching the network.
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
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"corpus_source", cfg.Corpus.Source,
	)

	return &Server{
		infra:   infra,
		handler: router,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start registers infrastructure hooks and begins serving.
func (s *Server) Start() (<-chan error, error) {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return nil, err
	}

	errc := s.http.Start(s.infra.Lifecycle)

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return errc, nil
}

// Shutdown cancels the lifecycle context and waits for shutdown hooks.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}

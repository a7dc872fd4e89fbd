// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/cadence/internal/config"
	"github.com/JaimeStill/cadence/internal/infrastructure"
	"github.com/JaimeStill/cadence/pkg/middleware"
	"github.com/JaimeStill/cadence/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	useMiddleware(m, runtime, &cfg.API.CORS)

	return m, nil
}

// useMiddleware installs the API stack, outermost first. Logger and
// Metrics wrap Recoverer so a recovered panic is logged with its request
// ID and counted as a 500.
func useMiddleware(m *module.Module, runtime *Runtime, cors *middleware.CORSConfig) {
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(runtime.Metrics.Middleware)
	m.Use(middleware.Recoverer(runtime.Logger))
	m.Use(middleware.CORS(cors))
}

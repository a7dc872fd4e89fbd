package main

import (
	"net/http"

	"github.com/JaimeStill/cadence/internal/api"
	"github.com/JaimeStill/cadence/internal/config"
	"github.com/JaimeStill/cadence/internal/infrastructure"
	"github.com/JaimeStill/cadence/pkg/handlers"
	"github.com/JaimeStill/cadence/pkg/module"
)

// Modules holds every prefixed sub-application the server mounts.
type Modules struct {
	API *module.Module
}

// NewModules builds all modules from shared infrastructure.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

// Mount registers each module on the router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, readiness{Status: "ok"})
	}))

	router.HandleNative("GET /readyz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, readiness{Status: "not ready"})
			return
		}

		failures := infra.Lifecycle.Probe(r.Context())
		if len(failures) > 0 {
			checks := make(map[string]string, len(failures))
			for name, err := range failures {
				infra.Logger.Warn("readiness check failed", "check", name, "error", err)
				checks[name] = "unavailable"
			}
			handlers.RespondJSON(w, http.StatusServiceUnavailable, readiness{Status: "degraded", Checks: checks})
			return
		}

		handlers.RespondJSON(w, http.StatusOK, readiness{Status: "ready"})
	}))

	router.HandleNative("GET /metrics", infra.Metrics.Handler())

	return router
}

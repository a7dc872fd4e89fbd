package benchmarks

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/cadence/pkg/handlers"
	"github.com/JaimeStill/cadence/pkg/routes"
)

// maxRequestBytes bounds a benchmark request body.
const maxRequestBytes = 64 << 10

// Handler provides HTTP endpoints for benchmark operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "benchmarks"),
	}
}

// Routes returns the route group for benchmark endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/benchmarks",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Benchmark},
			{Method: "GET", Pattern: "/distribution", Handler: h.Distribution},
		},
	}
}

// Benchmark scores the campaign named in the request body.
func (h *Handler) Benchmark(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[Request](w, r, maxRequestBytes)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Benchmark(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Distribution returns per bucket and topic campaign counts and averages.
func (h *Handler) Distribution(w http.ResponseWriter, r *http.Request) {
	cells, err := h.sys.Distribution(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, cells)
}

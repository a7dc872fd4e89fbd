package campaigns

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/cadence/pkg/handlers"
	"github.com/JaimeStill/cadence/pkg/pagination"
	"github.com/JaimeStill/cadence/pkg/routes"
)

// Handler provides HTTP endpoints for campaign operations.
type Handler struct {
	sys             System
	logger          *slog.Logger
	pagination      pagination.Config
	maxSnapshotSize int64
}

// MaxSearchBytes bounds a search request body.
const MaxSearchBytes = 64 << 10

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination config, and snapshot size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxSnapshotSize int64,
) *Handler {
	return &Handler{
		sys:             sys,
		logger:          logger.With("handler", "campaigns"),
		pagination:      pagination,
		maxSnapshotSize: maxSnapshotSize,
	}
}

// Routes returns the route group definition for campaign endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/campaigns",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "PUT", Pattern: "/snapshot", Handler: h.Import},
		},
	}
}

// List returns a paginated list of campaigns with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single campaign by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching campaigns.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[SearchRequest](w, r, MaxSearchBytes)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Import replaces the corpus snapshot with the JSON array in the request body.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	snapshot, err := handlers.DecodeJSON[[]Campaign](w, r, h.maxSnapshotSize)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrSnapshotTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Import(r.Context(), snapshot)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

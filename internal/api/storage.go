package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/cadence/pkg/handlers"
	"github.com/JaimeStill/cadence/pkg/routes"
	"github.com/JaimeStill/cadence/pkg/storage"
)

type storageHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newStorageHandler(store storage.System, logger *slog.Logger) *storageHandler {
	return &storageHandler{
		store:  store,
		logger: logger.With("handler", "storage"),
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.download},
		},
	}
}

// download streams a stored snapshot blob.
func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	exists, err := h.store.Exists(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	if !exists {
		handlers.RespondError(w, h.logger, http.StatusNotFound, storage.ErrNotFound)
		return
	}

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("snapshot stream interrupted", "key", key, "error", err)
	}
}

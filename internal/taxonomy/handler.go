package taxonomy

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/cadence/pkg/handlers"
	"github.com/JaimeStill/cadence/pkg/routes"
)

// Classify request bounds.
const (
	MaxClassifyNames = 1000
	MaxClassifyBytes = 512 << 10
)

// Handler exposes the classifier over HTTP.
type Handler struct {
	classifier *Classifier
	classified prometheus.Counter
	logger     *slog.Logger
}

// NewHandler creates a Handler for the given classifier.
// classified counts names served by Classify and may be nil.
func NewHandler(c *Classifier, classified prometheus.Counter, logger *slog.Logger) *Handler {
	return &Handler{
		classifier: c,
		classified: classified,
		logger:     logger.With("handler", "taxonomy"),
	}
}

// Routes returns the route group for taxonomy endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/taxonomy",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "/classify", Handler: h.Classify},
		},
	}
}

// List returns the ordered bucket and topic taxonomy.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.classifier.Buckets())
}

// Classify assigns a bucket and topic to each name in a ClassifyCommand body.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[ClassifyCommand](w, r, MaxClassifyBytes)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	if len(cmd.CampaignNames) == 0 {
		handlers.RespondError(w, h.logger, MapHTTPStatus(ErrNoNames), ErrNoNames)
		return
	}
	if len(cmd.CampaignNames) > MaxClassifyNames {
		err := fmt.Errorf("%w: %d exceeds %d", ErrTooManyNames, len(cmd.CampaignNames), MaxClassifyNames)
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if h.classified != nil {
		h.classified.Add(float64(len(cmd.CampaignNames)))
	}

	handlers.RespondJSON(w, http.StatusOK, h.classifier.ClassifyAll(cmd.CampaignNames))
}

package api

import (
	"net/http"

	"github.com/JaimeStill/cadence/internal/taxonomy"
	"github.com/JaimeStill/cadence/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	routes.Register(
		mux,
		taxonomy.NewHandler(
			runtime.Classifier,
			runtime.Metrics.CampaignsClassified,
			runtime.Logger,
		).Routes(),
		domain.Campaigns.Handler().Routes(),
		domain.Benchmarks.Handler().Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	)
}

package api

import (
	"github.com/JaimeStill/cadence/internal/benchmarks"
	"github.com/JaimeStill/cadence/internal/campaigns"
	"github.com/JaimeStill/cadence/internal/config"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Campaigns  campaigns.System
	Benchmarks benchmarks.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	campaignsSystem := campaigns.New(
		cfg.Corpus,
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Cache,
		runtime.Metrics,
		runtime.Logger,
		runtime.Pagination,
	)

	benchmarksSystem := benchmarks.New(
		cfg.Benchmarks,
		campaignsSystem,
		runtime.Classifier,
		runtime.Metrics,
		runtime.Logger,
	)

	return &Domain{
		Campaigns:  campaignsSystem,
		Benchmarks: benchmarksSystem,
	}
}

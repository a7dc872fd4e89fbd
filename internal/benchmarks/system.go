package benchmarks

import "context"

// System defines the public contract for benchmark operations.
type System interface {
	Handler() *Handler

	// Benchmark resolves the requested campaign in the corpus and scores it
	// against its similar campaigns.
	Benchmark(ctx context.Context, req Request) (*Result, error)

	// Distribution aggregates the corpus per bucket and topic.
	Distribution(ctx context.Context) ([]DistributionCell, error)
}

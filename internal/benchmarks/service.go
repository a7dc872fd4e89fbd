package benchmarks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/cadence/internal/campaigns"
	"github.com/JaimeStill/cadence/internal/taxonomy"
	"github.com/JaimeStill/cadence/pkg/metrics"
)

// Corpus supplies the campaigns a benchmark runs against.
type Corpus interface {
	Corpus(ctx context.Context) ([]campaigns.Campaign, error)
}

type service struct {
	corpus  Corpus
	engine  *Engine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a benchmark System reading campaigns from corpus.
func New(
	cfg Config,
	corpus Corpus,
	classifier *taxonomy.Classifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) System {
	return &service{
		corpus:  corpus,
		engine:  NewEngine(classifier, cfg.SimilarLimit),
		metrics: m,
		logger:  logger.With("system", "benchmarks"),
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) Benchmark(ctx context.Context, req Request) (*Result, error) {
	result, err := s.benchmark(ctx, req)
	s.metrics.BenchmarkRuns.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.metrics.SimilarSetSize.Observe(float64(result.SimilarCount))
	s.logger.Debug(
		"benchmark complete",
		"campaign", result.Campaign.Name,
		"bucket", result.Classification.Bucket,
		"similar", result.SimilarCount,
		"overall_score", result.OverallScore,
	)
	return result, nil
}

func (s *service) benchmark(ctx context.Context, req Request) (*Result, error) {
	req.CampaignID = strings.TrimSpace(req.CampaignID)
	if req.CampaignID == "" && req.CampaignName == "" {
		return nil, ErrInvalidRequest
	}
	if _, err := ParseMonth(req.Filters.Month); err != nil {
		return nil, err
	}

	corpus, err := s.corpus.Corpus(ctx)
	if err != nil {
		return nil, err
	}

	selected, ok := find(corpus, req.CampaignID, req.CampaignName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCampaignNotFound, describe(req))
	}

	return s.engine.Run(selected, corpus, req.Filters)
}

func (s *service) Distribution(ctx context.Context) ([]DistributionCell, error) {
	corpus, err := s.corpus.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Distribution(corpus), nil
}

func find(corpus []campaigns.Campaign, id, name string) (campaigns.Campaign, bool) {
	for _, c := range corpus {
		if c.Matches(id, name) {
			return c, true
		}
	}
	return campaigns.Campaign{}, false
}

func describe(req Request) string {
	if req.CampaignID != "" {
		return "campaign_id=" + req.CampaignID
	}
	return fmt.Sprintf("campaign_name=%q", req.CampaignName)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrCampaignNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidMonth):
		return "invalid"
	}
	return "error"
}

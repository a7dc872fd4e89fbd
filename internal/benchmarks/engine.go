package benchmarks

import (
	"cmp"
	"slices"

	"github.com/JaimeStill/cadence/internal/campaigns"
	"github.com/JaimeStill/cadence/internal/taxonomy"
	"github.com/JaimeStill/cadence/pkg/stats"
)

// DefaultSimilarLimit is the number of similar campaigns returned when the
// engine is built with a non-positive limit.
const DefaultSimilarLimit = 20

// Engine runs benchmarks over an in-memory corpus. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	classifier   *taxonomy.Classifier
	similarLimit int
}

// NewEngine creates an Engine that classifies with c and returns at most
// similarLimit similar campaigns per result.
func NewEngine(c *taxonomy.Classifier, similarLimit int) *Engine {
	if similarLimit <= 0 {
		similarLimit = DefaultSimilarLimit
	}
	return &Engine{classifier: c, similarLimit: similarLimit}
}

// Run benchmarks selected against corpus. Corpus entries with the selected
// campaign's name are never compared with it. The only error is an invalid
// month filter.
func (e *Engine) Run(selected campaigns.Campaign, corpus []campaigns.Campaign, filters Filters) (*Result, error) {
	month, err := ParseMonth(filters.Month)
	if err != nil {
		return nil, err
	}

	self := e.classify(selected)
	entries := make([]classified, len(corpus))
	for i, c := range corpus {
		entries[i] = e.classify(c)
	}

	similar := make([]SimilarCampaign, 0)
	for _, c := range entries {
		if c.Name == selected.Name {
			continue
		}

		score := similarity(self.Classification, c.Classification, self.sent, c.sent, filters.FilterByTopic, month)
		if score <= 0 {
			continue
		}

		similar = append(similar, SimilarCampaign{
			CampaignID:      c.ID,
			CampaignName:    c.Name,
			SendDate:        c.SendDate,
			SimilarityScore: score,
			UniqueOpenRate:  c.CoreMetrics.UniqueOpenRate,
			UniqueClickRate: c.CoreMetrics.UniqueClickRate,
			DeliveryRate:    c.CoreMetrics.DeliveryRate,
			Delivered:       c.VolumeMetrics.Delivered,
			OpenRateDelta:   stats.Round(c.CoreMetrics.UniqueOpenRate-selected.CoreMetrics.UniqueOpenRate, 2),
		})
	}

	slices.SortStableFunc(similar, func(a, b SimilarCampaign) int {
		return cmp.Compare(b.SimilarityScore, a.SimilarityScore)
	})

	result := &Result{
		Campaign:         selected,
		Classification:   self.Classification,
		SimilarCampaigns: similar[:min(len(similar), e.similarLimit)],
		SimilarCount:     len(similar),
		Benchmarks:       benchmark(selected, similar),
		SuccessFactors:   successFactors(self, entries),
		Filters:          filters,
	}

	if len(similar) > 0 {
		result.OverallScore = OverallScore(result.Benchmarks)
		result.Grade = Grade(result.OverallScore)
	}

	return result, nil
}

func (e *Engine) classify(c campaigns.Campaign) classified {
	return classified{
		Campaign:       c,
		Classification: e.classifier.Classify(c.Name),
		sent:           monthOf(c.SentAt()),
	}
}

// benchmark computes population percentiles over the similar set and the
// selected campaign's rank within it, per metric. An empty set yields an
// empty map.
func benchmark(selected campaigns.Campaign, similar []SimilarCampaign) map[string]Benchmark {
	out := make(map[string]Benchmark, len(Metrics))
	if len(similar) == 0 {
		return out
	}

	for _, metric := range Metrics {
		values := make([]float64, len(similar))
		for i, s := range similar {
			values[i] = s.value(metric)
		}

		yours := metricValue(selected, metric)
		p := stats.Percentiles(values, 25, 50, 75, 90)

		out[metric] = Benchmark{
			YourValue:      yours,
			P25:            stats.Round(p[0], 2),
			Median:         stats.Round(p[1], 2),
			P75:            stats.Round(p[2], 2),
			P90:            stats.Round(p[3], 2),
			YourPercentile: stats.RankPercentile(values, yours),
		}
	}

	return out
}

func (s SimilarCampaign) value(metric string) float64 {
	switch metric {
	case MetricOpenRate:
		return s.UniqueOpenRate
	case MetricClickRate:
		return s.UniqueClickRate
	case MetricDeliveryRate:
		return s.DeliveryRate
	}
	return 0
}

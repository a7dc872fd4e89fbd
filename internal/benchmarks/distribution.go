package benchmarks

import (
	"cmp"
	"slices"

	"github.com/JaimeStill/cadence/internal/campaigns"
	"github.com/JaimeStill/cadence/internal/taxonomy"
	"github.com/JaimeStill/cadence/pkg/stats"
)

// Distribution classifies the corpus and aggregates it per (bucket, topic).
// Cells are ordered by taxonomy bucket order, then by campaign count
// descending, then by topic name.
func (e *Engine) Distribution(corpus []campaigns.Campaign) []DistributionCell {
	type acc struct {
		opens, clicks []float64
	}

	groups := make(map[taxonomy.Classification]*acc)
	for _, c := range corpus {
		key := e.classifier.Classify(c.Name)
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
		}
		g.opens = append(g.opens, c.CoreMetrics.UniqueOpenRate)
		g.clicks = append(g.clicks, c.CoreMetrics.UniqueClickRate)
	}

	cells := make([]DistributionCell, 0, len(groups))
	for key, g := range groups {
		cells = append(cells, DistributionCell{
			Bucket:       key.Bucket,
			Topic:        key.Topic,
			Campaigns:    len(g.opens),
			AvgOpenRate:  stats.Round(stats.Mean(g.opens), 2),
			AvgClickRate: stats.Round(stats.Mean(g.clicks), 2),
		})
	}

	slices.SortFunc(cells, func(a, b DistributionCell) int {
		return cmp.Or(
			cmp.Compare(e.classifier.BucketOrder(a.Bucket), e.classifier.BucketOrder(b.Bucket)),
			cmp.Compare(a.Bucket, b.Bucket),
			cmp.Compare(b.Campaigns, a.Campaigns),
			cmp.Compare(a.Topic, b.Topic),
		)
	})

	return cells
}

package benchmarks

import (
	"github.com/JaimeStill/cadence/internal/campaigns"
	"github.com/JaimeStill/cadence/internal/taxonomy"
	"github.com/JaimeStill/cadence/pkg/stats"
)

// minMonthSample is the number of bucket campaigns a send month needs before
// it is reported as a success factor.
const minMonthSample = 3

type classified struct {
	campaigns.Campaign
	taxonomy.Classification
	sent sendMonth
}

// successFactors compares open rates for the selected campaign's bucket
// against the corpus, and its topic and send month against the bucket.
// Segments without data are omitted.
func successFactors(selected classified, corpus []classified) []SuccessFactor {
	factors := make([]SuccessFactor, 0, 3)

	var all, bucket, topic, month []float64
	for _, c := range corpus {
		rate := c.CoreMetrics.UniqueOpenRate
		all = append(all, rate)

		if c.Bucket != selected.Bucket {
			continue
		}
		bucket = append(bucket, rate)

		if c.Topic == selected.Topic {
			topic = append(topic, rate)
		}
		if selected.sent.ok && c.sent.ok && c.sent.month == selected.sent.month {
			month = append(month, rate)
		}
	}

	if len(bucket) == 0 {
		return factors
	}

	bucketMean := stats.Mean(bucket)
	factors = append(factors, newFactor("Bucket: "+selected.Bucket, bucket, stats.Mean(all)))

	if selected.Topic != taxonomy.Other && len(topic) > 0 {
		factors = append(factors, newFactor("Topic: "+selected.Topic, topic, bucketMean))
	}

	if len(month) >= minMonthSample {
		factors = append(factors, newFactor("Send month: "+selected.sent.month.String(), month, bucketMean))
	}

	return factors
}

func newFactor(name string, rates []float64, baseline float64) SuccessFactor {
	avg := stats.Mean(rates)
	return SuccessFactor{
		Factor:         name,
		AvgPerformance: stats.Round(avg, 2),
		SampleSize:     len(rates),
		VsOverall:      stats.Round(avg-baseline, 2),
	}
}

// Package benchmarks scores a campaign against the similar campaigns in the
// corpus: similarity filtering, percentile statistics, a letter grade, and
// success factors.
package benchmarks

import (
	"github.com/JaimeStill/cadence/internal/campaigns"
	"github.com/JaimeStill/cadence/internal/taxonomy"
)

// Metric names keyed in Result.Benchmarks.
const (
	MetricOpenRate     = "unique_open_rate"
	MetricClickRate    = "unique_click_rate"
	MetricDeliveryRate = "delivery_rate"
)

// Metrics lists the benchmarked metrics in response order.
var Metrics = []string{MetricOpenRate, MetricClickRate, MetricDeliveryRate}

// Filters narrows the similar set for a benchmark run.
// Month is "all", "", "1".."12", or "Q1".."Q4".
type Filters struct {
	FilterByTopic bool   `json:"filter_by_topic"`
	Month         string `json:"month,omitempty"`
}

// Request identifies the selected campaign by campaign_id or exact name.
type Request struct {
	CampaignID   string  `json:"campaign_id,omitempty"`
	CampaignName string  `json:"campaign_name,omitempty"`
	Filters      Filters `json:"filters"`
}

// SimilarCampaign is a corpus campaign with a positive similarity score.
type SimilarCampaign struct {
	CampaignID      string  `json:"campaign_id,omitempty"`
	CampaignName    string  `json:"campaign_name"`
	SendDate        string  `json:"send_date"`
	SimilarityScore int     `json:"similarity_score"`
	UniqueOpenRate  float64 `json:"unique_open_rate"`
	UniqueClickRate float64 `json:"unique_click_rate"`
	DeliveryRate    float64 `json:"delivery_rate"`
	Delivered       int64   `json:"delivered"`
	OpenRateDelta   float64 `json:"open_rate_delta"`
}

// Benchmark places the selected campaign's value for one metric within the
// distribution of the similar set.
type Benchmark struct {
	YourValue      float64 `json:"your_value"`
	Median         float64 `json:"median"`
	P25            float64 `json:"p25"`
	P75            float64 `json:"p75"`
	P90            float64 `json:"p90"`
	YourPercentile int     `json:"your_percentile"`
}

// SuccessFactor compares the mean open rate of a corpus segment the selected
// campaign belongs to against a broader baseline.
type SuccessFactor struct {
	Factor         string  `json:"factor"`
	AvgPerformance float64 `json:"avg_performance"`
	SampleSize     int     `json:"sample_size"`
	VsOverall      float64 `json:"vs_overall"`
}

// Result is the benchmark response for one campaign.
type Result struct {
	Campaign         campaigns.Campaign      `json:"campaign"`
	Classification   taxonomy.Classification `json:"classification"`
	SimilarCampaigns []SimilarCampaign       `json:"similar_campaigns"`
	SimilarCount     int                     `json:"similar_count"`
	Benchmarks       map[string]Benchmark    `json:"benchmarks"`
	SuccessFactors   []SuccessFactor         `json:"success_factors"`
	Grade            string                  `json:"grade,omitempty"`
	OverallScore     int                     `json:"overall_score"`
	Filters          Filters                 `json:"filters"`
}

// DistributionCell aggregates the corpus campaigns sharing one classification.
type DistributionCell struct {
	Bucket       string  `json:"bucket"`
	Topic        string  `json:"topic"`
	Campaigns    int     `json:"campaigns"`
	AvgOpenRate  float64 `json:"avg_open_rate"`
	AvgClickRate float64 `json:"avg_click_rate"`
}

func metricValue(c campaigns.Campaign, metric string) float64 {
	switch metric {
	case MetricOpenRate:
		return c.CoreMetrics.UniqueOpenRate
	case MetricClickRate:
		return c.CoreMetrics.UniqueClickRate
	case MetricDeliveryRate:
		return c.CoreMetrics.DeliveryRate
	}
	return 0
}

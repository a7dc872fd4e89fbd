package benchmarks

import (
	"math"

	"github.com/JaimeStill/cadence/pkg/stats"
)

var gradeThresholds = []struct {
	min   int
	grade string
}{
	{90, "A+"},
	{85, "A"},
	{80, "A-"},
	{75, "B+"},
	{70, "B"},
	{65, "B-"},
	{60, "C+"},
	{55, "C"},
	{50, "C-"},
}

// Grade maps an overall score to a letter grade. Thresholds are inclusive.
func Grade(score int) string {
	for _, t := range gradeThresholds {
		if score >= t.min {
			return t.grade
		}
	}
	return "D"
}

// OverallScore is the floored mean of the per-metric self percentiles.
func OverallScore(benchmarks map[string]Benchmark) int {
	if len(benchmarks) == 0 {
		return 0
	}

	ranks := make([]float64, 0, len(benchmarks))
	for _, b := range benchmarks {
		ranks = append(ranks, float64(b.YourPercentile))
	}
	return int(math.Floor(stats.Mean(ranks)))
}

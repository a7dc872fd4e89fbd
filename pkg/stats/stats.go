// Package stats provides the small set of descriptive statistics used by
// campaign benchmarking: interpolated percentiles, rank percentiles, and means.
package stats

import (
	"math"
	"slices"
)

// Percentiles computes the p-th percentiles (0-100) of values using linear
// interpolation between closest ranks, over a single sorted copy of values.
// The result is index-aligned with ps; every entry is 0 for an empty slice.
func Percentiles(values []float64, ps ...float64) []float64 {
	out := make([]float64, len(ps))
	if len(values) == 0 {
		return out
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	for i, p := range ps {
		out[i] = percentileSorted(sorted, p)
	}
	return out
}

// RankPercentile returns the share of values strictly less than v, scaled to
// 0-100 and floored. It does not interpolate.
func RankPercentile(values []float64, v float64) int {
	if len(values) == 0 {
		return 0
	}

	below := 0
	for _, x := range values {
		if x < v {
			below++
		}
	}

	return int(math.Floor(float64(below) / float64(len(values)) * 100))
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func percentileSorted(sorted []float64, p float64) float64 {
	p = max(0, min(100, p))

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	if lower == upper {
		return sorted[lower]
	}

	frac := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

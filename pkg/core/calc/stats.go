package calc

import (
	"math"
	"sort"
)

// Mean averages a slice; empty input yields 0.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// MeanDefined averages the non-NaN entries and reports how many entries
// were NaN. Used for IRR aggregation, where undefined runs must not poison
// the mean.
func MeanDefined(values []float64) (mean float64, undefined int) {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			undefined++
			continue
		}
		defined = append(defined, v)
	}
	if len(defined) == 0 {
		return math.NaN(), undefined
	}
	return Mean(defined), undefined
}

// Percentile returns the p-th percentile (p in [0, 1]) by linear
// interpolation between order statistics. NaN entries are excluded; an
// all-NaN or empty input yields NaN.
func Percentile(values []float64, p float64) float64 {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}
	if len(defined) == 0 {
		return math.NaN()
	}
	sort.Float64s(defined)

	if p <= 0 {
		return defined[0]
	}
	if p >= 1 {
		return defined[len(defined)-1]
	}
	pos := p * float64(len(defined)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return defined[lower]
	}
	frac := pos - float64(lower)
	return defined[lower]*(1-frac) + defined[upper]*frac
}

// Sum adds a slice.
func Sum(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s
}

// WeightedDuration computes the payment-weighted average year of a yearly
// stream (years counted from 1). Zero-total streams yield 0.
func WeightedDuration(yearly []float64) float64 {
	total := Sum(yearly)
	if total == 0 {
		return 0
	}
	weighted := 0.0
	for i, v := range yearly {
		weighted += float64(i+1) * v
	}
	return weighted / total
}

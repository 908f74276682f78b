package calc

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	if got := Percentile(values, 0.5); got != 30 {
		t.Errorf("median expected 30, got %f", got)
	}
	if got := Percentile(values, 0); got != 10 {
		t.Errorf("p0 expected 10, got %f", got)
	}
	if got := Percentile(values, 1); got != 50 {
		t.Errorf("p100 expected 50, got %f", got)
	}
	// 10th percentile interpolates between 10 and 20 at 0.4: 14.
	if got := Percentile(values, 0.1); math.Abs(got-14) > 1e-12 {
		t.Errorf("p10 expected 14, got %f", got)
	}
}

func TestPercentileSkipsNaN(t *testing.T) {
	values := []float64{math.NaN(), 1, 3, math.NaN()}
	if got := Percentile(values, 0.5); got != 2 {
		t.Errorf("median of {1,3} expected 2, got %f", got)
	}
	if got := Percentile([]float64{math.NaN()}, 0.5); !math.IsNaN(got) {
		t.Errorf("all-NaN input should yield NaN, got %f", got)
	}
}

func TestMeanDefined(t *testing.T) {
	mean, undefined := MeanDefined([]float64{1, math.NaN(), 3})
	if mean != 2 || undefined != 1 {
		t.Errorf("expected mean 2 with 1 undefined, got %f / %d", mean, undefined)
	}

	mean, undefined = MeanDefined([]float64{math.NaN(), math.NaN()})
	if !math.IsNaN(mean) || undefined != 2 {
		t.Errorf("all-undefined input should yield NaN mean, got %f / %d", mean, undefined)
	}
}

func TestWeightedDuration(t *testing.T) {
	// All payment in year 3.
	if got := WeightedDuration([]float64{0, 0, 100}); got != 3 {
		t.Errorf("expected duration 3, got %f", got)
	}
	// Evenly split across years 1 and 3: duration 2.
	if got := WeightedDuration([]float64{50, 0, 50}); got != 2 {
		t.Errorf("expected duration 2, got %f", got)
	}
	if got := WeightedDuration([]float64{0, 0, 0}); got != 0 {
		t.Errorf("zero stream expected duration 0, got %f", got)
	}
}

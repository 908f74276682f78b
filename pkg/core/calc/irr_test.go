package calc

import (
	"math"
	"testing"
)

func TestNPVZeroRate(t *testing.T) {
	flows := []float64{-100, 30, 30, 30, 30}
	if got := NPV(flows, 0); math.Abs(got-20) > 1e-12 {
		t.Errorf("NPV at 0%% expected 20, got %f", got)
	}
}

func TestIRRSinglePeriod(t *testing.T) {
	// -100 now, +110 in a year: exactly 10%.
	irr := IRR([]float64{-100, 110})
	if math.Abs(irr-0.10) > 1e-5 {
		t.Errorf("expected IRR 0.10, got %f", irr)
	}
}

func TestIRRMultiYear(t *testing.T) {
	// -1000 followed by five years of 300. NPV(0.15238) ~ 0.
	irr := IRR([]float64{-1000, 300, 300, 300, 300, 300})
	if math.Abs(irr-0.15238) > 1e-4 {
		t.Errorf("expected IRR ~0.15238, got %f", irr)
	}
	// Cross-check: NPV at the solved rate is ~zero.
	if npv := NPV([]float64{-1000, 300, 300, 300, 300, 300}, irr); math.Abs(npv) > 1e-3 {
		t.Errorf("NPV at solved IRR should be ~0, got %f", npv)
	}
}

func TestIRRNegativeButDefined(t *testing.T) {
	// Recovers only 80% of the investment: a valid negative rate, not NaN.
	irr := IRR([]float64{-100, 40, 40})
	if math.IsNaN(irr) {
		t.Fatal("expected defined negative IRR, got NaN")
	}
	if irr >= 0 {
		t.Errorf("expected negative IRR, got %f", irr)
	}
}

func TestIRRUndefinedWhenNeverRecovered(t *testing.T) {
	// All-zero inflows: NPV is negative over the whole domain.
	irr := IRR([]float64{-100, 0, 0, 0})
	if !math.IsNaN(irr) {
		t.Errorf("expected NaN for unrecoverable stream, got %f", irr)
	}
}

func TestIRRMonotoneInInvestment(t *testing.T) {
	inflows := []float64{250, 250, 250, 250}
	small := IRR(CashFlows(800, inflows))
	large := IRR(CashFlows(900, inflows))
	if !(large < small) {
		t.Errorf("raising the investment must strictly lower IRR: %f vs %f", large, small)
	}
}

func TestCashFlows(t *testing.T) {
	flows := CashFlows(500, []float64{10, 20})
	want := []float64{-500, 10, 20}
	if len(flows) != len(want) {
		t.Fatalf("length %d, want %d", len(flows), len(want))
	}
	for i := range want {
		if flows[i] != want[i] {
			t.Errorf("flows[%d] = %f, want %f", i, flows[i], want[i])
		}
	}
}

package montecarlo

import (
	"context"
	"math"
	"testing"

	"isa_sim/pkg/core/scenario"
)

func ugandaConfig(t *testing.T, students, sims int, seed int64) Config {
	t.Helper()
	resolved, err := scenario.Resolve(scenario.Input{
		Program:  scenario.ProgramUganda,
		Scenario: scenario.ScenarioBaseline,
	})
	if err != nil {
		t.Fatalf("resolve baseline: %v", err)
	}
	return Config{
		NumStudents:         students,
		NumSims:             sims,
		NumYears:            25,
		Seed:                seed,
		InitialInflation:    0.02,
		InitialUnemployment: 0.05,
		Mix:                 resolved.Mix,
		Terms:               resolved.Terms,
	}
}

func TestRunReproducibleWithSameSeed(t *testing.T) {
	cfg := ugandaConfig(t, 100, 20, 42)

	first, err := NewRunner(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("first batch: %v", err)
	}
	second, err := NewRunner(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}

	if first.AvgTotalPayment != second.AvgTotalPayment {
		t.Errorf("avg payment differs across reruns: %f vs %f",
			first.AvgTotalPayment, second.AvgTotalPayment)
	}
	if first.TotalIRR != second.TotalIRR {
		t.Errorf("total IRR stats differ across reruns: %+v vs %+v",
			first.TotalIRR, second.TotalIRR)
	}

	// Bit-level check on the raw streams of every run.
	for i := range first.Runs {
		a, b := first.Runs[i], second.Runs[i]
		for y := range a.TotalPayments {
			if a.TotalPayments[y] != b.TotalPayments[y] {
				t.Fatalf("run %d year %d payment differs: %v vs %v",
					i, y, a.TotalPayments[y], b.TotalPayments[y])
			}
		}
	}
}

func TestRunDiffersAcrossSeeds(t *testing.T) {
	a, err := NewRunner(ugandaConfig(t, 100, 5, 1)).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRunner(ugandaConfig(t, 100, 5, 2)).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a.AvgTotalPayment == b.AvgTotalPayment {
		t.Error("different seeds produced identical aggregate payments")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(ugandaConfig(t, 50, 10, 7)).Run(ctx)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIRRFallsAsPriceRises(t *testing.T) {
	cheap := ugandaConfig(t, 200, 30, 11)
	dear := ugandaConfig(t, 200, 30, 11)
	dear.Terms.PricePerStudent = cheap.Terms.PricePerStudent * 2

	cheapSum, err := NewRunner(cheap).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	dearSum, err := NewRunner(dear).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// Identical seeds mean identical payment streams, so doubling the
	// upfront price must strictly lower every defined IRR mean.
	if !(dearSum.TotalIRR.Mean < cheapSum.TotalIRR.Mean) {
		t.Errorf("doubling price should lower mean IRR: %f vs %f",
			dearSum.TotalIRR.Mean, cheapSum.TotalIRR.Mean)
	}
}

func TestZeroEmploymentMeansUndefinedIRR(t *testing.T) {
	cfg := ugandaConfig(t, 50, 10, 3)
	for i := range cfg.Mix {
		cfg.Mix[i].Degree.EmploymentFriction = 1.0
		cfg.Mix[i].Degree.LeaveLaborForce = 0
	}

	sum, err := NewRunner(cfg).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if sum.AvgTotalPayment != 0 {
		t.Errorf("forced unemployment should yield zero payments, got %f", sum.AvgTotalPayment)
	}
	if sum.TotalIRR.Undefined != cfg.NumSims {
		t.Errorf("every run should have undefined IRR, got %d of %d",
			sum.TotalIRR.Undefined, cfg.NumSims)
	}
	if !math.IsNaN(sum.TotalIRR.Mean) {
		t.Errorf("all-undefined IRR mean should be NaN, got %f", sum.TotalIRR.Mean)
	}
	if len(sum.Warnings) == 0 {
		t.Error("expected warnings about undefined IRR runs")
	}
}

func TestSummaryShapes(t *testing.T) {
	cfg := ugandaConfig(t, 100, 10, 42)
	sum, err := NewRunner(cfg).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(sum.PaymentsByYear) != cfg.NumYears {
		t.Errorf("payments series length %d, want %d", len(sum.PaymentsByYear), cfg.NumYears)
	}
	if len(sum.Runs) != cfg.NumSims {
		t.Errorf("kept %d runs, want %d", len(sum.Runs), cfg.NumSims)
	}
	if sum.TotalInvestment != float64(cfg.NumStudents)*cfg.Terms.PricePerStudent {
		t.Errorf("investment %f, want students*price", sum.TotalInvestment)
	}

	// Realized degree shares should roughly track the baseline mix.
	shareSum := 0.0
	for _, share := range sum.DegreeShares {
		shareSum += share
	}
	if math.Abs(shareSum-1) > 1e-9 {
		t.Errorf("degree shares should sum to 1, got %f", shareSum)
	}
	if sum.EmploymentRate < 0 || sum.EmploymentRate > 1 {
		t.Errorf("employment rate out of range: %f", sum.EmploymentRate)
	}
	if sum.RepaymentRate > sum.EverEmployedRate+1e-9 {
		t.Errorf("repayment rate %f cannot exceed ever-employed rate %f",
			sum.RepaymentRate, sum.EverEmployedRate)
	}
}

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isa_sim/pkg/core/scenario"
)

func int64p(v int64) *int64       { return &v }
func float64p(v float64) *float64 { return &v }

func TestRunBaseline(t *testing.T) {
	res, err := Run(context.Background(), Config{
		Program:     scenario.ProgramUganda,
		Scenario:    scenario.ScenarioBaseline,
		NumStudents: 100,
		NumSims:     50,
		Seed:        int64p(42),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, scenario.ProgramUganda, res.Program)
	assert.Equal(t, int64(42), res.Seed)
	assert.Equal(t, 100, res.Summary.NumStudents)
	assert.Len(t, res.Summary.PaymentsByYear, DefaultNumYears)
	assert.Greater(t, res.Summary.AvgTotalPayment, 0.0)
}

func TestRunRerunWithSameSeedMatches(t *testing.T) {
	cfg := Config{
		Program:     "University", // alias for the Uganda program
		Scenario:    scenario.ScenarioBaseline,
		NumStudents: 50,
		NumSims:     10,
		Seed:        int64p(7),
	}
	a, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Summary.AvgTotalPayment, b.Summary.AvgTotalPayment)
	assert.Equal(t, a.Summary.TotalIRR, b.Summary.TotalIRR)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRunRejectsOutOfRangeSizes(t *testing.T) {
	cases := []Config{
		{Program: scenario.ProgramUganda, Scenario: scenario.ScenarioBaseline, NumStudents: 0, NumSims: 10},
		{Program: scenario.ProgramUganda, Scenario: scenario.ScenarioBaseline, NumStudents: 1001, NumSims: 10},
		{Program: scenario.ProgramUganda, Scenario: scenario.ScenarioBaseline, NumStudents: 10, NumSims: 0},
		{Program: scenario.ProgramUganda, Scenario: scenario.ScenarioBaseline, NumStudents: 10, NumSims: 10, NumYears: 500},
	}
	for _, cfg := range cases {
		_, err := Run(context.Background(), cfg)
		var cfgErr *scenario.ConfigError
		assert.ErrorAs(t, err, &cfgErr, "config %+v should fail validation", cfg)
	}
}

func TestRunRejectsUnknownProgramBeforeSimulating(t *testing.T) {
	_, err := Run(context.Background(), Config{
		Program:     "Atlantis",
		Scenario:    scenario.ScenarioBaseline,
		NumStudents: 10,
		NumSims:     2,
	})
	var cfgErr *scenario.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRunCustomScenario(t *testing.T) {
	res, err := Run(context.Background(), Config{
		Program:  scenario.ProgramKenya,
		Scenario: scenario.ScenarioCustom,
		CustomMix: map[string]float64{
			scenario.TrackNURSE: 70,
			scenario.TrackVOC:   30,
		},
		NumStudents: 50,
		NumSims:     5,
		Seed:        int64p(9),
	})
	require.NoError(t, err)

	for name := range res.Summary.DegreeShares {
		assert.Contains(t, []string{scenario.TrackNURSE, scenario.TrackVOC}, name)
	}
}

func TestRunTermOverridesReachTheContract(t *testing.T) {
	base := Config{
		Program:     scenario.ProgramUganda,
		Scenario:    scenario.ScenarioBaseline,
		NumStudents: 100,
		NumSims:     10,
		Seed:        int64p(21),
	}
	doubled := base
	doubled.PricePerStudent = 58000

	a, err := Run(context.Background(), base)
	require.NoError(t, err)
	b, err := Run(context.Background(), doubled)
	require.NoError(t, err)

	assert.Equal(t, 2*a.Summary.TotalInvestment, b.Summary.TotalInvestment)
	assert.Less(t, b.Summary.TotalIRR.Mean, a.Summary.TotalIRR.Mean)
}

func TestRunFlatFeeStructure(t *testing.T) {
	res, err := Run(context.Background(), Config{
		Program:           scenario.ProgramRwanda,
		Scenario:          scenario.ScenarioBaseline,
		NumStudents:       100,
		NumSims:           10,
		Seed:              int64p(5),
		FeeStructure:      "flat",
		PerformanceFeePct: float64p(0),
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Summary.AvgProviderPayment, 0.0)
}

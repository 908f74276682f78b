// Package econ models the shared macroeconomic state of a cohort run.
// One Environment is created per cohort simulation, advanced once per
// simulated year, and discarded when the run ends.
package econ

import (
	"math"
	"math/rand"
)

// Clamp bounds for the yearly random walk. Out-of-range draws are clamped,
// not rejected, so a run can never wander into an implausible macro state.
const (
	MinInflation    = -0.02
	MaxInflation    = 0.15
	MinUnemployment = 0.0
	MaxUnemployment = 1.0
)

// Environment carries the economic variables shared by every student in a
// cohort for a given year. The ISA threshold and cap ride inflation, so both
// the indexed values and the cumulative deflator live here.
type Environment struct {
	YearCount        int
	InflationRate    float64
	UnemploymentRate float64
	ISAThreshold     float64
	ISACap           float64
	Deflator         float64
	Horizon          int

	stableInflation    float64
	stableUnemployment float64
}

// NewEnvironment sets up year-one conditions. Deflator starts at 1, so the
// first simulated year is expressed in program-start dollars.
func NewEnvironment(inflation, unemployment, isaThreshold, isaCap float64, horizon int) *Environment {
	return &Environment{
		YearCount:          1,
		InflationRate:      inflation,
		UnemploymentRate:   unemployment,
		ISAThreshold:       isaThreshold,
		ISACap:             isaCap,
		Deflator:           1.0,
		Horizon:            horizon,
		stableInflation:    inflation,
		stableUnemployment: unemployment,
	}
}

// Advance draws next year's inflation and unemployment as mean-reverting
// walks around the initial (stable) levels, clamps them, and compounds the
// deflator and the indexed ISA threshold/cap. Returns the updated snapshot.
func (e *Environment) Advance(rng *rand.Rand) *Environment {
	e.YearCount++

	inflation := e.stableInflation*0.45 + e.InflationRate*0.5 + rng.NormFloat64()*0.01
	e.InflationRate = clamp(inflation, MinInflation, MaxInflation)

	unemployment := e.stableUnemployment*0.33 + e.UnemploymentRate*0.25 + math.Exp(rng.NormFloat64())/100.0
	e.UnemploymentRate = clamp(unemployment, MinUnemployment, MaxUnemployment)

	growth := 1 + e.InflationRate
	e.ISACap *= growth
	e.ISAThreshold *= growth
	e.Deflator *= growth

	return e
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package calc provides the numerical routines behind the simulation
// statistics: NPV, IRR root-finding, percentiles, and payment duration.
package calc

import "math"

// IRR solver bounds and convergence controls. The rate domain is wide
// enough for any plausible ISA outcome; cash flows that never recover the
// investment produce no sign change and an undefined result.
const (
	IRRLowerBound = -0.99
	IRRUpperBound = 10.0
	IRRTolerance  = 1e-7
	IRRMaxIter    = 200
)

// NPV discounts a cash-flow vector at the given rate. flows[0] is the
// year-zero flow (typically the negative investment), flows[i] arrives at
// the end of year i.
func NPV(flows []float64, rate float64) float64 {
	npv := 0.0
	discount := 1.0
	for _, f := range flows {
		npv += f / discount
		discount *= 1 + rate
	}
	return npv
}

// IRR solves for the rate making NPV zero by bisection over the bounded
// rate domain. Returns NaN when no sign change exists in the domain (the
// stream never pays back) or when the iteration cap is reached without
// convergence; callers must treat NaN as "undefined", distinct from a
// valid negative IRR.
func IRR(flows []float64) float64 {
	lo, hi := IRRLowerBound, IRRUpperBound
	fLo := NPV(flows, lo)
	fHi := NPV(flows, hi)

	if fLo == 0 {
		return lo
	}
	if fHi == 0 {
		return hi
	}
	if fLo*fHi > 0 {
		return math.NaN()
	}

	for i := 0; i < IRRMaxIter; i++ {
		mid := (lo + hi) / 2
		fMid := NPV(flows, mid)
		if math.Abs(fMid) < IRRTolerance || (hi-lo)/2 < IRRTolerance {
			return mid
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}
	return math.NaN()
}

// CashFlows assembles an IRR input: one outflow at year zero followed by
// the yearly inflows.
func CashFlows(investment float64, yearlyInflows []float64) []float64 {
	flows := make([]float64, 0, len(yearlyInflows)+1)
	flows = append(flows, -investment)
	flows = append(flows, yearlyInflows...)
	return flows
}

package sim

import (
	"math"
	"math/rand"

	"isa_sim/pkg/core/degree"
	"isa_sim/pkg/core/econ"
)

// capTolerance absorbs float accumulation noise in the invariant checks.
const capTolerance = 1e-6

// CohortResult holds the per-year aggregate payment streams of one cohort
// run plus the final per-student ledgers. Nominal and real values are
// recorded together by a single code path, so downstream IRR can be
// computed on either basis without re-deriving one from the other.
type CohortResult struct {
	Students []*StudentLedger

	TotalPayments     []float64
	TotalRealPayments []float64

	ProviderPayments     []float64
	ProviderRealPayments []float64

	InvestorPayments     []float64
	InvestorRealPayments []float64

	ActiveStudents []int
}

// Cohort runs one full multi-year simulation for a student population
// under one shared economic trajectory and one contract configuration.
type Cohort struct {
	students []*StudentLedger
	terms    Terms
	env      *econ.Environment
	rng      *rand.Rand
	numYears int
}

// NewCohort wires students, contract terms, and the run's environment and
// random stream together. Terms are assumed validated by the caller.
func NewCohort(students []*StudentLedger, terms Terms, env *econ.Environment, rng *rand.Rand) *Cohort {
	return &Cohort{
		students: students,
		terms:    terms,
		env:      env,
		rng:      rng,
		numYears: env.Horizon,
	}
}

// Run advances the cohort year by year. The environment is advanced once
// per year, shared by every student. Returns an InvariantError if the
// payment logic ever lands in a state it should have made impossible.
func (c *Cohort) Run() (*CohortResult, error) {
	res := &CohortResult{
		Students:             c.students,
		TotalPayments:        make([]float64, c.numYears),
		TotalRealPayments:    make([]float64, c.numYears),
		ProviderPayments:     make([]float64, c.numYears),
		ProviderRealPayments: make([]float64, c.numYears),
		InvestorPayments:     make([]float64, c.numYears),
		InvestorRealPayments: make([]float64, c.numYears),
		ActiveStudents:       make([]int, c.numYears),
	}

	for year := 0; year < c.numYears; year++ {
		for _, s := range c.students {
			if err := c.processStudentYear(s, year, res); err != nil {
				return nil, err
			}
			if s.Active() {
				res.ActiveStudents[year]++
			}
		}

		if c.terms.FeeStructure == FeeFlat {
			c.collectFlatFees(year, res)
		}

		res.InvestorPayments[year] = res.TotalPayments[year] - res.ProviderPayments[year]
		res.InvestorRealPayments[year] = res.TotalRealPayments[year] - res.ProviderRealPayments[year]

		c.env.Advance(c.rng)
	}

	return res, nil
}

// processStudentYear applies the per-year lifecycle for one student:
// graduation, labor-force exit, employment draw, earnings, payment, caps,
// and the performance-fee split.
func (c *Cohort) processStudentYear(s *StudentLedger, year int, res *CohortResult) error {
	if s.LeftLaborForce || year < s.StartYear {
		return nil
	}

	// 1. Graduation event: draw return-home status and the lifetime
	// earnings power once. No-advancement students get the informal
	// home-market draw from year one and never count as graduated.
	if year == s.StartYear {
		if s.Degree.Class != degree.ClassNone {
			s.Graduated = true
		}
		s.ReturnedHome = c.rng.Float64() < s.Degree.HomeProb
		if s.ReturnedHome {
			s.EarningsPower = math.Max(0, degree.HomeMeanEarnings+c.rng.NormFloat64()*degree.HomeStdDev)
		} else {
			s.EarningsPower = math.Max(0, s.Degree.MeanEarnings+c.rng.NormFloat64()*s.Degree.StdDev)
		}
	}

	// 2. Permanent labor-force exit fires before the employment draw; the
	// accumulated history is retained.
	if c.rng.Float64() < s.Degree.LeaveLaborForce {
		s.LeftLaborForce = true
		s.feeStopped = true
		return nil
	}

	// 3. Employment: shared unemployment plus per-degree friction.
	effectiveUnemployment := math.Min(1, math.Max(0, c.env.UnemploymentRate+s.Degree.EmploymentFriction))
	employed := c.rng.Float64() < 1-effectiveUnemployment
	s.Employed[year] = employed

	if !employed {
		// Skills decay while out of work.
		s.Experience = max(0, s.Experience-3)
		// Under the flat fee structure a graduate's unemployed year ends
		// the provider's annual fee for good.
		if c.terms.FeeStructure == FeeFlat && s.Graduated {
			s.feeStopped = true
		}
		return nil
	}

	// 4. Earnings: base power compounded by experience, inflated by the
	// cumulative deflator. Real earnings deflate the same figure back.
	nominal := s.EarningsPower * c.env.Deflator * math.Pow(1+s.Degree.ExperienceGrowth, float64(s.Experience))
	s.Experience++
	s.Earnings[year] = nominal
	s.RealEarnings[year] = nominal / c.env.Deflator

	// 5. ISA owed on income above the indexed threshold.
	if s.HitPaymentCap || s.HitYearsCap {
		return nil
	}
	excess := nominal - c.env.ISAThreshold
	if excess <= 0 {
		return nil
	}
	if s.PaymentYears >= c.terms.LimitYears {
		s.HitYearsCap = true
		s.feeStopped = true
		return nil
	}
	owed := c.terms.ISAPercentage * excess

	// 6. Payment cap: truncate so cumulative nominal payments land exactly
	// on the prevailing indexed cap.
	if s.CumPayment+owed >= c.env.ISACap {
		owed = c.env.ISACap - s.CumPayment
		s.HitPaymentCap = true
		s.CapAmount = c.env.ISACap
		s.feeStopped = true
	}

	s.Payments[year] = owed
	s.RealPayments[year] = owed / c.env.Deflator
	s.CumPayment += owed
	s.CumRealPayment += owed / c.env.Deflator
	s.PaymentYears++

	res.TotalPayments[year] += owed
	res.TotalRealPayments[year] += owed / c.env.Deflator

	// 7. Performance-fee split happens per payment; the flat structure is
	// settled per student-year after the loop.
	if c.terms.FeeStructure == FeePerformance {
		fee := owed * c.terms.PerformanceFeePct
		res.ProviderPayments[year] += fee
		res.ProviderRealPayments[year] += fee / c.env.Deflator
	}

	return c.checkInvariants(s)
}

// collectFlatFees settles the provider's annual take under FeeFlat: 1% of
// the inflation-adjusted investment per student who graduated, is employed
// this year, and has not capped out or stopped.
func (c *Cohort) collectFlatFees(year int, res *CohortResult) {
	for _, s := range c.students {
		if !s.Graduated || s.feeStopped || !s.Employed[year] {
			continue
		}
		fee := c.terms.PricePerStudent * FlatFeeRate * c.env.Deflator
		res.ProviderPayments[year] += fee
		res.ProviderRealPayments[year] += fee / c.env.Deflator
	}
}

func (c *Cohort) checkInvariants(s *StudentLedger) error {
	if s.CumPayment < -capTolerance {
		return invariantf("student %s: cumulative payment %.6f is negative", s.Degree.Name, s.CumPayment)
	}
	if s.CumPayment > c.env.ISACap+capTolerance {
		return invariantf("student %s: cumulative payment %.2f exceeds cap %.2f despite truncation",
			s.Degree.Name, s.CumPayment, c.env.ISACap)
	}
	return nil
}

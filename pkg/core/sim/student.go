// Package sim runs one cohort of ISA-funded students through a multi-year
// simulation under a shared economic trajectory, applying the contract's
// payment, cap, and fee-split rules.
package sim

import (
	"math/rand"

	"isa_sim/pkg/core/degree"
)

// CapBucket classifies how a student's contract ended at the horizon.
// Exactly one bucket applies per student.
type CapBucket int

const (
	CapNone CapBucket = iota
	CapPayment
	CapYears
)

// StudentLedger is one student's mutable simulation state: degree
// assignment, graduation timing, and the full per-year earnings and
// payment history. It is populated incrementally as years advance and
// read-only once the run completes.
type StudentLedger struct {
	Degree    degree.Degree
	Delay     int // extra years beyond nominal completion
	StartYear int // first year with earnings potential

	Graduated      bool
	ReturnedHome   bool
	LeftLaborForce bool
	HitPaymentCap  bool
	HitYearsCap    bool

	// feeStopped marks that the provider no longer collects the flat
	// annual fee for this student (capped out, or unemployed after
	// graduating).
	feeStopped bool

	EarningsPower float64
	Experience    int
	PaymentYears  int

	Employed     []bool
	Earnings     []float64 // nominal
	RealEarnings []float64
	Payments     []float64 // nominal
	RealPayments []float64

	CumPayment     float64 // nominal
	CumRealPayment float64
	CapAmount      float64 // indexed cap prevailing when the payment cap was hit
}

// NewStudentLedger assigns a degree and draws the graduation delay. With
// delay modeling disabled every track completes on its nominal schedule.
// No-advancement students have earnings potential from year one.
func NewStudentLedger(d degree.Degree, numYears int, delayEnabled bool, rng *rand.Rand) *StudentLedger {
	delay := 0
	if delayEnabled {
		delay = d.DrawDelay(rng)
	}
	start := d.YearsToComplete + delay
	if d.Class == degree.ClassNone {
		start = 0
	}
	return &StudentLedger{
		Degree:       d,
		Delay:        delay,
		StartYear:    start,
		Employed:     make([]bool, numYears),
		Earnings:     make([]float64, numYears),
		RealEarnings: make([]float64, numYears),
		Payments:     make([]float64, numYears),
		RealPayments: make([]float64, numYears),
	}
}

// Bucket reports which cap (if any) ended the student's payments. A
// student is in CapNone only when the horizon ended with neither cap
// triggered.
func (s *StudentLedger) Bucket() CapBucket {
	switch {
	case s.HitPaymentCap:
		return CapPayment
	case s.HitYearsCap:
		return CapYears
	default:
		return CapNone
	}
}

// EverEmployed reports whether the student recorded any employed year.
func (s *StudentLedger) EverEmployed() bool {
	for _, e := range s.Employed {
		if e {
			return true
		}
	}
	return false
}

// MadePayment reports whether any ISA payment was collected.
func (s *StudentLedger) MadePayment() bool {
	return s.CumPayment > 0
}

// Active reports whether the student can still owe payments.
func (s *StudentLedger) Active() bool {
	return !s.LeftLaborForce && !s.HitPaymentCap && !s.HitYearsCap
}

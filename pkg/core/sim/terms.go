package sim

import "fmt"

// FeeStructure names the method used to split collected payments between
// the investor and the service provider. Programs have used both variants,
// so the choice is an explicit configuration field.
type FeeStructure string

const (
	// FeePerformance keeps PerformanceFeePct of every collected payment.
	FeePerformance FeeStructure = "performance"
	// FeeFlat collects 1% of the inflation-adjusted price per student each
	// year a funded student is graduated, employed, and not capped out.
	FeeFlat FeeStructure = "flat"
)

// FlatFeeRate is the annual provider take under FeeFlat, as a fraction of
// the inflation-adjusted investment per student.
const FlatFeeRate = 0.01

// Terms holds one ISA contract configuration, shared read-only by every
// student in a cohort.
type Terms struct {
	ISAPercentage     float64      `json:"isa_percentage"`
	ISAThreshold      float64      `json:"isa_threshold"`
	ISACap            float64      `json:"isa_cap"`
	LimitYears        int          `json:"limit_years"`
	PricePerStudent   float64      `json:"price_per_student"`
	PerformanceFeePct float64      `json:"performance_fee_pct"`
	FeeStructure      FeeStructure `json:"fee_structure"`
}

// Validate fails fast on contradictory contract terms, before any random
// draw occurs.
func (t Terms) Validate() error {
	if t.ISAPercentage <= 0 || t.ISAPercentage >= 1 {
		return fmt.Errorf("isa percentage %.4f must be in (0, 1)", t.ISAPercentage)
	}
	if t.ISAThreshold <= 0 {
		return fmt.Errorf("isa threshold %.2f must be positive", t.ISAThreshold)
	}
	if t.ISACap <= 0 {
		return fmt.Errorf("isa cap %.2f must be positive", t.ISACap)
	}
	if t.ISAThreshold > t.ISACap {
		return fmt.Errorf("isa threshold %.2f exceeds cap %.2f", t.ISAThreshold, t.ISACap)
	}
	if t.LimitYears <= 0 {
		return fmt.Errorf("payment-years limit %d must be positive", t.LimitYears)
	}
	if t.PricePerStudent <= 0 {
		return fmt.Errorf("price per student %.2f must be positive", t.PricePerStudent)
	}
	if t.PerformanceFeePct < 0 || t.PerformanceFeePct >= 1 {
		return fmt.Errorf("performance fee %.4f must be in [0, 1)", t.PerformanceFeePct)
	}
	switch t.FeeStructure {
	case FeePerformance, FeeFlat:
	default:
		return fmt.Errorf("unknown fee structure %q", t.FeeStructure)
	}
	return nil
}

package montecarlo

import (
	"encoding/json"
	"fmt"
	"math"

	"isa_sim/pkg/core/calc"
	"isa_sim/pkg/core/sim"
)

// IRRStats summarizes one IRR basis across all runs. Undefined counts runs
// whose stream never recovered the investment; those runs are excluded
// from the mean and percentiles rather than folded in as losses.
type IRRStats struct {
	Mean      float64 `json:"mean"`
	P10       float64 `json:"p10"`
	P50       float64 `json:"p50"`
	P90       float64 `json:"p90"`
	Undefined int     `json:"undefined_runs"`
}

// irrStatsJSON is the wire form of IRRStats: undefined rates travel as
// null, since encoding/json refuses NaN.
type irrStatsJSON struct {
	Mean      *float64 `json:"mean"`
	P10       *float64 `json:"p10"`
	P50       *float64 `json:"p50"`
	P90       *float64 `json:"p90"`
	Undefined int      `json:"undefined_runs"`
}

func (s IRRStats) MarshalJSON() ([]byte, error) {
	nullable := func(v float64) *float64 {
		if math.IsNaN(v) {
			return nil
		}
		return &v
	}
	return json.Marshal(irrStatsJSON{
		Mean:      nullable(s.Mean),
		P10:       nullable(s.P10),
		P50:       nullable(s.P50),
		P90:       nullable(s.P90),
		Undefined: s.Undefined,
	})
}

func (s *IRRStats) UnmarshalJSON(data []byte) error {
	var wire irrStatsJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	restore := func(v *float64) float64 {
		if v == nil {
			return math.NaN()
		}
		return *v
	}
	s.Mean = restore(wire.Mean)
	s.P10 = restore(wire.P10)
	s.P50 = restore(wire.P50)
	s.P90 = restore(wire.P90)
	s.Undefined = wire.Undefined
	return nil
}

// CapStats breaks the student population down by how their contracts
// ended, with the mean real repayment per bucket. Counts and repayments
// are averaged across runs.
type CapStats struct {
	PaymentCapShare float64 `json:"payment_cap_share"`
	YearsCapShare   float64 `json:"years_cap_share"`
	UncappedShare   float64 `json:"uncapped_share"`

	PaymentCapAvgRepayment float64 `json:"payment_cap_avg_repayment"`
	YearsCapAvgRepayment   float64 `json:"years_cap_avg_repayment"`
	UncappedAvgRepayment   float64 `json:"uncapped_avg_repayment"`
}

// Summary is the aggregated outcome of a Monte Carlo batch. Per-year
// series are means across runs; IRR statistics are computed over the
// per-run IRRs, never over pooled cash flows.
type Summary struct {
	NumStudents int `json:"num_students"`
	NumSims     int `json:"num_sims"`
	NumYears    int `json:"num_years"`

	TotalInvestment float64 `json:"total_investment"`

	TotalIRR        IRRStats `json:"total_irr"`
	TotalRealIRR    IRRStats `json:"total_real_irr"`
	InvestorIRR     IRRStats `json:"investor_irr"`
	InvestorRealIRR IRRStats `json:"investor_real_irr"`

	AvgTotalPayment    float64 `json:"avg_total_payment"`
	AvgRealPayment     float64 `json:"avg_real_payment"`
	AvgProviderPayment float64 `json:"avg_provider_payment"`
	AvgInvestorPayment float64 `json:"avg_investor_payment"`
	AvgDuration        float64 `json:"avg_duration_years"`

	EmploymentRate   float64 `json:"employment_rate"`
	EverEmployedRate float64 `json:"ever_employed_rate"`
	RepaymentRate    float64 `json:"repayment_rate"`
	GraduationRate   float64 `json:"graduation_rate"`

	Caps CapStats `json:"caps"`

	PaymentsByYear         []float64 `json:"payments_by_year"`
	RealPaymentsByYear     []float64 `json:"real_payments_by_year"`
	InvestorPaymentsByYear []float64 `json:"investor_payments_by_year"`
	ProviderPaymentsByYear []float64 `json:"provider_payments_by_year"`
	ActiveStudentsByYear   []float64 `json:"active_students_by_year"`

	DegreeShares map[string]float64 `json:"degree_shares"` // realized, not configured

	Warnings []string `json:"warnings,omitempty"`

	// Runs keeps the raw per-run results for callers that need ledger-level
	// detail (reports, drill-down endpoints). Omitted from JSON.
	Runs []*sim.CohortResult `json:"-"`
}

// aggregator accumulates per-run observations as the batch executes.
type aggregator struct {
	cfg        Config
	investment float64

	irrTotal        []float64
	irrTotalReal    []float64
	irrInvestor     []float64
	irrInvestorReal []float64

	totalPayment    []float64
	realPayment     []float64
	providerPayment []float64
	investorPayment []float64
	duration        []float64

	employment   []float64
	everEmployed []float64
	repayment    []float64
	graduation   []float64

	capCounts     [3]float64 // summed student counts by bucket
	capRepayments [3]float64 // summed real repayments by bucket

	paymentsByYear         []float64
	realPaymentsByYear     []float64
	investorPaymentsByYear []float64
	providerPaymentsByYear []float64
	activeByYear           []float64

	degreeCounts map[string]float64

	runs []*sim.CohortResult
}

func newAggregator(cfg Config) *aggregator {
	return &aggregator{
		cfg:                    cfg,
		investment:             float64(cfg.NumStudents) * cfg.Terms.PricePerStudent,
		paymentsByYear:         make([]float64, cfg.NumYears),
		realPaymentsByYear:     make([]float64, cfg.NumYears),
		investorPaymentsByYear: make([]float64, cfg.NumYears),
		providerPaymentsByYear: make([]float64, cfg.NumYears),
		activeByYear:           make([]float64, cfg.NumYears),
		degreeCounts:           make(map[string]float64),
		runs:                   make([]*sim.CohortResult, 0, cfg.NumSims),
	}
}

func (a *aggregator) addRun(res *sim.CohortResult) {
	a.runs = append(a.runs, res)

	a.irrTotal = append(a.irrTotal, calc.IRR(calc.CashFlows(a.investment, res.TotalPayments)))
	a.irrTotalReal = append(a.irrTotalReal, calc.IRR(calc.CashFlows(a.investment, res.TotalRealPayments)))
	a.irrInvestor = append(a.irrInvestor, calc.IRR(calc.CashFlows(a.investment, res.InvestorPayments)))
	a.irrInvestorReal = append(a.irrInvestorReal, calc.IRR(calc.CashFlows(a.investment, res.InvestorRealPayments)))

	a.totalPayment = append(a.totalPayment, calc.Sum(res.TotalPayments))
	a.realPayment = append(a.realPayment, calc.Sum(res.TotalRealPayments))
	a.providerPayment = append(a.providerPayment, calc.Sum(res.ProviderPayments))
	a.investorPayment = append(a.investorPayment, calc.Sum(res.InvestorPayments))
	a.duration = append(a.duration, calc.WeightedDuration(res.TotalPayments))

	for y := 0; y < a.cfg.NumYears; y++ {
		a.paymentsByYear[y] += res.TotalPayments[y]
		a.realPaymentsByYear[y] += res.TotalRealPayments[y]
		a.investorPaymentsByYear[y] += res.InvestorPayments[y]
		a.providerPaymentsByYear[y] += res.ProviderPayments[y]
		a.activeByYear[y] += float64(res.ActiveStudents[y])
	}

	a.addPopulationStats(res)
}

// addPopulationStats derives the run's student-level rates. The employment
// rate counts employed student-years against years of earnings potential;
// the other rates are per-student shares.
func (a *aggregator) addPopulationStats(res *sim.CohortResult) {
	var employedYears, eligibleYears float64
	var everEmployed, madePayment, graduated float64

	for _, s := range res.Students {
		for y := s.StartYear; y < len(s.Employed); y++ {
			eligibleYears++
			if s.Employed[y] {
				employedYears++
			}
		}
		if s.EverEmployed() {
			everEmployed++
		}
		if s.MadePayment() {
			madePayment++
		}
		if s.Graduated {
			graduated++
		}

		b := s.Bucket()
		a.capCounts[b]++
		a.capRepayments[b] += s.CumRealPayment

		a.degreeCounts[s.Degree.Name]++
	}

	n := float64(len(res.Students))
	if eligibleYears > 0 {
		a.employment = append(a.employment, employedYears/eligibleYears)
	} else {
		a.employment = append(a.employment, 0)
	}
	a.everEmployed = append(a.everEmployed, everEmployed/n)
	a.repayment = append(a.repayment, madePayment/n)
	a.graduation = append(a.graduation, graduated/n)
}

func (a *aggregator) summarize() *Summary {
	s := &Summary{
		NumStudents:     a.cfg.NumStudents,
		NumSims:         a.cfg.NumSims,
		NumYears:        a.cfg.NumYears,
		TotalInvestment: a.investment,

		TotalIRR:        irrStats(a.irrTotal),
		TotalRealIRR:    irrStats(a.irrTotalReal),
		InvestorIRR:     irrStats(a.irrInvestor),
		InvestorRealIRR: irrStats(a.irrInvestorReal),

		AvgTotalPayment:    calc.Mean(a.totalPayment),
		AvgRealPayment:     calc.Mean(a.realPayment),
		AvgProviderPayment: calc.Mean(a.providerPayment),
		AvgInvestorPayment: calc.Mean(a.investorPayment),
		AvgDuration:        calc.Mean(a.duration),

		EmploymentRate:   calc.Mean(a.employment),
		EverEmployedRate: calc.Mean(a.everEmployed),
		RepaymentRate:    calc.Mean(a.repayment),
		GraduationRate:   calc.Mean(a.graduation),

		Caps: a.capStats(),

		PaymentsByYear:         meanSeries(a.paymentsByYear, a.cfg.NumSims),
		RealPaymentsByYear:     meanSeries(a.realPaymentsByYear, a.cfg.NumSims),
		InvestorPaymentsByYear: meanSeries(a.investorPaymentsByYear, a.cfg.NumSims),
		ProviderPaymentsByYear: meanSeries(a.providerPaymentsByYear, a.cfg.NumSims),
		ActiveStudentsByYear:   meanSeries(a.activeByYear, a.cfg.NumSims),

		DegreeShares: a.degreeShares(),

		Runs: a.runs,
	}

	s.Warnings = append(s.Warnings, undefinedWarnings(map[string]IRRStats{
		"total nominal":    s.TotalIRR,
		"total real":       s.TotalRealIRR,
		"investor nominal": s.InvestorIRR,
		"investor real":    s.InvestorRealIRR,
	}, a.cfg.NumSims)...)

	return s
}

func (a *aggregator) capStats() CapStats {
	totalStudents := a.capCounts[sim.CapNone] + a.capCounts[sim.CapPayment] + a.capCounts[sim.CapYears]
	if totalStudents == 0 {
		return CapStats{}
	}
	avg := func(b sim.CapBucket) float64 {
		if a.capCounts[b] == 0 {
			return 0
		}
		return a.capRepayments[b] / a.capCounts[b]
	}
	return CapStats{
		PaymentCapShare: a.capCounts[sim.CapPayment] / totalStudents,
		YearsCapShare:   a.capCounts[sim.CapYears] / totalStudents,
		UncappedShare:   a.capCounts[sim.CapNone] / totalStudents,

		PaymentCapAvgRepayment: avg(sim.CapPayment),
		YearsCapAvgRepayment:   avg(sim.CapYears),
		UncappedAvgRepayment:   avg(sim.CapNone),
	}
}

func (a *aggregator) degreeShares() map[string]float64 {
	total := 0.0
	for _, c := range a.degreeCounts {
		total += c
	}
	shares := make(map[string]float64, len(a.degreeCounts))
	if total == 0 {
		return shares
	}
	for name, c := range a.degreeCounts {
		shares[name] = c / total
	}
	return shares
}

func irrStats(perRun []float64) IRRStats {
	mean, undefined := calc.MeanDefined(perRun)
	return IRRStats{
		Mean:      mean,
		P10:       calc.Percentile(perRun, 0.10),
		P50:       calc.Percentile(perRun, 0.50),
		P90:       calc.Percentile(perRun, 0.90),
		Undefined: undefined,
	}
}

func meanSeries(sums []float64, numSims int) []float64 {
	out := make([]float64, len(sums))
	for i, v := range sums {
		out[i] = v / float64(numSims)
	}
	return out
}

// undefinedWarnings surfaces IRR bases whose streams never recovered the
// investment in some runs, so a NaN in the output is explained rather
// than silent.
func undefinedWarnings(bases map[string]IRRStats, numSims int) []string {
	order := []string{"total nominal", "total real", "investor nominal", "investor real"}
	var warnings []string
	for _, name := range order {
		st := bases[name]
		if st.Undefined == 0 {
			continue
		}
		warnings = append(warnings, fmt.Sprintf(
			"%s IRR undefined in %d of %d runs (payments never recovered the investment)",
			name, st.Undefined, numSims))
		if math.IsNaN(st.Mean) {
			warnings = append(warnings, fmt.Sprintf("%s IRR undefined in every run", name))
		}
	}
	return warnings
}

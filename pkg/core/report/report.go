// Package report renders a simulation result as a markdown document:
// headline IRR figures, population rates, cap breakdown, and the payment
// timeline.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"isa_sim/pkg/core/engine"
	"isa_sim/pkg/core/montecarlo"
)

// Markdown renders the full report for one simulation result.
func Markdown(res *engine.Result) string {
	var b strings.Builder
	s := res.Summary

	fmt.Fprintf(&b, "# ISA Simulation Report\n\n")
	fmt.Fprintf(&b, "**Program:** %s &nbsp; **Scenario:** %s &nbsp; **Run:** `%s`\n\n",
		res.Program, res.Scenario, res.RunID)
	fmt.Fprintf(&b, "%d students, %d simulations over %d years. Seed %d. Investment %s.\n\n",
		s.NumStudents, s.NumSims, s.NumYears, res.Seed, money(s.TotalInvestment))

	writeIRRSection(&b, s)
	writePopulationSection(&b, s)
	writeCapSection(&b, s.Caps)
	writeMixSection(&b, s.DegreeShares)
	writeTimelineSection(&b, s)
	writeWarnings(&b, s.Warnings)

	return b.String()
}

func writeIRRSection(b *strings.Builder, s *montecarlo.Summary) {
	fmt.Fprintf(b, "## Returns\n\n")
	fmt.Fprintf(b, "| Basis | Mean | P10 | P50 | P90 | Undefined runs |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|---|\n")
	row := func(name string, st montecarlo.IRRStats) {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %d |\n",
			name, pct(st.Mean), pct(st.P10), pct(st.P50), pct(st.P90), st.Undefined)
	}
	row("Total nominal", s.TotalIRR)
	row("Total real", s.TotalRealIRR)
	row("Investor nominal", s.InvestorIRR)
	row("Investor real", s.InvestorRealIRR)
	fmt.Fprintf(b, "\nAverage collected per batch: %s nominal (%s real), provider share %s, investor share %s. Payment duration %.1f years.\n\n",
		money(s.AvgTotalPayment), money(s.AvgRealPayment),
		money(s.AvgProviderPayment), money(s.AvgInvestorPayment), s.AvgDuration)
}

func writePopulationSection(b *strings.Builder, s *montecarlo.Summary) {
	fmt.Fprintf(b, "## Population\n\n")
	fmt.Fprintf(b, "- Graduation rate: %s\n", pct(s.GraduationRate))
	fmt.Fprintf(b, "- Employment rate (student-years): %s\n", pct(s.EmploymentRate))
	fmt.Fprintf(b, "- Ever employed: %s\n", pct(s.EverEmployedRate))
	fmt.Fprintf(b, "- Made at least one payment: %s\n\n", pct(s.RepaymentRate))
}

func writeCapSection(b *strings.Builder, c montecarlo.CapStats) {
	fmt.Fprintf(b, "## Contract outcomes\n\n")
	fmt.Fprintf(b, "| Outcome | Share of students | Avg real repayment |\n")
	fmt.Fprintf(b, "|---|---|---|\n")
	fmt.Fprintf(b, "| Hit payment cap | %s | %s |\n", pct(c.PaymentCapShare), money(c.PaymentCapAvgRepayment))
	fmt.Fprintf(b, "| Hit years cap | %s | %s |\n", pct(c.YearsCapShare), money(c.YearsCapAvgRepayment))
	fmt.Fprintf(b, "| Uncapped at horizon | %s | %s |\n\n", pct(c.UncappedShare), money(c.UncappedAvgRepayment))
}

func writeMixSection(b *strings.Builder, shares map[string]float64) {
	fmt.Fprintf(b, "## Realized degree mix\n\n")
	names := make([]string, 0, len(shares))
	for name := range shares {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(b, "- %s: %s\n", name, pct(shares[name]))
	}
	fmt.Fprintf(b, "\n")
}

func writeTimelineSection(b *strings.Builder, s *montecarlo.Summary) {
	fmt.Fprintf(b, "## Payment timeline (mean per year)\n\n")
	fmt.Fprintf(b, "| Year | Total | Real | Investor | Provider | Active students |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|---|\n")
	for y := 0; y < s.NumYears; y++ {
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %.1f |\n",
			y+1,
			money(s.PaymentsByYear[y]),
			money(s.RealPaymentsByYear[y]),
			money(s.InvestorPaymentsByYear[y]),
			money(s.ProviderPaymentsByYear[y]),
			s.ActiveStudentsByYear[y])
	}
	fmt.Fprintf(b, "\n")
}

func writeWarnings(b *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(b, "## Warnings\n\n")
	for _, w := range warnings {
		fmt.Fprintf(b, "- %s\n", w)
	}
	fmt.Fprintf(b, "\n")
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func money(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}

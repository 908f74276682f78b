// Package main implements the isasim CLI: run ISA cohort simulations from
// the terminal and print or save the resulting report.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"isa_sim/pkg/core/engine"
	"isa_sim/pkg/core/montecarlo"
	"isa_sim/pkg/core/report"
	"isa_sim/pkg/core/scenario"
)

var (
	flagProgram    string
	flagScenario   string
	flagMix        []string
	flagStudents   int
	flagSims       int
	flagYears      int
	flagSeed       int64
	flagGradDelay  bool
	flagTracksFile string
	flagReportOut  string

	flagISAPct    float64
	flagThreshold float64
	flagCap       float64
	flagPrice     float64
	flagLimitYrs  int
	flagFeePct    float64
	flagFeeStruct string
)

var rootCmd = &cobra.Command{
	Use:   "isasim",
	Short: "Monte Carlo simulator for income-share-agreement cohorts",
	Long: `isasim simulates cohorts of ISA-funded students under randomized
economic trajectories and reports payment streams, cap outcomes, and
investor returns.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation and print the summary",
	RunE:  runSimulation,
}

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List known programs, scenarios, and degree tracks",
	RunE:  listPrograms,
}

func init() {
	runCmd.Flags().StringVar(&flagProgram, "program", scenario.ProgramUganda, "program name or alias (Uganda/University, Kenya/TVET, Rwanda/Labor)")
	runCmd.Flags().StringVar(&flagScenario, "scenario", scenario.ScenarioBaseline, "scenario: baseline, conservative, optimistic, custom")
	runCmd.Flags().StringSliceVar(&flagMix, "mix", nil, "custom mix entries TRACK=PERCENT (requires --scenario custom)")
	runCmd.Flags().IntVar(&flagStudents, "students", 100, "students per cohort")
	runCmd.Flags().IntVar(&flagSims, "sims", 100, "number of Monte Carlo runs")
	runCmd.Flags().IntVar(&flagYears, "years", 0, "simulation horizon in years (default 25)")
	runCmd.Flags().Int64Var(&flagSeed, "seed", 0, "random seed (0: derived from the clock)")
	runCmd.Flags().BoolVar(&flagGradDelay, "grad-delay", false, "model degree-specific graduation delays")
	runCmd.Flags().StringVar(&flagTracksFile, "tracks", "", "YAML/HJSON file with track parameter overrides")
	runCmd.Flags().StringVar(&flagReportOut, "report", "", "write the full markdown report to this file")

	runCmd.Flags().Float64Var(&flagISAPct, "isa-pct", 0, "override ISA percentage (0: program default)")
	runCmd.Flags().Float64Var(&flagThreshold, "threshold", 0, "override ISA income threshold")
	runCmd.Flags().Float64Var(&flagCap, "cap", 0, "override ISA payment cap")
	runCmd.Flags().Float64Var(&flagPrice, "price", 0, "override price per student")
	runCmd.Flags().IntVar(&flagLimitYrs, "limit-years", 0, "override the paying-years limit")
	runCmd.Flags().Float64Var(&flagFeePct, "fee-pct", -1, "override performance fee percentage")
	runCmd.Flags().StringVar(&flagFeeStruct, "fee-structure", "", "fee structure: performance or flat")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(programsCmd)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg := engine.Config{
		Program:         flagProgram,
		Scenario:        flagScenario,
		NumStudents:     flagStudents,
		NumSims:         flagSims,
		NumYears:        flagYears,
		GradDelay:       flagGradDelay,
		TracksFile:      flagTracksFile,
		ISAPercentage:   flagISAPct,
		ISAThreshold:    flagThreshold,
		ISACap:          flagCap,
		PricePerStudent: flagPrice,
		LimitYears:      flagLimitYrs,
		FeeStructure:    flagFeeStruct,
	}
	if flagSeed != 0 {
		cfg.Seed = &flagSeed
	}
	if flagFeePct >= 0 {
		cfg.PerformanceFeePct = &flagFeePct
	}
	if len(flagMix) > 0 {
		mix, err := parseMix(flagMix)
		if err != nil {
			return err
		}
		cfg.CustomMix = mix
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Running %d simulations of %d students (%s / %s)...\n",
		cfg.NumSims, cfg.NumStudents, cfg.Program, cfg.Scenario)

	res, err := engine.Run(ctx, cfg)
	if err != nil {
		return err
	}

	printSummary(res)

	if flagReportOut != "" {
		if err := os.WriteFile(flagReportOut, []byte(report.Markdown(res)), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("\nFull report written to %s\n", flagReportOut)
	}
	return nil
}

// parseMix converts TRACK=PERCENT entries to the custom-mix map.
func parseMix(entries []string) (map[string]float64, error) {
	mix := make(map[string]float64, len(entries))
	for _, e := range entries {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad mix entry %q, expected TRACK=PERCENT", e)
		}
		var pct float64
		if _, err := fmt.Sscanf(parts[1], "%f", &pct); err != nil {
			return nil, fmt.Errorf("bad percentage in mix entry %q: %w", e, err)
		}
		mix[strings.TrimSpace(parts[0])] = pct
	}
	return mix, nil
}

func printSummary(res *engine.Result) {
	s := res.Summary

	fmt.Printf("\nRun %s  (seed %d, %dms)\n", res.RunID, res.Seed, res.ElapsedMS)
	fmt.Printf("Investment: $%.0f across %d students\n\n", s.TotalInvestment, s.NumStudents)

	fmt.Println("Returns (IRR):")
	fmt.Printf("  Total nominal:    %s\n", irrLine(s.TotalIRR))
	fmt.Printf("  Total real:       %s\n", irrLine(s.TotalRealIRR))
	fmt.Printf("  Investor nominal: %s\n", irrLine(s.InvestorIRR))
	fmt.Printf("  Investor real:    %s\n", irrLine(s.InvestorRealIRR))

	fmt.Printf("\nCollections: $%.0f nominal ($%.0f real), duration %.1f years\n",
		s.AvgTotalPayment, s.AvgRealPayment, s.AvgDuration)
	fmt.Printf("Population: %.0f%% graduated, %.0f%% ever employed, %.0f%% paid something\n",
		s.GraduationRate*100, s.EverEmployedRate*100, s.RepaymentRate*100)
	fmt.Printf("Caps: %.0f%% payment cap, %.0f%% years cap, %.0f%% uncapped\n",
		s.Caps.PaymentCapShare*100, s.Caps.YearsCapShare*100, s.Caps.UncappedShare*100)

	for _, w := range s.Warnings {
		fmt.Printf("WARNING: %s\n", w)
	}
}

func irrLine(st montecarlo.IRRStats) string {
	f := func(v float64) string {
		if math.IsNaN(v) {
			return "  n/a"
		}
		return fmt.Sprintf("%5.2f%%", v*100)
	}
	line := fmt.Sprintf("mean %s   p10 %s   p50 %s   p90 %s",
		f(st.Mean), f(st.P10), f(st.P50), f(st.P90))
	if st.Undefined > 0 {
		line += fmt.Sprintf("   (%d undefined)", st.Undefined)
	}
	return line
}

func listPrograms(cmd *cobra.Command, args []string) error {
	for _, name := range scenario.Programs() {
		terms, err := scenario.DefaultTerms(name)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %.0f%% of income above $%.0f, cap $%.0f, price $%.0f\n",
			name, terms.ISAPercentage*100, terms.ISAThreshold, terms.ISACap, terms.PricePerStudent)
		for _, sc := range scenario.Scenarios() {
			if sc == scenario.ScenarioCustom {
				continue
			}
			mix, err := scenario.PresetMix(name, sc)
			if err != nil {
				return err
			}
			tracks := make([]string, 0, len(mix))
			for track := range mix {
				tracks = append(tracks, track)
			}
			sort.Strings(tracks)
			parts := make([]string, 0, len(tracks))
			for _, track := range tracks {
				parts = append(parts, fmt.Sprintf("%s %.1f%%", track, mix[track]*100))
			}
			fmt.Printf("  %-13s %s\n", sc+":", strings.Join(parts, ", "))
		}
	}
	fmt.Println("\nScenario 'custom' takes --mix TRACK=PERCENT entries summing to 100.")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

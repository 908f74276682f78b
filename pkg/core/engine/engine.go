// Package engine is the top-level entry point of the simulator: it
// validates a request, resolves the program/scenario configuration, runs
// the Monte Carlo batch, and packages the outcome.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"isa_sim/pkg/core/montecarlo"
	"isa_sim/pkg/core/scenario"
)

// Bounds on the request parameters. Population and batch sizes are capped
// to keep a single request's work predictable.
const (
	MinStudents = 1
	MaxStudents = 1000
	MinSims     = 1
	MaxSims     = 1000
	MinYears    = 1
	MaxYears    = 100

	DefaultNumYears            = 25
	DefaultInitialInflation    = 0.02
	DefaultInitialUnemployment = 0.05
)

// Config is the user-facing simulation request. Zero-valued optional
// fields fall back to program defaults; pointer fields distinguish "not
// set" from an explicit zero.
type Config struct {
	Program   string             `json:"program"`
	Scenario  string             `json:"scenario"`
	CustomMix map[string]float64 `json:"custom_mix,omitempty"` // percentages

	NumStudents int `json:"num_students"`
	NumSims     int `json:"num_sims"`
	NumYears    int `json:"num_years,omitempty"`

	ISAPercentage   float64 `json:"isa_percentage,omitempty"`
	ISAThreshold    float64 `json:"isa_threshold,omitempty"`
	ISACap          float64 `json:"isa_cap,omitempty"`
	PricePerStudent float64 `json:"price_per_student,omitempty"`
	LimitYears      int     `json:"limit_years,omitempty"`

	PerformanceFeePct *float64 `json:"performance_fee_pct,omitempty"`
	FeeStructure      string   `json:"fee_structure,omitempty"`

	HomeProb            float64  `json:"home_prob,omitempty"` // zero: preset default
	LeaveLaborForceProb *float64 `json:"leave_labor_force_prob,omitempty"`

	InitialInflation    *float64 `json:"initial_inflation,omitempty"`
	InitialUnemployment *float64 `json:"initial_unemployment,omitempty"`

	Seed       *int64 `json:"seed,omitempty"` // nil: derived from wall clock
	GradDelay  bool   `json:"grad_delay,omitempty"`
	TracksFile string `json:"tracks_file,omitempty"` // YAML/HJSON track overrides
}

// Result pairs the aggregated summary with the request echo, so a stored
// or transported result remains self-describing.
type Result struct {
	RunID      string    `json:"run_id"`
	Program    string    `json:"program"`
	Scenario   string    `json:"scenario"`
	Seed       int64     `json:"seed"`
	StartedAt  time.Time `json:"started_at"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	ConfigEcho Config    `json:"config"`

	Summary *montecarlo.Summary `json:"summary"`
}

// Run executes one full simulation request. Configuration problems return
// a *scenario.ConfigError before any simulation work starts; ctx cancels
// between Monte Carlo runs.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	input := scenario.Input{
		Program:             cfg.Program,
		Scenario:            cfg.Scenario,
		CustomMix:           cfg.CustomMix,
		ISAPercentage:       cfg.ISAPercentage,
		ISAThreshold:        cfg.ISAThreshold,
		ISACap:              cfg.ISACap,
		PricePerStudent:     cfg.PricePerStudent,
		LimitYears:          cfg.LimitYears,
		PerformanceFeePct:   cfg.PerformanceFeePct,
		FeeStructure:        cfg.FeeStructure,
		HomeProb:            cfg.HomeProb,
		LeaveLaborForceProb: cfg.LeaveLaborForceProb,
	}

	if cfg.TracksFile != "" {
		overrides, err := scenario.LoadOverrides(cfg.TracksFile)
		if err != nil {
			return nil, fmt.Errorf("loading track overrides: %w", err)
		}
		input.Overrides = overrides
	}

	resolved, err := scenario.Resolve(input)
	if err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	mcCfg := montecarlo.Config{
		NumStudents:         cfg.NumStudents,
		NumSims:             cfg.NumSims,
		NumYears:            orDefaultInt(cfg.NumYears, DefaultNumYears),
		Seed:                seed,
		DelayModel:          cfg.GradDelay,
		InitialInflation:    orDefault(cfg.InitialInflation, DefaultInitialInflation),
		InitialUnemployment: orDefault(cfg.InitialUnemployment, DefaultInitialUnemployment),
		Mix:                 resolved.Mix,
		Terms:               resolved.Terms,
	}

	started := time.Now()
	summary, err := montecarlo.NewRunner(mcCfg).Run(ctx)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:      uuid.New().String(),
		Program:    resolved.Program,
		Scenario:   resolved.Scenario,
		Seed:       seed,
		StartedAt:  started,
		ElapsedMS:  time.Since(started).Milliseconds(),
		ConfigEcho: cfg,
		Summary:    summary,
	}, nil
}

func validate(cfg Config) error {
	if cfg.NumStudents < MinStudents || cfg.NumStudents > MaxStudents {
		return scenario.Errorf("num_students %d outside [%d, %d]", cfg.NumStudents, MinStudents, MaxStudents)
	}
	if cfg.NumSims < MinSims || cfg.NumSims > MaxSims {
		return scenario.Errorf("num_sims %d outside [%d, %d]", cfg.NumSims, MinSims, MaxSims)
	}
	if cfg.NumYears != 0 && (cfg.NumYears < MinYears || cfg.NumYears > MaxYears) {
		return scenario.Errorf("num_years %d outside [%d, %d]", cfg.NumYears, MinYears, MaxYears)
	}
	if cfg.InitialInflation != nil {
		if v := *cfg.InitialInflation; v < -1 || v > 1 {
			return scenario.Errorf("initial_inflation %.4f outside [-1, 1]", v)
		}
	}
	if cfg.InitialUnemployment != nil {
		if v := *cfg.InitialUnemployment; v < 0 || v > 1 {
			return scenario.Errorf("initial_unemployment %.4f outside [0, 1]", v)
		}
	}
	return nil
}

func orDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func orDefaultInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

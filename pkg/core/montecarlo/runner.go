// Package montecarlo repeats independent cohort simulations and aggregates
// the per-run outcomes into summary statistics, including IRR computed from
// each run's own cash-flow stream.
package montecarlo

import (
	"context"
	"fmt"
	"math/rand"

	"isa_sim/pkg/core/degree"
	"isa_sim/pkg/core/econ"
	"isa_sim/pkg/core/scenario"
	"isa_sim/pkg/core/sim"
)

// seedGamma mixes the run index into the master seed (splitmix constant),
// so every run owns an independent stream and reruns are bit-identical
// regardless of execution order.
const seedGamma uint64 = 0x9E3779B97F4A7C15

// Config is the fully-resolved input of a Monte Carlo batch.
type Config struct {
	NumStudents int
	NumSims     int
	NumYears    int
	Seed        int64
	DelayModel  bool // degree-specific graduation-delay modeling

	InitialInflation    float64
	InitialUnemployment float64

	Mix   []scenario.Share
	Terms sim.Terms
}

// Runner executes the batch. Runs are sequential; statistical independence
// would allow parallel execution, but correctness never depends on it.
type Runner struct {
	cfg Config
}

func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg}
}

// Run executes NumSims cohort simulations, checking ctx between runs
// (never mid-run), and aggregates the results.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	agg := newAggregator(r.cfg)

	for i := 0; i < r.cfg.NumSims; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		res, err := r.runOnce(i)
		if err != nil {
			return nil, fmt.Errorf("simulation run %d: %w", i, err)
		}
		agg.addRun(res)
	}

	return agg.summarize(), nil
}

// runOnce executes one cohort under its own seeded generator and a fresh
// economic environment.
func (r *Runner) runOnce(runIdx int) (*sim.CohortResult, error) {
	rng := rand.New(rand.NewSource(r.cfg.Seed + int64(uint64(runIdx)*seedGamma)))

	env := econ.NewEnvironment(
		r.cfg.InitialInflation,
		r.cfg.InitialUnemployment,
		r.cfg.Terms.ISAThreshold,
		r.cfg.Terms.ISACap,
		r.cfg.NumYears,
	)

	students := make([]*sim.StudentLedger, r.cfg.NumStudents)
	for i := range students {
		d := r.drawDegree(rng)
		students[i] = sim.NewStudentLedger(d, r.cfg.NumYears, r.cfg.DelayModel, rng)
	}

	return sim.NewCohort(students, r.cfg.Terms, env, rng).Run()
}

// drawDegree samples a track from the configured mix. The mix order is
// fixed by the configurator, keeping draws reproducible.
func (r *Runner) drawDegree(rng *rand.Rand) degree.Degree {
	u := rng.Float64()
	cum := 0.0
	for _, share := range r.cfg.Mix {
		cum += share.Prob
		if u < cum {
			return share.Degree
		}
	}
	return r.cfg.Mix[len(r.cfg.Mix)-1].Degree
}

// Package degree defines the immutable educational-track descriptions the
// simulator draws student parameters from.
package degree

import (
	"fmt"
	"math/rand"
)

// CompletionClass groups tracks by how tightly completion time is
// distributed. Structured professional programs finish close to schedule;
// open-ended undergraduate tracks show a longer delay tail.
type CompletionClass int

const (
	// ClassUndergraduate covers bachelor's and direct-vocational tracks.
	ClassUndergraduate CompletionClass = iota
	// ClassProfessional covers master's, nursing, and trade tracks.
	ClassProfessional
	// ClassNone marks tracks that never graduate (no advancement).
	ClassNone
)

// Bounds on the annual experience-growth rate.
const (
	MinExperienceGrowth = -0.05
	MaxExperienceGrowth = 0.10
)

// Degree describes one educational track's earnings distribution and
// lifecycle behavior. Instances are built per scenario and never mutated.
type Degree struct {
	Name             string  `json:"name"`
	MeanEarnings     float64 `json:"mean_earnings"`
	StdDev           float64 `json:"std_dev"`
	ExperienceGrowth float64 `json:"experience_growth"`
	YearsToComplete  int     `json:"years_to_complete"`
	// HomeProb is the probability of returning to the home country at
	// graduation.
	HomeProb float64 `json:"home_prob"`
	// LeaveLaborForce is the annual probability of permanently leaving the
	// labor force.
	LeaveLaborForce float64 `json:"leave_labor_force"`
	// EmploymentFriction is an additive per-degree term on the shared
	// unemployment rate.
	EmploymentFriction float64         `json:"employment_friction"`
	Class              CompletionClass `json:"class"`
}

// Home-country earnings draw for students who return home after graduating.
// Same distribution as the no-advancement informal-income track.
const (
	HomeMeanEarnings = 2600.0
	HomeStdDev       = 690.0
)

// Validate checks the track's parameters. Called once when scenario tables
// are built, before any random draw happens.
func (d *Degree) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("degree has no name")
	}
	if d.MeanEarnings < 0 {
		return fmt.Errorf("degree %s: mean earnings %.2f is negative", d.Name, d.MeanEarnings)
	}
	if d.StdDev < 0 {
		return fmt.Errorf("degree %s: earnings stdev %.2f is negative", d.Name, d.StdDev)
	}
	if d.ExperienceGrowth < MinExperienceGrowth || d.ExperienceGrowth > MaxExperienceGrowth {
		return fmt.Errorf("degree %s: experience growth %.4f outside [%.2f, %.2f]",
			d.Name, d.ExperienceGrowth, MinExperienceGrowth, MaxExperienceGrowth)
	}
	if d.YearsToComplete < 0 {
		return fmt.Errorf("degree %s: years to complete %d is negative", d.Name, d.YearsToComplete)
	}
	for _, p := range []struct {
		label string
		v     float64
	}{
		{"home probability", d.HomeProb},
		{"leave-labor-force probability", d.LeaveLaborForce},
	} {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("degree %s: %s %.4f outside [0, 1]", d.Name, p.label, p.v)
		}
	}
	if d.EmploymentFriction < 0 {
		return fmt.Errorf("degree %s: employment friction %.4f is negative", d.Name, d.EmploymentFriction)
	}
	return nil
}

// Graduation-delay distributions (extra years beyond nominal completion).
var (
	undergraduateDelay = []float64{0.50, 0.25, 0.125, 0.0625, 0.0625}
	professionalDelay  = []float64{0.75, 0.20, 0.025, 0.025}
)

// DrawDelay samples the extra years beyond nominal completion for this
// track's completion class. Tracks that never graduate have no delay.
func (d *Degree) DrawDelay(rng *rand.Rand) int {
	var dist []float64
	switch d.Class {
	case ClassUndergraduate:
		dist = undergraduateDelay
	case ClassProfessional:
		dist = professionalDelay
	default:
		return 0
	}

	u := rng.Float64()
	cum := 0.0
	for extra, p := range dist {
		cum += p
		if u < cum {
			return extra
		}
	}
	return len(dist) - 1
}

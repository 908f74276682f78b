// Package scenario resolves named program/scenario presets into concrete
// degree distributions and ISA contract terms. Resolution is an explicit
// three-step pipeline: preset tables, then caller overrides, then
// validation of the final configuration.
package scenario

import (
	"math"

	"isa_sim/pkg/core/degree"
	"isa_sim/pkg/core/sim"
)

// Input names everything a caller may set. Zero values mean "use the
// program preset"; pointer fields distinguish "unset" from explicit zero.
type Input struct {
	Program   string
	Scenario  string
	CustomMix map[string]float64 // track -> percent, must sum to 100 for custom scenarios

	// ISA term overrides (zero = preset default).
	ISAPercentage     float64
	ISAThreshold      float64
	ISACap            float64
	PricePerStudent   float64
	PerformanceFeePct *float64
	LimitYears        int
	FeeStructure      string

	// Behavioral overrides.
	HomeProb            float64  // return-home probability for graduating tracks
	LeaveLaborForceProb *float64 // replaces every track's annual leave probability

	// Optional file-loaded track parameter overrides.
	Overrides *Overrides
}

// Share pairs a degree track with its assignment probability.
type Share struct {
	Degree degree.Degree
	Prob   float64
}

// Resolved is the validated final configuration a simulation runs with.
type Resolved struct {
	Program  string
	Scenario string
	Mix      []Share
	Terms    sim.Terms
}

// trackOrder fixes the mix ordering so categorical draws are reproducible
// across runs of the same configuration.
var trackOrder = []string{TrackBA, TrackMA, TrackVOC, TrackNURSE, TrackTRADE, TrackNA}

// Resolve turns an Input into a validated Resolved configuration. All
// failures are ConfigErrors raised before any simulation work happens.
func Resolve(in Input) (*Resolved, error) {
	program, err := CanonicalProgram(in.Program)
	if err != nil {
		return nil, err
	}

	terms, err := DefaultTerms(program)
	if err != nil {
		return nil, err
	}
	applyTermOverrides(&terms, in)
	if err := terms.Validate(); err != nil {
		return nil, Errorf("%v", err)
	}

	mix, err := resolveMix(program, in)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Program:  program,
		Scenario: in.Scenario,
		Mix:      mix,
		Terms:    terms,
	}, nil
}

func applyTermOverrides(terms *sim.Terms, in Input) {
	if in.ISAPercentage != 0 {
		terms.ISAPercentage = in.ISAPercentage
	}
	if in.ISAThreshold != 0 {
		terms.ISAThreshold = in.ISAThreshold
	}
	if in.ISACap != 0 {
		terms.ISACap = in.ISACap
	}
	if in.PricePerStudent != 0 {
		terms.PricePerStudent = in.PricePerStudent
	}
	if in.PerformanceFeePct != nil {
		terms.PerformanceFeePct = *in.PerformanceFeePct
	}
	if in.LimitYears != 0 {
		terms.LimitYears = in.LimitYears
	}
	if in.FeeStructure != "" {
		terms.FeeStructure = sim.FeeStructure(in.FeeStructure)
	}
}

func resolveMix(program string, in Input) ([]Share, error) {
	var weights map[string]float64

	switch in.Scenario {
	case ScenarioBaseline, ScenarioConservative, ScenarioOptimistic:
		weights = presetMixes[program][in.Scenario]
	case ScenarioCustom:
		if len(in.CustomMix) == 0 {
			return nil, Errorf("custom scenario requires at least one degree percentage")
		}
		weights = make(map[string]float64, len(in.CustomMix))
		sum := 0.0
		for track, pct := range in.CustomMix {
			if _, ok := trackParams[track]; !ok {
				return nil, Errorf("unknown degree track %q in custom mix", track)
			}
			if pct < 0 {
				return nil, Errorf("degree track %s has negative percentage %.4f", track, pct)
			}
			weights[track] = pct / 100.0
			sum += pct
		}
		// Caller-supplied percentages must account for the whole cohort;
		// silently renormalizing would hide data-entry mistakes.
		if math.Abs(sum/100.0-1.0) > MixTolerance {
			return nil, Errorf("custom degree percentages sum to %.4f%%, expected 100%%", sum)
		}
	default:
		return nil, Errorf("unknown scenario %q", in.Scenario)
	}

	mix := make([]Share, 0, len(weights))
	for _, track := range trackOrder {
		p, ok := weights[track]
		if !ok || p == 0 {
			continue
		}
		d, err := buildTrack(track, in)
		if err != nil {
			return nil, err
		}
		mix = append(mix, Share{Degree: d, Prob: p})
	}
	return mix, nil
}

// buildTrack copies the base track table and applies caller and file
// overrides, validating the result.
func buildTrack(track string, in Input) (degree.Degree, error) {
	d := trackParams[track]

	if in.Overrides != nil {
		if o, ok := in.Overrides.Tracks[track]; ok {
			if o.MeanEarnings != nil {
				d.MeanEarnings = *o.MeanEarnings
			}
			if o.StdDev != nil {
				d.StdDev = *o.StdDev
			}
			if o.ExperienceGrowth != nil {
				d.ExperienceGrowth = *o.ExperienceGrowth
			}
			if o.YearsToComplete != nil {
				d.YearsToComplete = *o.YearsToComplete
			}
		}
	}

	// The NA track keeps its fixed high home probability; the override
	// applies to tracks that actually graduate.
	if track != TrackNA && in.HomeProb != 0 {
		d.HomeProb = in.HomeProb
	}
	if in.LeaveLaborForceProb != nil {
		d.LeaveLaborForce = *in.LeaveLaborForceProb
	}

	if err := d.Validate(); err != nil {
		return degree.Degree{}, Errorf("%v", err)
	}
	return d, nil
}

package scenario

import (
	"fmt"
	"math"

	"isa_sim/pkg/core/degree"
	"isa_sim/pkg/core/sim"
)

// Program identifiers. Each funding program pairs a country cohort with a
// program type; the plain program-type names are accepted as aliases.
const (
	ProgramUganda = "Uganda" // university program
	ProgramKenya  = "Kenya"  // TVET program
	ProgramRwanda = "Rwanda" // labor/trade program
)

// Scenario variants.
const (
	ScenarioBaseline     = "baseline"
	ScenarioConservative = "conservative"
	ScenarioOptimistic   = "optimistic"
	ScenarioCustom       = "custom"
)

// MixTolerance is the allowed deviation of a degree-mix probability sum
// from 1.0. Custom mixes violating it fail; they are never renormalized.
const MixTolerance = 1e-6

// Track names.
const (
	TrackBA    = "BA"
	TrackMA    = "MA"
	TrackVOC   = "VOC"
	TrackNURSE = "NURSE"
	TrackTRADE = "TRADE"
	TrackNA    = "NA"
)

// trackParams is the base parameter table for every known track. HomeProb
// for NA is fixed high: students who never advance mostly re-enter the
// home-country labor market.
var trackParams = map[string]degree.Degree{
	TrackBA: {
		Name: TrackBA, MeanEarnings: 41300, StdDev: 13000, ExperienceGrowth: 0.04,
		YearsToComplete: 4, LeaveLaborForce: 0.02, Class: degree.ClassUndergraduate,
	},
	TrackMA: {
		Name: TrackMA, MeanEarnings: 46709, StdDev: 15000, ExperienceGrowth: 0.04,
		YearsToComplete: 6, LeaveLaborForce: 0.02, Class: degree.ClassProfessional,
	},
	TrackVOC: {
		Name: TrackVOC, MeanEarnings: 31500, StdDev: 4800, ExperienceGrowth: 0.04,
		YearsToComplete: 3, LeaveLaborForce: 0.02, EmploymentFriction: 0.02,
		Class: degree.ClassUndergraduate,
	},
	TrackNURSE: {
		Name: TrackNURSE, MeanEarnings: 44000, StdDev: 8400, ExperienceGrowth: 0.01,
		YearsToComplete: 4, LeaveLaborForce: 0.02, Class: degree.ClassProfessional,
	},
	TrackTRADE: {
		Name: TrackTRADE, MeanEarnings: 35000, StdDev: 5000, ExperienceGrowth: 0.02,
		YearsToComplete: 3, LeaveLaborForce: 0.02, EmploymentFriction: 0.05,
		Class: degree.ClassProfessional,
	},
	TrackNA: {
		Name: TrackNA, MeanEarnings: 2200, StdDev: 640, ExperienceGrowth: 0.01,
		YearsToComplete: 0, HomeProb: 0.8, LeaveLaborForce: 0.05,
		EmploymentFriction: 0.15, Class: degree.ClassNone,
	},
}

// programDefaults carries the ISA terms each program starts from.
type programDefaults struct {
	ISAPercentage   float64
	ISACap          float64
	PricePerStudent float64
}

var programTable = map[string]programDefaults{
	ProgramUganda: {ISAPercentage: 0.14, ISACap: 72500, PricePerStudent: 29000},
	ProgramKenya:  {ISAPercentage: 0.12, ISACap: 49950, PricePerStudent: 16650},
	ProgramRwanda: {ISAPercentage: 0.12, ISACap: 45000, PricePerStudent: 10000},
}

// DefaultISAThreshold applies to every program.
const DefaultISAThreshold = 27000

// programAliases maps the plain program-type names onto the country
// identifiers.
var programAliases = map[string]string{
	"University": ProgramUganda,
	"TVET":       ProgramKenya,
	"Labor":      ProgramRwanda,
}

// presetMixes holds the degree distributions per program and scenario.
var presetMixes = map[string]map[string]map[string]float64{
	ProgramUganda: {
		ScenarioBaseline:     {TrackBA: 0.43, TrackMA: 0.23, TrackVOC: 0.25, TrackNA: 0.09},
		ScenarioConservative: {TrackBA: 0.30, TrackMA: 0.10, TrackVOC: 0.40, TrackNA: 0.20},
		ScenarioOptimistic:   {TrackBA: 0.625, TrackMA: 0.325, TrackVOC: 0.025, TrackNA: 0.025},
	},
	ProgramKenya: {
		ScenarioBaseline:     {TrackNURSE: 0.45, TrackVOC: 0.45, TrackNA: 0.10},
		ScenarioConservative: {TrackNURSE: 0.25, TrackVOC: 0.60, TrackNA: 0.15},
		ScenarioOptimistic:   {TrackNURSE: 0.60, TrackVOC: 0.40},
	},
	ProgramRwanda: {
		ScenarioBaseline:     {TrackTRADE: 0.75, TrackNA: 0.25},
		ScenarioConservative: {TrackTRADE: 0.60, TrackNA: 0.40},
		ScenarioOptimistic:   {TrackTRADE: 0.95, TrackNA: 0.05},
	},
}

// DefaultTerms returns the ISA contract a program starts from before
// caller overrides are applied.
func DefaultTerms(program string) (sim.Terms, error) {
	canonical, err := CanonicalProgram(program)
	if err != nil {
		return sim.Terms{}, err
	}
	d := programTable[canonical]
	return sim.Terms{
		ISAPercentage:     d.ISAPercentage,
		ISAThreshold:      DefaultISAThreshold,
		ISACap:            d.ISACap,
		LimitYears:        10,
		PricePerStudent:   d.PricePerStudent,
		PerformanceFeePct: 0.15,
		FeeStructure:      sim.FeePerformance,
	}, nil
}

// Programs lists the known program identifiers in a fixed order.
func Programs() []string {
	return []string{ProgramUganda, ProgramKenya, ProgramRwanda}
}

// Scenarios lists the scenario variants in a fixed order.
func Scenarios() []string {
	return []string{ScenarioBaseline, ScenarioConservative, ScenarioOptimistic, ScenarioCustom}
}

// TrackCatalog returns a copy of the base track table.
func TrackCatalog() map[string]degree.Degree {
	out := make(map[string]degree.Degree, len(trackParams))
	for name, d := range trackParams {
		out[name] = d
	}
	return out
}

// PresetMix returns a copy of the degree distribution for a program and
// preset scenario.
func PresetMix(program, scenarioName string) (map[string]float64, error) {
	canonical, err := CanonicalProgram(program)
	if err != nil {
		return nil, err
	}
	mix, ok := presetMixes[canonical][scenarioName]
	if !ok {
		return nil, Errorf("no preset mix for %s/%s", canonical, scenarioName)
	}
	out := make(map[string]float64, len(mix))
	for track, p := range mix {
		out[track] = p
	}
	return out, nil
}

// CanonicalProgram resolves a program name or alias to its identifier.
func CanonicalProgram(program string) (string, error) {
	if _, ok := programTable[program]; ok {
		return program, nil
	}
	if canonical, ok := programAliases[program]; ok {
		return canonical, nil
	}
	return "", Errorf("unknown program %q", program)
}

// Preset tables are fixed at build time; verify their sums once here rather
// than on every call.
func init() {
	for program, scenarios := range presetMixes {
		for name, mix := range scenarios {
			sum := 0.0
			for track, p := range mix {
				if _, ok := trackParams[track]; !ok {
					panic(fmt.Sprintf("preset %s/%s references unknown track %s", program, name, track))
				}
				sum += p
			}
			if math.Abs(sum-1.0) > MixTolerance {
				panic(fmt.Sprintf("preset %s/%s probabilities sum to %.8f", program, name, sum))
			}
		}
	}
	for name, d := range trackParams {
		if err := d.Validate(); err != nil {
			panic(fmt.Sprintf("track table %s: %v", name, err))
		}
	}
}

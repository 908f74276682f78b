package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"isa_sim/pkg/core/utils"
)

// TrackOverride adjusts one track's earnings parameters. Pointer fields
// distinguish "leave preset alone" from an explicit zero.
type TrackOverride struct {
	MeanEarnings     *float64 `yaml:"mean_earnings" json:"mean_earnings"`
	StdDev           *float64 `yaml:"stdev" json:"stdev"`
	ExperienceGrowth *float64 `yaml:"experience_growth" json:"experience_growth"`
	YearsToComplete  *int     `yaml:"years_to_complete" json:"years_to_complete"`
}

// Overrides is the file format for scenario parameter tweaks, keyed by
// track name.
type Overrides struct {
	Tracks map[string]TrackOverride `yaml:"tracks" json:"tracks"`
}

// LoadOverrides reads a yaml (.yaml/.yml) or hjson/json override file.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides %s: %w", path, err)
	}

	var o Overrides
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("parse overrides %s: %w", path, err)
		}
	default:
		if _, err := utils.SmartParse(string(data), &o); err != nil {
			return nil, fmt.Errorf("parse overrides %s: %w", path, err)
		}
	}

	for track := range o.Tracks {
		if _, ok := trackParams[track]; !ok {
			return nil, Errorf("overrides file %s references unknown track %q", path, track)
		}
	}
	return &o, nil
}

// Package programs serves the configuration catalog a client needs to
// build a simulation request: programs, their default contract terms,
// preset scenario mixes, and the degree-track table.
package programs

import (
	"encoding/json"
	"net/http"

	"isa_sim/pkg/core/degree"
	"isa_sim/pkg/core/scenario"
	"isa_sim/pkg/core/sim"
)

type ProgramInfo struct {
	Name         string                        `json:"name"`
	DefaultTerms sim.Terms                     `json:"default_terms"`
	PresetMixes  map[string]map[string]float64 `json:"preset_mixes"`
}

type Response struct {
	Programs  []ProgramInfo            `json:"programs"`
	Scenarios []string                 `json:"scenarios"`
	Tracks    map[string]degree.Degree `json:"tracks"`
}

// HandleCatalog returns the full configuration catalog.
func HandleCatalog(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	resp := Response{
		Scenarios: scenario.Scenarios(),
		Tracks:    scenario.TrackCatalog(),
	}

	for _, name := range scenario.Programs() {
		terms, err := scenario.DefaultTerms(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		mixes := make(map[string]map[string]float64)
		for _, sc := range scenario.Scenarios() {
			if sc == scenario.ScenarioCustom {
				continue
			}
			mix, err := scenario.PresetMix(name, sc)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			mixes[sc] = mix
		}
		resp.Programs = append(resp.Programs, ProgramInfo{
			Name:         name,
			DefaultTerms: terms,
			PresetMixes:  mixes,
		})
	}

	json.NewEncoder(w).Encode(resp)
}

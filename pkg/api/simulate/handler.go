// Package simulate exposes the simulation engine over HTTP.
package simulate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"isa_sim/pkg/core/engine"
	"isa_sim/pkg/core/scenario"
)

// HandleSimulate runs a full Monte Carlo batch for the posted config and
// returns the aggregated result. Configuration mistakes are 400s; only
// internal failures are 500s.
func HandleSimulate(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var cfg engine.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fmt.Printf("[SIMULATE] Request: program=%s scenario=%s students=%d sims=%d\n",
		cfg.Program, cfg.Scenario, cfg.NumStudents, cfg.NumSims)

	res, err := engine.Run(r.Context(), cfg)
	if err != nil {
		var cfgErr *scenario.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Printf("[SIMULATE] Rejected: %v\n", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fmt.Printf("[ERROR] Simulation failed: %v\n", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fmt.Printf("[SIMULATE] Done: run=%s elapsed=%dms mean_irr=%.4f\n",
		res.RunID, res.ElapsedMS, res.Summary.TotalIRR.Mean)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

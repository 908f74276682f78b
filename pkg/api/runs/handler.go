// Package runs exposes saved-simulation persistence: run, save, list,
// and load endpoints backed by Postgres.
package runs

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"isa_sim/pkg/core/engine"
	"isa_sim/pkg/core/scenario"
	"isa_sim/pkg/core/store"
)

var repo = store.NewRunRepo()

func definedOrNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// HandleSaveRun runs a simulation and persists the result in one call,
// returning the stored payload.
func HandleSaveRun(w http.ResponseWriter, r *http.Request) {
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

	res, err := engine.Run(r.Context(), cfg)
	if err != nil {
		var cfgErr *scenario.ConfigError
		if errors.As(err, &cfgErr) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := repo.Save(r.Context(), res); err != nil {
		fmt.Printf("[RUNS] Save failed: %v\n", err)
		http.Error(w, fmt.Sprintf("save failed: %v", err), http.StatusInternalServerError)
		return
	}
	fmt.Printf("[RUNS] Saved run %s (%s/%s)\n", res.RunID, res.Program, res.Scenario)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// HandleListRuns returns recent saved runs, newest first. ?limit= caps
// the page size.
func HandleListRuns(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != "GET" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	listings, err := repo.List(r.Context(), limit)
	if err != nil {
		fmt.Printf("[RUNS] List failed: %v\n", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listings)
}

// CompareRequest names the saved runs to put side by side.
type CompareRequest struct {
	RunIDs []string `json:"run_ids"`
}

// CompareRow is the per-run digest returned by the compare endpoint.
type CompareRow struct {
	RunID    string `json:"run_id"`
	Program  string `json:"program"`
	Scenario string `json:"scenario"`
	// IRR means are null when undefined in every run.
	TotalIRRMean     *float64 `json:"total_irr_mean"`
	InvestorIRRMean  *float64 `json:"investor_irr_mean"`
	AvgTotalPayment  float64  `json:"avg_total_payment"`
	AvgDurationYears float64 `json:"avg_duration_years"`
	PaymentCapShare  float64 `json:"payment_cap_share"`
	YearsCapShare    float64 `json:"years_cap_share"`
	RepaymentRate    float64 `json:"repayment_rate"`
}

// HandleCompareRuns loads the named saved runs and returns their headline
// figures side by side.
func HandleCompareRuns(w http.ResponseWriter, r *http.Request) {
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

	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.RunIDs) < 2 {
		http.Error(w, "compare needs at least two run ids", http.StatusBadRequest)
		return
	}

	rows := make([]CompareRow, 0, len(req.RunIDs))
	for _, id := range req.RunIDs {
		res, err := repo.Load(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s := res.Summary
		rows = append(rows, CompareRow{
			RunID:            res.RunID,
			Program:          res.Program,
			Scenario:         res.Scenario,
			TotalIRRMean:     definedOrNil(s.TotalIRR.Mean),
			InvestorIRRMean:  definedOrNil(s.InvestorIRR.Mean),
			AvgTotalPayment:  s.AvgTotalPayment,
			AvgDurationYears: s.AvgDuration,
			PaymentCapShare:  s.Caps.PaymentCapShare,
			YearsCapShare:    s.Caps.YearsCapShare,
			RepaymentRate:    s.RepaymentRate,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// HandleGetRun loads one saved run by ?id=.
func HandleGetRun(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != "GET" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runID := r.URL.Query().Get("id")
	if runID == "" {
		http.Error(w, "missing id parameter", http.StatusBadRequest)
		return
	}

	res, err := repo.Load(r.Context(), runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

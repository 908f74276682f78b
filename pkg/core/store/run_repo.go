package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"isa_sim/pkg/core/engine"
)

// RunRepo handles the storage of completed simulation results.
type RunRepo struct{}

// NewRunRepo creates a new repository instance.
func NewRunRepo() *RunRepo {
	return &RunRepo{}
}

// RunListing is the lightweight view returned by List: enough to identify
// a saved run without deserializing its full payload.
type RunListing struct {
	RunID     string    `json:"run_id"`
	Program   string    `json:"program"`
	Scenario  string    `json:"scenario"`
	Seed      int64     `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
}

// Save persists a completed result keyed by its run ID. Saving the same
// run twice overwrites the payload.
func (r *RunRepo) Save(ctx context.Context, res *engine.Result) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `
		INSERT INTO simulation_runs (run_id, program, scenario, seed, result_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id)
		DO UPDATE SET
			result_json = EXCLUDED.result_json,
			created_at = EXCLUDED.created_at;
	`

	_, err = pool.Exec(ctx, query, res.RunID, res.Program, res.Scenario, res.Seed, jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", res.RunID, err)
	}
	return nil
}

// Load retrieves the full result for a run ID.
func (r *RunRepo) Load(ctx context.Context, runID string) (*engine.Result, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT result_json FROM simulation_runs WHERE run_id = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, runID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no saved run %s", runID)
		}
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	var res engine.Result
	if err := json.Unmarshal(jsonData, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", runID, err)
	}
	return &res, nil
}

// List returns the most recent saved runs, newest first.
func (r *RunRepo) List(ctx context.Context, limit int) ([]RunListing, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT run_id, program, scenario, seed, created_at
		FROM simulation_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var listings []RunListing
	for rows.Next() {
		var l RunListing
		if err := rows.Scan(&l.RunID, &l.Program, &l.Scenario, &l.Seed, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

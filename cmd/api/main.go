package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"isa_sim/pkg/api/programs"
	"isa_sim/pkg/api/runs"
	"isa_sim/pkg/api/simreport"
	"isa_sim/pkg/api/simulate"
	"isa_sim/pkg/core/store"
)

// ServerConfig is the optional config/server.yaml file. Missing file or
// fields fall back to defaults.
type ServerConfig struct {
	Port string `yaml:"port"`
}

func main() {
	// Load environment variables
	godotenv.Load()

	cfg := ServerConfig{Port: "8080"}
	if data, err := os.ReadFile("config/server.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fmt.Printf("[WARNING] Bad config/server.yaml: %v\n", err)
		}
	}

	// Persistence is optional: without DATABASE_URL the simulation and
	// report endpoints still work, only saved runs are unavailable.
	ctx := context.Background()
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[WARNING] Database init failed: %v\n", err)
		} else if err := store.EnsureSchema(ctx); err != nil {
			fmt.Printf("[WARNING] Schema setup failed: %v\n", err)
		} else {
			fmt.Println("[STORE] Database connected.")
			defer store.Close()
		}
	} else {
		fmt.Println("[STORE] DATABASE_URL not set; saved runs disabled.")
	}

	// Catalog endpoint
	http.HandleFunc("/api/programs", programs.HandleCatalog)

	// Simulation endpoints
	http.HandleFunc("/api/simulate", simulate.HandleSimulate)
	http.HandleFunc("/api/report", simreport.HandleReport)

	// Saved-run endpoints
	http.HandleFunc("/api/runs/save", runs.HandleSaveRun)
	http.HandleFunc("/api/runs/list", runs.HandleListRuns)
	http.HandleFunc("/api/runs/get", runs.HandleGetRun)
	http.HandleFunc("/api/runs/compare", runs.HandleCompareRuns)

	addr := ":" + cfg.Port
	fmt.Printf("API server starting on %s...\n", addr)
	fmt.Println("  - GET  /api/programs")
	fmt.Println("  - POST /api/simulate")
	fmt.Println("  - POST /api/report  (?format=html)")
	fmt.Println("  - POST /api/runs/save")
	fmt.Println("  - GET  /api/runs/list")
	fmt.Println("  - GET  /api/runs/get?id=")
	fmt.Println("  - POST /api/runs/compare")

	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}

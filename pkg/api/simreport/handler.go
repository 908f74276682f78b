// Package simreport renders simulation results as documents: markdown for
// download, HTML for in-browser viewing.
package simreport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"isa_sim/pkg/core/engine"
	"isa_sim/pkg/core/report"
	"isa_sim/pkg/core/scenario"
)

// md renders the report tables; GFM is needed for pipe tables.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HandleReport runs a simulation for the posted config and returns the
// rendered report. ?format=html converts the markdown; the default is the
// raw markdown document.
func HandleReport(w http.ResponseWriter, r *http.Request) {
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
		fmt.Printf("[REPORT] Simulation failed: %v\n", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	doc := report.Markdown(res)

	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := md.Convert([]byte(doc), &buf); err != nil {
			fmt.Printf("[REPORT] Markdown conversion failed: %v\n", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, doc)
}

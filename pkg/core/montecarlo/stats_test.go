package montecarlo

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestIRRStatsJSONMapsNaNToNull(t *testing.T) {
	in := IRRStats{Mean: math.NaN(), P10: math.NaN(), P50: 0.05, P90: 0.12, Undefined: 3}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal with NaN fields should succeed: %v", err)
	}
	if !strings.Contains(string(data), `"mean":null`) {
		t.Errorf("NaN mean should serialize as null: %s", data)
	}

	var out IRRStats
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !math.IsNaN(out.Mean) {
		t.Errorf("null mean should restore as NaN, got %f", out.Mean)
	}
	if out.P50 != 0.05 || out.Undefined != 3 {
		t.Errorf("defined fields lost in round trip: %+v", out)
	}
}

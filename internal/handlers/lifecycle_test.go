package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceCost_MeanIntervals(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/maintenance-cost", map[string]any{
		"years": 5,
		"items": []map[string]any{{"mtbf": "6132", "cost": 100}},
	}, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)
	assert.Equal(t, 7.0, out["failures"])
	assert.Equal(t, 140.0, out["meanAnnualCost"])
	assert.Equal(t, 1.0, out["samples"])

	annual, ok := out["annual"].([]any)
	require.True(t, ok)
	require.Len(t, annual, 5)
	assert.Equal(t, map[string]any{"year": 3.0, "cost": 200.0}, annual[2])
}

func TestMaintenanceCost_MonteCarloIsRepeatableWithSeed(t *testing.T) {
	ts := newTestServer(t)
	req := map[string]any{
		"years":      3,
		"samples":    200,
		"monteCarlo": true,
		"seed":       42,
		"items": []map[string]any{
			{"beta": 1.5, "eta": 2000, "gamma": 100, "cost": 250},
			{"mtbf": 4000, "cost": 75},
		},
	}

	first := ts.do(t, http.MethodPost, "/api/maintenance-cost", req, "")
	second := ts.do(t, http.MethodPost, "/api/maintenance-cost", req, "")

	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, first.Body.String(), second.Body.String())
	out := decode(t, first)
	assert.Equal(t, 42.0, out["seed"])
	assert.Equal(t, 200.0, out["samples"])
	assert.Greater(t, out["meanAnnualCost"], 0.0)
}

func TestMaintenanceCost_Rejections(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
		kind   string
	}{
		{"malformed", `{"years":`, http.StatusBadRequest, "bad_request"},
		{"no items", map[string]any{"years": 1, "items": []any{}}, http.StatusBadRequest, "bad_request"},
		{"years out of range", map[string]any{"years": 101, "items": []map[string]any{{"mtbf": 10}}}, http.StatusBadRequest, "bad_request"},
		{"infinite mtbf", map[string]any{"years": 1, "items": []map[string]any{{"mtbf": "Inf"}}}, http.StatusBadRequest, "bad_request"},
		{"negative cost", map[string]any{"years": 1, "items": []map[string]any{{"mtbf": 10, "cost": -1}}}, http.StatusBadRequest, "bad_request"},
		{"no distribution", map[string]any{"years": 1, "items": []map[string]any{{"cost": 5}}}, http.StatusUnprocessableEntity, "invalid_parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/maintenance-cost", tt.body, "")
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.kind, decode(t, w)["kind"])
		})
	}
}

func costModelBody() map[string]any {
	return map[string]any{
		"years":              3,
		"electricityCost":    0.1,
		"itMaintenanceCost":  1000,
		"recoveredHeatValue": 0.5,
		"baseline": map[string]any{
			"capitalCost": 1000, "life": 10, "mtbf": 8760, "maintenanceCost": 300, "energyUsage": 1000,
		},
		"candidate": map[string]any{
			"capitalCost": "1200", "life": 10, "mtbf": 17520, "maintenanceCost": 300, "energyUsage": 800,
		},
	}
}

func TestCostModel(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/cost-model", costModelBody(), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode(t, w)
	years, ok := out["years"].([]any)
	require.True(t, ok)
	require.Len(t, years, 4)

	last, ok := years[3].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 1.55, last["roi"], 1e-9)
	assert.InDelta(t, 170, last["netNpv"], 1e-9)

	baseline, ok := out["baseline"].([]any)
	require.True(t, ok)
	first, ok := baseline[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1000.0, first["capital"])
	assert.Equal(t, 1000.0, first["cumulativeNpv"])
}

func TestCostModel_Validation(t *testing.T) {
	ts := newTestServer(t)

	req := costModelBody()
	req["candidate"].(map[string]any)["life"] = 0
	w := ts.do(t, http.MethodPost, "/api/cost-model", req, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "candidate.life")

	req = costModelBody()
	req["discountRate"] = -1
	w = ts.do(t, http.MethodPost, "/api/cost-model", req, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banditlabs/banditd/services/bandit/datatypes"
	"github.com/banditlabs/banditd/services/bandit/registry"
	"github.com/banditlabs/banditd/services/bandit/storage/badgerstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *registry.Registry) {
	t.Helper()
	store, err := badgerstore.Open(badgerstore.InMemoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := registry.New(store, nil)

	router := gin.New()
	router.POST("/v1/experiments", CreateExperiment(reg))
	router.GET("/v1/experiments", ListExperiments(reg))
	router.GET("/v1/experiments/:name/stats", GetExperimentStats(reg))
	router.DELETE("/v1/experiments/:name", DeleteExperiment(reg))
	router.POST("/v1/select", SelectArm(reg))
	router.POST("/v1/update", UpdateReward(reg))
	return router, reg
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createExperiment(t *testing.T, router *gin.Engine, name, algorithm string, epsilon *float64) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/v1/experiments", map[string]any{
		"experiment_name": name,
		"arms":            []string{"A", "B"},
		"algorithm":       algorithm,
		"epsilon":         epsilon,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

// =============================================================================
// Create
// =============================================================================

func TestCreateExperiment_Created(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/experiments", map[string]any{
		"experiment_name": "homepage",
		"arms":            []string{"A", "B"},
		"algorithm":       "ucb",
		"c":               1.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "homepage", resp["name"])
	assert.Equal(t, "ucb", resp["algorithm"])
}

func TestCreateExperiment_DuplicateConflict(t *testing.T) {
	router, _ := newTestRouter(t)
	createExperiment(t, router, "dup", "ucb", nil)

	w := doJSON(t, router, http.MethodPost, "/v1/experiments", map[string]any{
		"experiment_name": "dup",
		"arms":            []string{"A", "B"},
		"algorithm":       "ucb",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateExperiment_BindingRejectsBadInput(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []map[string]any{
		{"arms": []string{"A", "B"}, "algorithm": "ucb"},                                            // no name
		{"experiment_name": "x", "arms": []string{"A"}, "algorithm": "ucb"},                         // one arm
		{"experiment_name": "x", "arms": []string{"A", "B"}, "algorithm": "softmax"},                // bad algorithm
		{"experiment_name": "x", "arms": []string{"A", "B"}, "algorithm": "ucb", "c": -1.0},         // bad c
		{"experiment_name": "x", "arms": []string{"A", "B"}, "algorithm": "epsilon_greedy", "epsilon": 2.0}, // bad epsilon
	}
	for i, body := range cases {
		w := doJSON(t, router, http.MethodPost, "/v1/experiments", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "case %d: %s", i, w.Body.String())
	}
}

func TestCreateExperiment_DuplicateArmNames(t *testing.T) {
	router, _ := newTestRouter(t)

	// Passes the binding layer, rejected by the core.
	w := doJSON(t, router, http.MethodPost, "/v1/experiments", map[string]any{
		"experiment_name": "x",
		"arms":            []string{"A", "A"},
		"algorithm":       "ucb",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// Select / Update
// =============================================================================

func TestSelectArm_EndToEnd(t *testing.T) {
	router, _ := newTestRouter(t)
	zero := 0.0
	createExperiment(t, router, "homepage", "epsilon_greedy", &zero)

	w := doJSON(t, router, http.MethodPost, "/v1/update", map[string]any{
		"experiment_name": "homepage",
		"arm_index":       1,
		"reward":          1.0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for i := 0; i < 20; i++ {
		w := doJSON(t, router, http.MethodPost, "/v1/select", map[string]any{
			"experiment_name": "homepage",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var sel datatypes.ArmSelectionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sel))
		assert.Equal(t, 1, sel.ArmIndex)
		assert.Equal(t, "B", sel.ArmName)
		assert.NotEmpty(t, sel.Timestamp)
	}
}

func TestSelectArm_UnknownExperiment(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/v1/select", map[string]any{
		"experiment_name": "ghost",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateReward_ZeroValuesAreValid(t *testing.T) {
	router, _ := newTestRouter(t)
	createExperiment(t, router, "exp", "ucb", nil)

	// Arm 0 and reward 0.0 must both pass the required bindings.
	w := doJSON(t, router, http.MethodPost, "/v1/update", map[string]any{
		"experiment_name": "exp",
		"arm_index":       0,
		"reward":          0.0,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpdateReward_Validation(t *testing.T) {
	router, _ := newTestRouter(t)
	createExperiment(t, router, "exp", "ucb", nil)

	// Reward outside [0,1] dies at the binding layer.
	w := doJSON(t, router, http.MethodPost, "/v1/update", map[string]any{
		"experiment_name": "exp",
		"arm_index":       0,
		"reward":          1.5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Out-of-range arm passes binding, rejected by the core.
	w = doJSON(t, router, http.MethodPost, "/v1/update", map[string]any{
		"experiment_name": "exp",
		"arm_index":       7,
		"reward":          0.5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown experiment.
	w = doJSON(t, router, http.MethodPost, "/v1/update", map[string]any{
		"experiment_name": "ghost",
		"arm_index":       0,
		"reward":          0.5,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =============================================================================
// Stats / List / Delete
// =============================================================================

func TestGetExperimentStats(t *testing.T) {
	router, _ := newTestRouter(t)
	createExperiment(t, router, "stats-exp", "thompson_sampling", nil)

	w := doJSON(t, router, http.MethodPost, "/v1/update", map[string]any{
		"experiment_name": "stats-exp",
		"arm_index":       1,
		"reward":          1.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/experiments/stats-exp/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats datatypes.ExperimentStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, "stats-exp", stats.ExperimentName)
	assert.Equal(t, "thompson_sampling", stats.Algorithm)
	assert.Equal(t, uint64(1), stats.TotalPulls)
	assert.Equal(t, 1.0, stats.TotalReward)
	assert.Equal(t, []uint64{0, 1}, stats.ArmCounts)
	require.Len(t, stats.Alpha, 2)
	assert.Equal(t, 2.0, stats.Alpha[1])
	assert.Nil(t, stats.Epsilon)
}

func TestGetExperimentStats_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/v1/experiments/ghost/stats", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListExperiments(t *testing.T) {
	router, _ := newTestRouter(t)
	createExperiment(t, router, "b-exp", "ucb", nil)
	createExperiment(t, router, "a-exp", "epsilon_greedy", nil)

	w := doJSON(t, router, http.MethodGet, "/v1/experiments", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.ListExperimentsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Experiments, 2)
	assert.Equal(t, "a-exp", resp.Experiments[0].Name)
	assert.Equal(t, "b-exp", resp.Experiments[1].Name)
}

func TestListExperiments_EmptyIsArray(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/v1/experiments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"experiments": []}`, w.Body.String())
}

func TestDeleteExperiment(t *testing.T) {
	router, _ := newTestRouter(t)
	createExperiment(t, router, "doomed", "ucb", nil)

	w := doJSON(t, router, http.MethodDelete, "/v1/experiments/doomed", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/v1/experiments/doomed", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/experiments/%s/stats", "doomed"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

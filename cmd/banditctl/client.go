// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/banditlabs/banditd/services/bandit/datatypes"
)

// apiError carries the HTTP status and the server's error message so
// callers can report both.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// apiClient talks to a banditd server over its JSON API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &errBody)
		if errBody.Error == "" {
			errBody.Error = strings.TrimSpace(string(data))
		}
		return &apiError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *apiClient) createExperiment(ctx context.Context, req datatypes.CreateExperimentRequest) error {
	return c.do(ctx, http.MethodPost, "/v1/experiments", req, nil)
}

func (c *apiClient) selectArm(ctx context.Context, experiment string) (datatypes.ArmSelectionResponse, error) {
	var out datatypes.ArmSelectionResponse
	err := c.do(ctx, http.MethodPost, "/v1/select",
		datatypes.SelectArmRequest{ExperimentName: experiment}, &out)
	return out, err
}

func (c *apiClient) updateReward(ctx context.Context, experiment string, arm int, reward float64) error {
	return c.do(ctx, http.MethodPost, "/v1/update", datatypes.UpdateRewardRequest{
		ExperimentName: experiment,
		ArmIndex:       &arm,
		Reward:         &reward,
	}, nil)
}

func (c *apiClient) stats(ctx context.Context, experiment string) (datatypes.ExperimentStatsResponse, error) {
	var out datatypes.ExperimentStatsResponse
	err := c.do(ctx, http.MethodGet, "/v1/experiments/"+experiment+"/stats", nil, &out)
	return out, err
}

func (c *apiClient) list(ctx context.Context) (datatypes.ListExperimentsResponse, error) {
	var out datatypes.ListExperimentsResponse
	err := c.do(ctx, http.MethodGet, "/v1/experiments", nil, &out)
	return out, err
}

func (c *apiClient) deleteExperiment(ctx context.Context, experiment string) error {
	return c.do(ctx, http.MethodDelete, "/v1/experiments/"+experiment, nil, nil)
}

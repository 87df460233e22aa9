// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the request and response shapes of the bandit
// HTTP API. Validation that can be expressed as gin binding tags lives
// here; the core re-validates semantic rules (arm range, name uniqueness)
// itself.
package datatypes

// CreateExperimentRequest creates a new experiment.
//
// Epsilon and C are optional; absent values fall back to the algorithm
// defaults (0.1 and 2.0). Arm order is significant: the index returned by
// /select refers to this slice.
type CreateExperimentRequest struct {
	ExperimentName string   `json:"experiment_name" binding:"required"`
	Arms           []string `json:"arms" binding:"required,min=2"`
	Algorithm      string   `json:"algorithm" binding:"required,oneof=epsilon_greedy ucb thompson_sampling"`
	Epsilon        *float64 `json:"epsilon" binding:"omitempty,gte=0,lte=1"`
	C              *float64 `json:"c" binding:"omitempty,gt=0"`
}

// SelectArmRequest asks for the next arm to serve.
type SelectArmRequest struct {
	ExperimentName string `json:"experiment_name" binding:"required"`
	UserID         string `json:"user_id"`
}

// UpdateRewardRequest reports the observed reward for a served arm.
//
// ArmIndex and Reward are pointers so the zero values (arm 0, reward 0.0)
// survive the required check; both are legitimate inputs.
type UpdateRewardRequest struct {
	ExperimentName string   `json:"experiment_name" binding:"required"`
	ArmIndex       *int     `json:"arm_index" binding:"required,gte=0"`
	Reward         *float64 `json:"reward" binding:"required,gte=0,lte=1"`
	UserID         string   `json:"user_id"`
}

// ArmSelectionResponse is the outcome of a select call.
type ArmSelectionResponse struct {
	ExperimentName string `json:"experiment_name"`
	ArmIndex       int    `json:"arm_index"`
	ArmName        string `json:"arm_name"`
	Timestamp      string `json:"timestamp"`
}

// ExperimentStatsResponse is the full statistics snapshot of one
// experiment. The epsilon, c, alpha and beta fields appear only for the
// algorithm they belong to.
type ExperimentStatsResponse struct {
	ExperimentName string    `json:"experiment_name"`
	Algorithm      string    `json:"algorithm"`
	CreatedAt      string    `json:"created_at"`
	TotalPulls     uint64    `json:"total_pulls"`
	TotalReward    float64   `json:"total_reward"`
	AverageReward  float64   `json:"average_reward"`
	ArmNames       []string  `json:"arm_names"`
	ArmCounts      []uint64  `json:"arm_counts"`
	ArmValues      []float64 `json:"arm_values"`

	Epsilon *float64  `json:"epsilon,omitempty"`
	C       *float64  `json:"c,omitempty"`
	Alpha   []float64 `json:"alpha,omitempty"`
	Beta    []float64 `json:"beta,omitempty"`
}

// ExperimentSummary is one row of the listing endpoint.
type ExperimentSummary struct {
	Name       string `json:"name"`
	Algorithm  string `json:"algorithm"`
	CreatedAt  string `json:"created_at"`
	TotalPulls uint64 `json:"total_pulls"`
}

// ListExperimentsResponse wraps the experiment listing.
type ListExperimentsResponse struct {
	Experiments []ExperimentSummary `json:"experiments"`
}

// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the gin handlers of the bandit HTTP API.
//
// Handlers are closures over the registry, translate between the
// datatypes wire shapes and the registry's domain types, and map the
// core's sentinel errors onto HTTP status codes with errors.Is. No
// business logic lives here.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/banditlabs/banditd/services/bandit/agent"
	"github.com/banditlabs/banditd/services/bandit/datatypes"
	"github.com/banditlabs/banditd/services/bandit/observability"
	"github.com/banditlabs/banditd/services/bandit/registry"
)

// statusForError maps core error kinds onto HTTP status codes. Callers
// branch on kind, never on message text.
func statusForError(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, agent.ErrInvalidConfig), errors.Is(err, agent.ErrInvalidArm):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

// CreateExperiment handles POST /v1/experiments.
func CreateExperiment(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CreateExperimentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		info, err := reg.Create(c.Request.Context(), registry.CreateParams{
			Name:      req.ExperimentName,
			ArmNames:  req.Arms,
			Algorithm: agent.Algorithm(req.Algorithm),
			Epsilon:   req.Epsilon,
			C:         req.C,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":    "experiment created",
			"name":       info.Name,
			"algorithm":  string(info.Algorithm),
			"created_at": info.CreatedAt.Format(time.RFC3339Nano),
		})
	}
}

// SelectArm handles POST /v1/select.
func SelectArm(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.SelectArmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sel, err := reg.SelectArm(req.ExperimentName)
		if err != nil {
			abortWithError(c, err)
			return
		}

		observability.TrackSelection(req.ExperimentName, sel.ArmName)

		c.JSON(http.StatusOK, datatypes.ArmSelectionResponse{
			ExperimentName: req.ExperimentName,
			ArmIndex:       sel.Index,
			ArmName:        sel.ArmName,
			Timestamp:      time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
}

// UpdateReward handles POST /v1/update.
//
// The binding layer enforces reward in [0,1]; the registry re-validates
// the arm index against the experiment's arm count.
func UpdateReward(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.UpdateRewardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := reg.UpdateReward(c.Request.Context(), req.ExperimentName, *req.ArmIndex, *req.Reward)
		if err != nil {
			abortWithError(c, err)
			return
		}

		observability.TrackReward(req.ExperimentName, *req.Reward)

		c.JSON(http.StatusOK, gin.H{"message": "reward updated"})
	}
}

// GetExperimentStats handles GET /v1/experiments/:name/stats.
func GetExperimentStats(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		s, err := reg.Stats(name)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, datatypes.ExperimentStatsResponse{
			ExperimentName: s.Name,
			Algorithm:      string(s.Algorithm),
			CreatedAt:      s.CreatedAt.Format(time.RFC3339Nano),
			TotalPulls:     s.TotalPulls,
			TotalReward:    s.TotalReward,
			AverageReward:  s.AverageReward,
			ArmNames:       s.ArmNames,
			ArmCounts:      s.Counts,
			ArmValues:      s.Values,
			Epsilon:        s.Epsilon,
			C:              s.C,
			Alpha:          s.Alpha,
			Beta:           s.Beta,
		})
	}
}

// ListExperiments handles GET /v1/experiments.
func ListExperiments(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		infos := reg.List()
		summaries := make([]datatypes.ExperimentSummary, 0, len(infos))
		for _, info := range infos {
			summaries = append(summaries, datatypes.ExperimentSummary{
				Name:       info.Name,
				Algorithm:  string(info.Algorithm),
				CreatedAt:  info.CreatedAt.Format(time.RFC3339Nano),
				TotalPulls: info.TotalPulls,
			})
		}
		c.JSON(http.StatusOK, datatypes.ListExperimentsResponse{Experiments: summaries})
	}
}

// DeleteExperiment handles DELETE /v1/experiments/:name.
func DeleteExperiment(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if err := reg.Delete(c.Request.Context(), name); err != nil {
			abortWithError(c, err)
			return
		}
		slog.Info("experiment deleted via API", "experiment", name)
		c.JSON(http.StatusOK, gin.H{"message": "experiment deleted", "name": name})
	}
}

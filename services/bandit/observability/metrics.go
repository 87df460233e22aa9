// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the bandit service.
//
// Metrics are exposed on /metrics and cover arm selections, reward
// ingestion, the live experiment count, and best-effort persistence
// failures. All operations are thread-safe via Prometheus's internal
// locking.
//
// Label cardinality is bounded by the number of experiments times their
// arms, both of which are operator-controlled and small.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	armSelectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mab_arm_selections_total",
		Help: "Total number of arm selections",
	}, []string{"experiment", "arm"})

	rewardsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mab_rewards_total",
		Help: "Total rewards received",
	}, []string{"experiment"})

	rewardDistribution = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mab_reward_value",
		Help:    "Distribution of reward values",
		Buckets: []float64{0.0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	}, []string{"experiment"})

	activeExperiments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mab_active_experiments",
		Help: "Number of active experiments",
	})

	persistenceFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mab_persistence_failures_total",
		Help: "Best-effort state writes that failed (in-memory state remains authoritative)",
	}, []string{"operation"})
)

// TrackSelection records one arm selection.
func TrackSelection(experiment, arm string) {
	armSelectionsTotal.WithLabelValues(experiment, arm).Inc()
}

// TrackReward records one reward observation.
func TrackReward(experiment string, reward float64) {
	rewardsTotal.WithLabelValues(experiment).Inc()
	rewardDistribution.WithLabelValues(experiment).Observe(reward)
}

// ExperimentAdded moves the active-experiments gauge up by one.
func ExperimentAdded() { activeExperiments.Inc() }

// ExperimentRemoved moves the active-experiments gauge down by one.
func ExperimentRemoved() { activeExperiments.Dec() }

// SetActiveExperiments resets the gauge, used after a startup reload.
func SetActiveExperiments(n int) { activeExperiments.Set(float64(n)) }

// TrackPersistenceFailure counts a failed best-effort state write.
// operation is one of "save", "delete".
func TrackPersistenceFailure(operation string) {
	persistenceFailuresTotal.WithLabelValues(operation).Inc()
}

// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
)

// EpsilonGreedy explores a uniformly random arm with probability epsilon
// and otherwise exploits the arm with the highest running mean, breaking
// ties uniformly at random among the tied arms.
type EpsilonGreedy struct {
	armStats
	epsilon float64
	rng     *rand.Rand
}

// NewEpsilonGreedy builds an epsilon-greedy agent.
// Epsilon must be in [0,1].
func NewEpsilonGreedy(armNames []string, epsilon float64, src rand.Source) (*EpsilonGreedy, error) {
	if err := validateArms(armNames); err != nil {
		return nil, err
	}
	if epsilon < 0 || epsilon > 1 {
		return nil, fmt.Errorf("%w: epsilon %v outside [0,1]", ErrInvalidConfig, epsilon)
	}
	return &EpsilonGreedy{
		armStats: newArmStats(armNames),
		epsilon:  epsilon,
		rng:      newRand(src),
	}, nil
}

// SelectArm draws u ~ U[0,1). Below epsilon it explores a random arm;
// otherwise it returns argmax(values) with a uniform random tie-break so
// a fresh experiment does not drift toward the lowest index.
func (a *EpsilonGreedy) SelectArm() int {
	if a.rng.Float64() < a.epsilon {
		return a.rng.Intn(a.numArms())
	}
	best := a.values[0]
	tied := []int{0}
	for i := 1; i < len(a.values); i++ {
		switch {
		case a.values[i] > best:
			best = a.values[i]
			tied = tied[:0]
			tied = append(tied, i)
		case a.values[i] == best:
			tied = append(tied, i)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}
	return tied[a.rng.Intn(len(tied))]
}

// Update records one observation.
func (a *EpsilonGreedy) Update(arm int, reward float64) error {
	return a.update(arm, reward)
}

// Stats returns a copy of the current statistics including epsilon.
func (a *EpsilonGreedy) Stats() Stats {
	s := a.baseStats(EpsilonGreedyAlgorithm)
	s.Epsilon = float64Ptr(a.epsilon)
	return s
}

// Snapshot serializes the full durable state.
func (a *EpsilonGreedy) Snapshot(now time.Time) Record {
	rec := a.baseRecord(EpsilonGreedyAlgorithm, now)
	rec.Epsilon = float64Ptr(a.epsilon)
	return rec
}

// Algorithm returns the algorithm tag.
func (a *EpsilonGreedy) Algorithm() Algorithm { return EpsilonGreedyAlgorithm }

// NumArms returns the fixed number of arms.
func (a *EpsilonGreedy) NumArms() int { return a.numArms() }

// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// paramFloor guards Beta sampling against degenerate parameters.
const paramFloor = 1e-5

// ThompsonSampling implements Beta-Bernoulli posterior sampling.
//
// Each arm carries Beta(alpha, beta) parameters, both starting at 1.0 (a
// uniform prior). Selection samples every arm's posterior and returns the
// argmax, so the same state can yield different selections across calls.
//
// Continuous rewards in [0,1] are folded into the Bernoulli posterior by a
// probabilistic trial: Update draws u ~ U[0,1) and counts a success
// (alpha+1) when reward > u, a failure (beta+1) otherwise. The reward is
// treated as a success probability. This is deliberately the trial
// variant, not a fixed reward > 0.5 threshold; a reward of exactly 1.0 or
// 0.0 updates deterministically either way, which the tests pin down.
type ThompsonSampling struct {
	armStats
	alpha []float64
	beta  []float64
	rng   *rand.Rand
}

// NewThompsonSampling builds a Thompson sampling agent with a uniform
// Beta(1,1) prior on every arm.
func NewThompsonSampling(armNames []string, src rand.Source) (*ThompsonSampling, error) {
	if err := validateArms(armNames); err != nil {
		return nil, err
	}
	n := len(armNames)
	alpha := make([]float64, n)
	beta := make([]float64, n)
	for i := 0; i < n; i++ {
		alpha[i] = 1.0
		beta[i] = 1.0
	}
	return &ThompsonSampling{
		armStats: newArmStats(armNames),
		alpha:    alpha,
		beta:     beta,
		rng:      newRand(src),
	}, nil
}

// SelectArm samples each arm's Beta posterior and returns the arm with the
// highest sample.
func (a *ThompsonSampling) SelectArm() int {
	best := 0
	bestSample := -1.0
	for i := range a.alpha {
		dist := distuv.Beta{
			Alpha: maxFloat(a.alpha[i], paramFloor),
			Beta:  maxFloat(a.beta[i], paramFloor),
			Src:   a.rng,
		}
		if s := dist.Rand(); s > bestSample {
			best = i
			bestSample = s
		}
	}
	return best
}

// Update records the observation, then runs the Bernoulli trial against
// the reward to move the arm's posterior.
func (a *ThompsonSampling) Update(arm int, reward float64) error {
	if err := a.update(arm, reward); err != nil {
		return err
	}
	if reward > a.rng.Float64() {
		a.alpha[arm]++
	} else {
		a.beta[arm]++
	}
	return nil
}

// Stats returns a copy of the current statistics including the posterior
// parameters.
func (a *ThompsonSampling) Stats() Stats {
	s := a.baseStats(ThompsonSamplingAlgorithm)
	s.Alpha = append([]float64(nil), a.alpha...)
	s.Beta = append([]float64(nil), a.beta...)
	return s
}

// Snapshot serializes the full durable state including the posterior
// parameters.
func (a *ThompsonSampling) Snapshot(now time.Time) Record {
	rec := a.baseRecord(ThompsonSamplingAlgorithm, now)
	rec.Alpha = append([]float64(nil), a.alpha...)
	rec.Beta = append([]float64(nil), a.beta...)
	return rec
}

// Algorithm returns the algorithm tag.
func (a *ThompsonSampling) Algorithm() Algorithm { return ThompsonSamplingAlgorithm }

// NumArms returns the fixed number of arms.
func (a *ThompsonSampling) NumArms() int { return a.numArms() }

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

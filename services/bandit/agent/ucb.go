// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
)

// countFloor guards the UCB bonus against division by a zero count when a
// pull has been dispatched but not yet reported.
const countFloor = 1e-5

// UCB implements the upper confidence bound algorithm with a two-phase
// state machine.
//
// Warm-up: every arm must be pulled once before the formula is used.
// SelectArm scans arms in index order and returns the first arm that has a
// zero count AND is not already pending. The pending set makes repeated
// SelectArm calls without interleaved Update calls enumerate every unpulled
// arm exactly once instead of handing the same arm to every concurrent
// caller. Pending is in-memory only; it is never persisted, because any
// arm with a zero count after a reload is eligible for warm-up again.
//
// Steady state (every count > 0):
//
//	ucb[i] = values[i] + c * sqrt(ln(max(total_pulls,1)) / max(counts[i], 1e-5))
//
// with a deterministic lowest-index tie-break. The warm-up check is
// re-evaluated on every call rather than latched, so a hypothetical counts
// reset would re-enter warm-up.
type UCB struct {
	armStats
	c       float64
	pending map[int]struct{}
}

// NewUCB builds a UCB agent. The exploration coefficient c must be
// positive.
func NewUCB(armNames []string, c float64, src rand.Source) (*UCB, error) {
	if err := validateArms(armNames); err != nil {
		return nil, err
	}
	if c <= 0 {
		return nil, fmt.Errorf("%w: c %v must be positive", ErrInvalidConfig, c)
	}
	_ = src // UCB is deterministic; the source is accepted for interface symmetry
	return &UCB{
		armStats: newArmStats(armNames),
		c:        c,
		pending:  make(map[int]struct{}),
	}, nil
}

// SelectArm returns the next warm-up arm, or argmax of the UCB scores once
// every arm has been observed.
func (a *UCB) SelectArm() int {
	for i, n := range a.counts {
		if n != 0 {
			continue
		}
		if _, dispatched := a.pending[i]; dispatched {
			continue
		}
		a.pending[i] = struct{}{}
		return i
	}

	logTotal := math.Log(float64(maxUint64(a.totalPulls, 1)))
	best := 0
	bestScore := math.Inf(-1)
	for i := range a.counts {
		score := a.values[i] + a.c*math.Sqrt(logTotal/math.Max(float64(a.counts[i]), countFloor))
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

// Update clears the arm's pending reservation, then records the
// observation. A retried arm becomes warm-up-eligible again only after
// being explicitly re-selected.
func (a *UCB) Update(arm int, reward float64) error {
	if arm >= 0 && arm < a.numArms() {
		delete(a.pending, arm)
	}
	return a.update(arm, reward)
}

// Stats returns a copy of the current statistics including c.
func (a *UCB) Stats() Stats {
	s := a.baseStats(UCBAlgorithm)
	s.C = float64Ptr(a.c)
	return s
}

// Snapshot serializes the full durable state. Pending is excluded.
func (a *UCB) Snapshot(now time.Time) Record {
	rec := a.baseRecord(UCBAlgorithm, now)
	rec.C = float64Ptr(a.c)
	return rec
}

// Algorithm returns the algorithm tag.
func (a *UCB) Algorithm() Algorithm { return UCBAlgorithm }

// NumArms returns the fixed number of arms.
func (a *UCB) NumArms() int { return a.numArms() }

// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newTestThompson(t *testing.T, arms ...string) *ThompsonSampling {
	t.Helper()
	a, err := NewThompsonSampling(arms, rand.NewSource(17))
	require.NoError(t, err)
	return a
}

func TestThompsonStartsWithUniformPrior(t *testing.T) {
	a := newTestThompson(t, "A", "B", "C")
	s := a.Stats()
	assert.Equal(t, []float64{1, 1, 1}, s.Alpha)
	assert.Equal(t, []float64{1, 1, 1}, s.Beta)
}

// TestThompsonUpdateBernoulliTrial pins the chosen update policy: the
// probabilistic trial (reward > u), not a 0.5 threshold. A reward of 1.0
// beats every u in [0,1) so alpha moves deterministically; a reward of
// 0.0 never does, so beta moves deterministically.
func TestThompsonUpdateBernoulliTrial(t *testing.T) {
	a := newTestThompson(t, "A", "B")

	require.NoError(t, a.Update(0, 1.0))
	s := a.Stats()
	assert.Equal(t, 2.0, s.Alpha[0])
	assert.Equal(t, 1.0, s.Beta[0])

	require.NoError(t, a.Update(0, 0.0))
	s = a.Stats()
	assert.Equal(t, 2.0, s.Alpha[0])
	assert.Equal(t, 2.0, s.Beta[0])
}

// TestThompsonPosteriorMassInvariant: alpha[i] + beta[i] == 2 + counts[i]
// holds for every arm after any update sequence, because each update moves
// exactly one of the two parameters by exactly one.
func TestThompsonPosteriorMassInvariant(t *testing.T) {
	a := newTestThompson(t, "A", "B", "C")

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 400; i++ {
		require.NoError(t, a.Update(rng.Intn(3), rng.Float64()))
	}

	s := a.Stats()
	for i := range s.Counts {
		assert.Equal(t, 2.0+float64(s.Counts[i]), s.Alpha[i]+s.Beta[i], "arm %d", i)
	}
}

func TestThompsonSelectReturnsValidIndex(t *testing.T) {
	a := newTestThompson(t, "A", "B", "C")
	for i := 0; i < 100; i++ {
		arm := a.SelectArm()
		require.GreaterOrEqual(t, arm, 0)
		require.Less(t, arm, 3)
	}
}

// TestThompsonConvergesOnBestArm: with one arm fed constant successes and
// the other constant failures, the posterior should overwhelmingly select
// the winner.
func TestThompsonConvergesOnBestArm(t *testing.T) {
	a := newTestThompson(t, "A", "B")

	for i := 0; i < 100; i++ {
		require.NoError(t, a.Update(0, 0.0))
		require.NoError(t, a.Update(1, 1.0))
	}

	wins := 0
	const draws = 200
	for i := 0; i < draws; i++ {
		if a.SelectArm() == 1 {
			wins++
		}
	}
	// Beta(101,1) vs Beta(1,101): arm 1 wins essentially always; leave
	// slack for the randomized draw.
	assert.Greater(t, wins, draws*9/10)
}

func TestThompsonStatsOmitOtherAlgorithmFields(t *testing.T) {
	a := newTestThompson(t, "A", "B")
	s := a.Stats()
	assert.Nil(t, s.Epsilon)
	assert.Nil(t, s.C)
	require.Len(t, s.Alpha, 2)
	require.Len(t, s.Beta, 2)
}

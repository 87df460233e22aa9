// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Record is the durable, algorithm-tagged serialization of an agent's full
// state. It is a pure data type: encoding to and from storage bytes is the
// store's job, and no locking happens here.
//
// The epsilon, c, alpha and beta fields are algorithm-specific extensions;
// exactly one group is set depending on Algorithm. The UCB pending set is
// transient and deliberately absent: after a reload any arm with a zero
// count is eligible for warm-up again, which reconstructs the same
// guarantee the pending set provides in memory.
type Record struct {
	NArms       int       `json:"n_arms"`
	ArmNames    []string  `json:"arm_names"`
	Algorithm   Algorithm `json:"algorithm"`
	Counts      []uint64  `json:"counts"`
	Values      []float64 `json:"values"`
	TotalReward float64   `json:"total_reward"`
	TotalPulls  uint64    `json:"total_pulls"`
	Timestamp   string    `json:"timestamp"`

	Epsilon *float64  `json:"epsilon,omitempty"`
	C       *float64  `json:"c,omitempty"`
	Alpha   []float64 `json:"alpha,omitempty"`
	Beta    []float64 `json:"beta,omitempty"`
}

// NamedRecord pairs an experiment name with its durable record, as
// returned by a store scan.
type NamedRecord struct {
	Name   string
	Record Record
}

// Validate checks the structural invariants every record must satisfy,
// regardless of algorithm. Returns an error wrapping ErrCorruptRecord.
func (r Record) Validate() error {
	if r.NArms < 2 {
		return fmt.Errorf("%w: n_arms %d", ErrCorruptRecord, r.NArms)
	}
	if len(r.ArmNames) != r.NArms {
		return fmt.Errorf("%w: %d arm names for %d arms", ErrCorruptRecord, len(r.ArmNames), r.NArms)
	}
	if len(r.Counts) != r.NArms || len(r.Values) != r.NArms {
		return fmt.Errorf("%w: counts/values length mismatch (counts=%d values=%d n_arms=%d)",
			ErrCorruptRecord, len(r.Counts), len(r.Values), r.NArms)
	}
	if _, err := ParseAlgorithm(string(r.Algorithm)); err != nil {
		return fmt.Errorf("%w: unknown algorithm %q", ErrCorruptRecord, r.Algorithm)
	}
	return nil
}

// FromRecord reconstructs an agent from its durable record.
//
// # Description
//
// Validates the record and rebuilds the matching agent variant with its
// base statistics and algorithm-specific fields restored. Missing epsilon
// or c fall back to the API defaults (matching what the service has always
// written for old records); missing or mis-sized alpha/beta for a
// thompson_sampling record are a hard corruption since the posterior
// cannot be recovered.
//
// # Inputs
//
//   - rec: The durable record to restore from.
//   - src: RNG seed source. Nil means OS entropy, as in New.
//
// # Outputs
//
//   - Agent: The restored agent.
//   - error: Wrapping ErrCorruptRecord when the record is unusable.
func FromRecord(rec Record, src rand.Source) (Agent, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	switch rec.Algorithm {
	case EpsilonGreedyAlgorithm:
		epsilon := DefaultEpsilon
		if rec.Epsilon != nil {
			epsilon = *rec.Epsilon
		}
		a, err := NewEpsilonGreedy(rec.ArmNames, epsilon, src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		a.restore(rec)
		return a, nil

	case UCBAlgorithm:
		c := DefaultC
		if rec.C != nil {
			c = *rec.C
		}
		a, err := NewUCB(rec.ArmNames, c, src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		a.restore(rec)
		return a, nil

	case ThompsonSamplingAlgorithm:
		if len(rec.Alpha) != rec.NArms || len(rec.Beta) != rec.NArms {
			return nil, fmt.Errorf("%w: alpha/beta length mismatch (alpha=%d beta=%d n_arms=%d)",
				ErrCorruptRecord, len(rec.Alpha), len(rec.Beta), rec.NArms)
		}
		a, err := NewThompsonSampling(rec.ArmNames, src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		a.restore(rec)
		copy(a.alpha, rec.Alpha)
		copy(a.beta, rec.Beta)
		return a, nil

	default:
		// Validate already rejected unknown algorithms.
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrCorruptRecord, rec.Algorithm)
	}
}

func float64Ptr(v float64) *float64 { return &v }

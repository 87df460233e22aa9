// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package agent implements the multi-armed bandit decision agents.
//
// # Description
//
// An Agent owns the per-arm statistics of one experiment and implements one
// of three selection algorithms:
//
//   - epsilon_greedy: fixed exploration rate, random tie-break on exploit
//   - ucb: upper confidence bound with a pending-set warm-up protocol
//   - thompson_sampling: Beta-Bernoulli posterior sampling
//
// All three satisfy the Agent interface and share the same base statistics
// (pull counts, incremental mean rewards, global accumulators).
//
// # Thread Safety
//
// Agents are NOT internally synchronized. The registry serializes all
// SelectArm/Update/Stats/Snapshot calls against a single agent under a
// per-experiment lock. Do not share an agent between goroutines without
// external locking.
package agent

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/rand"
)

// Algorithm identifies one of the supported selection algorithms.
// The set is closed; ParseAlgorithm rejects anything else.
type Algorithm string

const (
	EpsilonGreedyAlgorithm    Algorithm = "epsilon_greedy"
	UCBAlgorithm              Algorithm = "ucb"
	ThompsonSamplingAlgorithm Algorithm = "thompson_sampling"
)

// Default parameter values, matching the service's API defaults.
const (
	DefaultEpsilon = 0.1
	DefaultC       = 2.0
)

var (
	// ErrInvalidArm indicates an Update call with an out-of-range arm index.
	ErrInvalidArm = errors.New("arm index out of range")

	// ErrInvalidConfig indicates an experiment configuration that cannot
	// produce a valid agent: fewer than two arms, duplicate or empty arm
	// names, an unknown algorithm, or out-of-range parameters.
	ErrInvalidConfig = errors.New("invalid experiment configuration")

	// ErrCorruptRecord indicates a durable record that is missing required
	// fields, has inconsistent lengths, or names an unknown algorithm.
	ErrCorruptRecord = errors.New("corrupt experiment record")
)

// ParseAlgorithm validates an algorithm tag.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case EpsilonGreedyAlgorithm, UCBAlgorithm, ThompsonSamplingAlgorithm:
		return Algorithm(s), nil
	default:
		return "", fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, s)
	}
}

// Agent is the contract shared by all three algorithm variants.
//
// SelectArm never blocks on I/O and always returns an index in
// [0, NumArms()). Update records one observation and fails with
// ErrInvalidArm for an out-of-range index. Stats and Snapshot are pure
// reads.
type Agent interface {
	// SelectArm chooses the arm to serve next.
	SelectArm() int

	// Update records one observation for the given arm.
	Update(arm int, reward float64) error

	// Stats returns a copy of the current statistics.
	Stats() Stats

	// Snapshot serializes the full durable state. Transient fields (the
	// UCB pending set) are excluded.
	Snapshot(now time.Time) Record

	// Algorithm returns the algorithm tag.
	Algorithm() Algorithm

	// NumArms returns the fixed number of arms.
	NumArms() int
}

// Stats is a read-only snapshot of an agent's statistics.
//
// Epsilon, C, Alpha and Beta are populated only for the algorithm they
// belong to.
type Stats struct {
	Algorithm     Algorithm
	ArmNames      []string
	Counts        []uint64
	Values        []float64
	TotalPulls    uint64
	TotalReward   float64
	AverageReward float64

	Epsilon *float64
	C       *float64
	Alpha   []float64
	Beta    []float64
}

// Config describes a new agent to construct.
type Config struct {
	Algorithm Algorithm
	ArmNames  []string

	// Epsilon is the exploration rate for epsilon_greedy. Must be in [0,1].
	Epsilon float64

	// C is the exploration coefficient for ucb. Must be positive.
	C float64

	// Src seeds the agent's randomness. Nil means seed from the OS entropy
	// pool. Tests pass a fixed source for determinism.
	Src rand.Source
}

// New constructs an agent for the configured algorithm.
//
// Fails with ErrInvalidConfig for fewer than two arms, duplicate or empty
// arm names, an unknown algorithm, or out-of-range parameters.
func New(cfg Config) (Agent, error) {
	if err := validateArms(cfg.ArmNames); err != nil {
		return nil, err
	}
	switch cfg.Algorithm {
	case EpsilonGreedyAlgorithm:
		return NewEpsilonGreedy(cfg.ArmNames, cfg.Epsilon, cfg.Src)
	case UCBAlgorithm:
		return NewUCB(cfg.ArmNames, cfg.C, cfg.Src)
	case ThompsonSamplingAlgorithm:
		return NewThompsonSampling(cfg.ArmNames, cfg.Src)
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, cfg.Algorithm)
	}
}

func validateArms(armNames []string) error {
	if len(armNames) < 2 {
		return fmt.Errorf("%w: need at least 2 arms, got %d", ErrInvalidConfig, len(armNames))
	}
	seen := make(map[string]struct{}, len(armNames))
	for _, name := range armNames {
		if name == "" {
			return fmt.Errorf("%w: empty arm name", ErrInvalidConfig)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate arm name %q", ErrInvalidConfig, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// newRand builds the agent RNG, seeding from the OS entropy pool when no
// source is supplied.
func newRand(src rand.Source) *rand.Rand {
	if src == nil {
		var b [8]byte
		if _, err := cryptorand.Read(b[:]); err != nil {
			// Entropy pool read failures are effectively impossible on the
			// platforms we support; fall back to the wall clock.
			return rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
		}
		src = rand.NewSource(binary.LittleEndian.Uint64(b[:]))
	}
	return rand.New(src)
}

// armStats is the base statistics model embedded by every algorithm.
type armStats struct {
	armNames    []string
	counts      []uint64
	values      []float64
	totalPulls  uint64
	totalReward float64
}

func newArmStats(armNames []string) armStats {
	names := make([]string, len(armNames))
	copy(names, armNames)
	return armStats{
		armNames: names,
		counts:   make([]uint64, len(armNames)),
		values:   make([]float64, len(armNames)),
	}
}

// update applies one observation using the incremental mean:
//
//	values[arm] += (reward - values[arm]) / counts[arm]   (after increment)
//
// which reproduces the arithmetic mean for any finite update sequence.
func (s *armStats) update(arm int, reward float64) error {
	if arm < 0 || arm >= len(s.counts) {
		return fmt.Errorf("%w: arm %d, experiment has %d arms", ErrInvalidArm, arm, len(s.counts))
	}
	s.counts[arm]++
	s.totalPulls++
	s.totalReward += reward
	s.values[arm] += (reward - s.values[arm]) / float64(s.counts[arm])
	return nil
}

func (s *armStats) numArms() int { return len(s.counts) }

func (s *armStats) baseStats(algo Algorithm) Stats {
	return Stats{
		Algorithm:     algo,
		ArmNames:      append([]string(nil), s.armNames...),
		Counts:        append([]uint64(nil), s.counts...),
		Values:        append([]float64(nil), s.values...),
		TotalPulls:    s.totalPulls,
		TotalReward:   s.totalReward,
		AverageReward: s.totalReward / float64(maxUint64(s.totalPulls, 1)),
	}
}

func (s *armStats) baseRecord(algo Algorithm, now time.Time) Record {
	return Record{
		NArms:       len(s.counts),
		ArmNames:    append([]string(nil), s.armNames...),
		Algorithm:   algo,
		Counts:      append([]uint64(nil), s.counts...),
		Values:      append([]float64(nil), s.values...),
		TotalReward: s.totalReward,
		TotalPulls:  s.totalPulls,
		Timestamp:   now.UTC().Format(time.RFC3339Nano),
	}
}

// restore overwrites the base statistics from a validated record.
func (s *armStats) restore(rec Record) {
	copy(s.counts, rec.Counts)
	copy(s.values, rec.Values)
	s.totalPulls = rec.TotalPulls
	s.totalReward = rec.TotalReward
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

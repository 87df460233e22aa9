// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package registry owns the experiment directory: the name-to-agent
// mapping, its lifecycle, and its concurrency model.
//
// # Locking
//
// Two lock levels, never held together across a blocking call:
//
//   - A directory RWMutex guards the map itself. Create, Delete and List
//     take it for structural mutations and existence checks; lookups take
//     the read side briefly.
//   - Each experiment carries its own Mutex. SelectArm and UpdateReward on
//     the same name are linearized under it (the UCB warm-up scan and its
//     pending-set mutation must be atomic); operations on distinct names
//     never contend.
//
// Persistence happens after the experiment lock is released: the registry
// snapshots the agent's state under the lock and flushes the snapshot to
// the store afterwards. Two concurrent updates can therefore write their
// snapshots out of order; last-writer-wins is fine because each snapshot
// is self-consistent. A failed write is logged and counted, never
// propagated: the in-memory model is authoritative until restart.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/banditlabs/banditd/services/bandit/agent"
	"github.com/banditlabs/banditd/services/bandit/observability"
)

var (
	// ErrAlreadyExists indicates a create call with a taken name.
	ErrAlreadyExists = errors.New("experiment already exists")

	// ErrNotFound indicates an operation on an unknown experiment name.
	ErrNotFound = errors.New("experiment not found")
)

// Store is the durable persistence the registry writes through. The
// badgerstore package provides the production implementation; tests use
// it in-memory.
type Store interface {
	Save(ctx context.Context, name string, rec agent.Record) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]agent.NamedRecord, error)
}

// CreateParams describes a new experiment.
type CreateParams struct {
	Name      string
	ArmNames  []string
	Algorithm agent.Algorithm

	// Epsilon and C are optional; nil means the algorithm's default.
	Epsilon *float64
	C       *float64
}

// Selection is the outcome of one SelectArm call.
type Selection struct {
	Index   int
	ArmName string
}

// Info is the listing view of an experiment.
type Info struct {
	Name       string
	Algorithm  agent.Algorithm
	CreatedAt  time.Time
	TotalPulls uint64
}

// Stats is an experiment's full statistics snapshot.
type Stats struct {
	Name      string
	CreatedAt time.Time
	agent.Stats
}

type experiment struct {
	mu        sync.Mutex
	agent     agent.Agent
	createdAt time.Time

	// armNames is immutable after construction; reads need no lock.
	armNames []string
}

// Registry manages all live experiments.
type Registry struct {
	mu          sync.RWMutex
	experiments map[string]*experiment

	store  Store
	logger *slog.Logger
}

// New builds an empty registry. Call LoadAll at process start to recover
// durable experiments.
func New(store Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		experiments: make(map[string]*experiment),
		store:       store,
		logger:      logger,
	}
}

// Create registers a new experiment and persists its initial state.
//
// Fails with ErrAlreadyExists when the name is taken, or with
// agent.ErrInvalidConfig for an empty name, fewer than two arms,
// duplicate arm names, an unknown algorithm, or bad parameters.
func (r *Registry) Create(ctx context.Context, p CreateParams) (Info, error) {
	if p.Name == "" {
		return Info{}, fmt.Errorf("%w: empty experiment name", agent.ErrInvalidConfig)
	}

	cfg := agent.Config{
		Algorithm: p.Algorithm,
		ArmNames:  p.ArmNames,
		Epsilon:   agent.DefaultEpsilon,
		C:         agent.DefaultC,
	}
	if p.Epsilon != nil {
		cfg.Epsilon = *p.Epsilon
	}
	if p.C != nil {
		cfg.C = *p.C
	}

	// Construct outside the directory lock; only registration needs it.
	a, err := agent.New(cfg)
	if err != nil {
		return Info{}, err
	}

	now := time.Now().UTC()
	e := &experiment{agent: a, createdAt: now, armNames: append([]string(nil), p.ArmNames...)}

	r.mu.Lock()
	if _, taken := r.experiments[p.Name]; taken {
		r.mu.Unlock()
		return Info{}, fmt.Errorf("%w: %q", ErrAlreadyExists, p.Name)
	}
	r.experiments[p.Name] = e
	r.mu.Unlock()

	observability.ExperimentAdded()
	r.persist(ctx, p.Name, a.Snapshot(now))

	r.logger.Info("experiment created",
		"experiment", p.Name, "algorithm", p.Algorithm, "arms", len(p.ArmNames))

	return Info{Name: p.Name, Algorithm: a.Algorithm(), CreatedAt: now}, nil
}

// SelectArm chooses the next arm for an experiment.
func (r *Registry) SelectArm(name string) (Selection, error) {
	e, err := r.lookup(name)
	if err != nil {
		return Selection{}, err
	}

	e.mu.Lock()
	idx := e.agent.SelectArm()
	e.mu.Unlock()

	return Selection{Index: idx, ArmName: e.armNames[idx]}, nil
}

// UpdateReward records one observation and flushes the new state.
//
// Fails with ErrNotFound or agent.ErrInvalidArm. A persistence failure is
// logged and counted but does not roll back the in-memory update.
func (r *Registry) UpdateReward(ctx context.Context, name string, arm int, reward float64) error {
	e, err := r.lookup(name)
	if err != nil {
		return err
	}

	e.mu.Lock()
	err = e.agent.Update(arm, reward)
	var rec agent.Record
	if err == nil {
		rec = e.agent.Snapshot(time.Now())
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	r.persist(ctx, name, rec)
	return nil
}

// Stats returns the full statistics snapshot for an experiment.
func (r *Registry) Stats(name string) (Stats, error) {
	e, err := r.lookup(name)
	if err != nil {
		return Stats{}, err
	}

	e.mu.Lock()
	s := e.agent.Stats()
	created := e.createdAt
	e.mu.Unlock()

	return Stats{Name: name, CreatedAt: created, Stats: s}, nil
}

// List returns the listing view of every experiment, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	names := make([]string, 0, len(r.experiments))
	entries := make([]*experiment, 0, len(r.experiments))
	for name, e := range r.experiments {
		names = append(names, name)
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]Info, 0, len(names))
	for i, e := range entries {
		e.mu.Lock()
		out = append(out, Info{
			Name:       names[i],
			Algorithm:  e.agent.Algorithm(),
			CreatedAt:  e.createdAt,
			TotalPulls: e.agent.Stats().TotalPulls,
		})
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Delete removes an experiment from the directory and from durable
// storage, so a restart cannot resurrect it.
func (r *Registry) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	_, ok := r.experiments[name]
	if ok {
		delete(r.experiments, name)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	observability.ExperimentRemoved()
	if err := r.store.Delete(ctx, name); err != nil {
		observability.TrackPersistenceFailure("delete")
		r.logger.Warn("failed to delete durable record",
			"experiment", name, "error", err)
	}
	r.logger.Info("experiment deleted", "experiment", name)
	return nil
}

// LoadAll reconstructs the registry from durable storage. It is the sole
// recovery path after a restart and expects an empty registry.
//
// Records that fail semantic validation (missing fields, unknown
// algorithm) are logged and skipped; one bad record must not take down
// the load. Returns the number of experiments restored.
func (r *Registry) LoadAll(ctx context.Context) (int, error) {
	records, err := r.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("scan experiment store: %w", err)
	}

	loaded := 0
	for _, nr := range records {
		a, err := agent.FromRecord(nr.Record, nil)
		if err != nil {
			r.logger.Warn("skipping corrupt experiment record",
				"experiment", nr.Name, "error", err)
			continue
		}

		// The record's timestamp is the last save time; the original
		// creation time is not persisted separately, so it stands in.
		created, err := time.Parse(time.RFC3339Nano, nr.Record.Timestamp)
		if err != nil {
			created = time.Now().UTC()
		}

		r.mu.Lock()
		r.experiments[nr.Name] = &experiment{
			agent:     a,
			createdAt: created,
			armNames:  append([]string(nil), nr.Record.ArmNames...),
		}
		r.mu.Unlock()
		loaded++
	}

	r.mu.RLock()
	observability.SetActiveExperiments(len(r.experiments))
	r.mu.RUnlock()

	r.logger.Info("experiments loaded from storage",
		"loaded", loaded, "skipped", len(records)-loaded)
	return loaded, nil
}

func (r *Registry) lookup(name string) (*experiment, error) {
	r.mu.RLock()
	e, ok := r.experiments[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e, nil
}

// persist flushes a snapshot outside any experiment lock. Failures are
// warnings: durability is best-effort per write, not transactional.
func (r *Registry) persist(ctx context.Context, name string, rec agent.Record) {
	if err := r.store.Save(ctx, name, rec); err != nil {
		observability.TrackPersistenceFailure("save")
		r.logger.Warn("failed to persist experiment state",
			"experiment", name, "error", err)
	}
}

// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/banditlabs/banditd/services/bandit/agent"
)

// keyPrefix namespaces experiment records inside the shared database.
const keyPrefix = "experiment/"

// ErrRecordNotFound indicates no durable record exists for the name.
var ErrRecordNotFound = errors.New("experiment record not found")

// Store persists one JSON-encoded agent.Record per experiment name.
//
// # Description
//
// Store is a pure persistence layer: it does no locking and no semantic
// validation beyond JSON decoding. The registry snapshots agent state
// under its own lock and calls Save afterwards; last-writer-wins is
// acceptable because every snapshot is self-consistent.
//
// # Thread Safety
//
// Safe for concurrent use; BadgerDB transactions provide isolation.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	stopGC chan struct{}
}

// Open creates the store, opening (or creating) the underlying database.
//
// This is the one startup path allowed to fail fatally: if the storage
// directory cannot be created or the database cannot be opened there is
// no durable state to serve from.
func Open(cfg Config, logger *slog.Logger) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, logger: logger}
	if cfg.GCInterval > 0 {
		s.stopGC = make(chan struct{})
		go runGC(db, cfg.GCInterval, cfg.GCDiscardRatio, logger, s.stopGC)
	}
	return s, nil
}

// Close stops background GC and closes the database.
func (s *Store) Close() error {
	if s.stopGC != nil {
		close(s.stopGC)
		s.stopGC = nil
	}
	return s.db.Close()
}

// Save writes the record for an experiment, replacing any previous one.
func (s *Store) Save(ctx context.Context, name string, rec agent.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record for %q: %w", name, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(name), raw)
	})
	if err != nil {
		return fmt.Errorf("save record for %q: %w", name, err)
	}
	return nil
}

// Load reads the record for an experiment. Returns ErrRecordNotFound when
// no record exists.
func (s *Store) Load(ctx context.Context, name string) (agent.Record, error) {
	var rec agent.Record
	if err := ctx.Err(); err != nil {
		return rec, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return rec, fmt.Errorf("%w: %q", ErrRecordNotFound, name)
	case err != nil:
		return rec, fmt.Errorf("load record for %q: %w", name, err)
	}
	return rec, nil
}

// Delete removes the record for an experiment. Deleting a missing record
// is not an error; the registry has already decided the experiment
// existed.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(name))
	})
	if err != nil {
		return fmt.Errorf("delete record for %q: %w", name, err)
	}
	return nil
}

// List returns every decodable experiment record in the store.
//
// Values that fail to decode are logged and skipped rather than failing
// the whole scan; one corrupt value must not block recovery of the rest.
func (s *Store) List(ctx context.Context) ([]agent.NamedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []agent.NamedRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			name := string(item.Key()[len(keyPrefix):])
			var rec agent.Record
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				if s.logger != nil {
					s.logger.Warn("skipping undecodable experiment record",
						"experiment", name, "error", err)
				}
				continue
			}
			out = append(out, agent.NamedRecord{Name: name, Record: rec})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list experiment records: %w", err)
	}
	return out, nil
}

func key(name string) []byte {
	return []byte(keyPrefix + name)
}

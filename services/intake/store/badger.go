// Copyright (C) 2025 Prizm Real Estate Concierge Service
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// keyPrefix namespaces conversation records inside the database.
const keyPrefix = "conversation/"

// BadgerConfig configures the embedded BadgerDB store.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files. Required unless InMemory.
	Path string

	// InMemory disables disk persistence. Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability. The harness
	// writes one small record per turn, so the cost is negligible.
	SyncWrites bool
}

// BadgerStore is a StateStore backed by an embedded BadgerDB instance.
// Records are stored as JSON under "conversation/{subject}".
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the store at cfg.Path.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("badger store: path is required")
	}
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger store: failed to open database: %w", err)
	}
	slog.Info("Opened conversation store", "path", cfg.Path, "in_memory", cfg.InMemory)
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Load(ctx context.Context, subject string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var record map[string]any
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(subject))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger store: failed to load record for %q: %w", subject, err)
	}
	return record, nil
}

func (b *BadgerStore) Save(ctx context.Context, subject string, record map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("badger store: failed to encode record for %q: %w", subject, err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(subject), payload)
	})
	if err != nil {
		return fmt.Errorf("badger store: failed to save record for %q: %w", subject, err)
	}
	return nil
}

func (b *BadgerStore) Delete(ctx context.Context, subject string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(subject))
	})
	if err != nil {
		return fmt.Errorf("badger store: failed to delete record for %q: %w", subject, err)
	}
	return nil
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

func recordKey(subject string) []byte {
	return []byte(keyPrefix + subject)
}

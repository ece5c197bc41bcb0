// Copyright (C) 2025 Prizm Real Estate Concierge Service
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store persists conversation records between turns.
//
// Persistence is the caller's concern, not the engine's: the engine takes a
// prior record and returns a new one, and anything that can hold a flat
// key-value record works. This package provides the two stores the local
// harness uses: an in-memory map for tests and a BadgerDB store for
// durable local state keyed by subject identity.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no record exists for a subject. A fresh
// conversation starts from a nil record, so callers typically treat this
// as "pass nil previous state".
var ErrNotFound = errors.New("no conversation record for subject")

// StateStore persists one flat conversation record per subject identity.
type StateStore interface {
	// Load returns the record for the subject, or ErrNotFound.
	Load(ctx context.Context, subject string) (map[string]any, error)

	// Save overwrites the record for the subject.
	Save(ctx context.Context, subject string, record map[string]any) error

	// Delete removes the subject's record. Deleting a missing record is
	// not an error.
	Delete(ctx context.Context, subject string) error

	// Close releases store resources.
	Close() error
}

// MemoryStore is an in-process StateStore. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]any
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]map[string]any)}
}

func (m *MemoryStore) Load(_ context.Context, subject string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[subject]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers cannot mutate the stored record in place.
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, subject string, record map[string]any) error {
	copied := make(map[string]any, len(record))
	for k, v := range record {
		copied[k] = v
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[subject] = copied
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, subject)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

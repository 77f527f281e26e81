// Copyright (c) 2026 Lehae. All rights reserved.

package tokenstore

import (
	"context"
	"sync"

	"github.com/lehae/lehae-go/internal/platform/apperr"
)

// MemoryStore implements [Store] without persistence.
//
// Used by the test suite and by one-shot invocations where credentials
// should not outlive the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value for key, or apperr.NotFound when absent.
func (store *MemoryStore) Get(_ context.Context, key string) (string, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	value, ok := store.values[key]
	if !ok {
		return "", apperr.NotFound("State key " + key)
	}
	return value, nil
}

// Set writes the value for key.
func (store *MemoryStore) Set(_ context.Context, key string, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.values[key] = value
	return nil
}

// Remove deletes the key. Absent keys are a no-op.
func (store *MemoryStore) Remove(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.values, key)
	return nil
}

// Clear deletes every key.
func (store *MemoryStore) Clear(_ context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.values = make(map[string]string)
	return nil
}

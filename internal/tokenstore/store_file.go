// Copyright (c) 2026 Lehae. All rights reserved.

package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/lehae/lehae-go/internal/platform/apperr"
	"github.com/lehae/lehae-go/internal/platform/constants"
)

// FileStore implements [Store] on top of a single JSON document.
//
// Every write is flushed synchronously via a temp-file rename, so the state
// survives crashes and is never observed half-written by another process.
// Tokens are credentials: the file and its directory are created 0600/0700.
type FileStore struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// DefaultStatePath returns the conventional state file location under the
// user config directory.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("tokenstore: no user config directory: %w", err)
	}
	return filepath.Join(dir, "lehae", "state.json"), nil
}

// NewFileStore opens (or creates) the state file at path.
func NewFileStore(path string) (*FileStore, error) {
	store := &FileStore{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("tokenstore: read state file: %w", err)
	}

	// A corrupt state file is treated as empty rather than fatal: the worst
	// outcome is that the user has to log in again.
	if err := json.Unmarshal(data, &store.values); err != nil {
		store.values = make(map[string]string)
	}

	return store, nil
}

// Get returns the value for key, or apperr.NotFound when absent.
func (store *FileStore) Get(_ context.Context, key string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	value, ok := store.values[key]
	if !ok {
		return "", apperr.NotFound("State key " + key)
	}
	return value, nil
}

// Set writes the value for key and flushes the file.
func (store *FileStore) Set(_ context.Context, key string, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.values[key] = value
	return store.flush()
}

// Remove deletes the key and flushes the file. Absent keys are a no-op.
func (store *FileStore) Remove(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.values[key]; !ok {
		return nil
	}
	delete(store.values, key)
	return store.flush()
}

// Clear deletes every known state key and flushes the file.
func (store *FileStore) Clear(_ context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, key := range constants.StateKeys {
		delete(store.values, key)
	}
	return store.flush()
}

// flush writes the document atomically. Callers must hold the mutex.
func (store *FileStore) flush() error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o700); err != nil {
		return fmt.Errorf("tokenstore: create state directory: %w", err)
	}

	data, err := json.MarshalIndent(store.values, "", "  ")
	if err != nil {
		return fmt.Errorf("tokenstore: encode state: %w", err)
	}

	tmp := store.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("tokenstore: write state file: %w", err)
	}
	if err := os.Rename(tmp, store.path); err != nil {
		return fmt.Errorf("tokenstore: replace state file: %w", err)
	}

	return nil
}

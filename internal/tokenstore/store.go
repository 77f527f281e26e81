// Copyright (c) 2026 Lehae. All rights reserved.

/*
Package tokenstore implements the durable key/value holder for client state.

It persists the credential pair (access/refresh token), the last authenticated
username, and the language preference across process restarts — the role the
browser's localStorage plays for the Lehae web client.

Architecture:

  - Store: the storage contract, written to only by the session layer
    (auth keys) and the CLI (language key).
  - FileStore: JSON document under the user config directory (default).
  - MemoryStore: ephemeral, for tests and one-shot invocations.
  - RedisStore: shared state for multi-process deployments.

No expiry metadata is stored. Token lifetime is handled reactively by the
transport's 401 protocol, never by local timestamps.
*/
package tokenstore

import (
	"context"
)

// # Storage Contract

// Store defines the durable key/value contract for client state.
//
// Implementations must be safe for concurrent use: the transport layer reads
// tokens from arbitrary goroutines while the session layer writes them.
type Store interface {

	// Get returns the value for key, or apperr.NotFound when the key is absent.
	Get(context context.Context, key string) (string, error)

	// Set writes the value for key. Writes are immediately visible to all
	// readers of the same store.
	Set(context context.Context, key string, value string) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(context context.Context, key string) error

	// Clear deletes every known state key.
	Clear(context context.Context) error
}

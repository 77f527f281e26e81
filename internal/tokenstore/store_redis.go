// Copyright (c) 2026 Lehae. All rights reserved.

package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lehae/lehae-go/internal/platform/apperr"
	"github.com/lehae/lehae-go/internal/platform/constants"
)

// keyPrefix namespaces client state inside a shared Redis instance.
const keyPrefix = "lehae:state:"

// RedisStore implements [Store] on Redis, letting several processes share
// one authenticated session.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-connected Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

/*
Get retrieves the value for a state key.

Description: Returns apperr.NotFound if the key is absent.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - string: Stored value
  - error: apperr.NotFound or connectivity errors
*/
func (store *RedisStore) Get(context context.Context, key string) (string, error) {

	value, err := store.client.Get(context, keyPrefix+key).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("State key " + key)
		}
		return "", fmt.Errorf("redis_state_get_failed: %w", err)
	}

	return value, nil
}

/*
Set stores a state value without TTL. Token lifetime is managed by the
server, not by local expiry.

Parameters:
  - context: context.Context
  - key: string
  - value: string

Returns:
  - error: Storage failures
*/
func (store *RedisStore) Set(context context.Context, key string, value string) error {

	if err := store.client.Set(context, keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis_state_set_failed: %w", err)
	}

	return nil
}

/*
Remove deletes a state key. Absent keys are a no-op.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - error: Deletion failures
*/
func (store *RedisStore) Remove(context context.Context, key string) error {

	if err := store.client.Del(context, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis_state_remove_failed: %w", err)
	}

	return nil
}

/*
Clear deletes every known state key in a single round trip.

Parameters:
  - context: context.Context

Returns:
  - error: Deletion failures
*/
func (store *RedisStore) Clear(context context.Context) error {

	keys := make([]string, 0, len(constants.StateKeys))
	for _, key := range constants.StateKeys {
		keys = append(keys, keyPrefix+key)
	}

	if err := store.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("redis_state_clear_failed: %w", err)
	}

	return nil
}

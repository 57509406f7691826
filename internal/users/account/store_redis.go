// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package account

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/constants"
)

// # Presence Store

// RedisPresenceStore implements [PresenceStore] using Redis TTL keys.
type RedisPresenceStore struct {
	client *redis.Client
}

// NewPresenceStore creates a new Redis implementation of the [PresenceStore].
func NewPresenceStore(client *redis.Client) *RedisPresenceStore {
	return &RedisPresenceStore{client: client}
}

// presenceKey builds the namespaced Redis key for a user's presence flag.
func presenceKey(userID string) string {
	return constants.RedisPrefixPresence + userID
}

/*
Ping marks the user as online by setting (or refreshing) their presence key.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Redis failures
*/
func (store *RedisPresenceStore) Ping(context context.Context, userID string) error {
	err := store.client.Set(context, presenceKey(userID), "1", constants.PresenceTTL).Err()
	if err != nil {
		return fmt.Errorf("redis_presence_ping_failed: %w", err)
	}
	return nil
}

/*
IsOnline reports whether the user's presence key exists.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - bool: true while the key has not expired
  - error: Redis failures
*/
func (store *RedisPresenceStore) IsOnline(context context.Context, userID string) (bool, error) {
	count, err := store.client.Exists(context, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_presence_check_failed: %w", err)
	}
	return count > 0, nil
}

/*
Clear removes the user's presence key immediately.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Redis failures
*/
func (store *RedisPresenceStore) Clear(context context.Context, userID string) error {
	err := store.client.Del(context, presenceKey(userID)).Err()
	if err != nil {
		return fmt.Errorf("redis_presence_clear_failed: %w", err)
	}
	return nil
}

// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/myduka/gateway/internal/platform/constants"
	"github.com/myduka/gateway/internal/platform/ctxutil"
)

// RedisStore is the production [Store]: sessions survive gateway restarts
// and are shared across instances.
//
// # Key Taxonomy
//
// Records live under "session:credentials:<sid>" with an idle TTL, so
// abandoned browser sessions expire on their own.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save atomically overwrites the session record and refreshes its TTL.
func (store *RedisStore) Save(ctx context.Context, sid, accessToken string, user *UserProfile, refreshToken string) error {
	payload, err := json.Marshal(Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
	if err != nil {
		return fmt.Errorf("session: failed to encode session: %w", err)
	}

	if err := store.client.Set(ctx, store.key(sid), payload, constants.SessionTTL).Err(); err != nil {
		return fmt.Errorf("session: failed to save session: %w", err)
	}

	return nil
}

// Clear removes the session record. Clearing an absent session is a no-op.
func (store *RedisStore) Clear(ctx context.Context, sid string) error {
	if err := store.client.Del(ctx, store.key(sid)).Err(); err != nil {
		return fmt.Errorf("session: failed to clear session: %w", err)
	}

	return nil
}

// Read returns the current session snapshot.
//
// Read never fails: a missing key, a Redis fault, or a corrupt blob all
// yield the zero (unauthenticated) Session. Faults are logged so
// operators can see a degraded store even though requests keep flowing.
func (store *RedisStore) Read(ctx context.Context, sid string) Session {
	payload, err := store.client.Get(ctx, store.key(sid)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "session_store_read_degraded",
				slog.String("session_id", sid),
				slog.Any("error", err),
			)
		}
		return Session{}
	}

	var snapshot Session
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "session_store_corrupt_record",
			slog.String("session_id", sid),
			slog.Any("error", err),
		)
		return Session{}
	}

	return snapshot
}

// key maps a session ID to its Redis key.
func (store *RedisStore) key(sid string) string {
	return constants.RedisPrefixCredentials + sid
}

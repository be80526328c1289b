// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package session

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process [Store] for development and tests.
//
// # Codec Parity
//
// Sessions are kept as serialized JSON blobs, exactly like the Redis
// implementation, so both stores share one codec and one set of
// corruption semantics. Sessions are lost on process restart.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Save atomically overwrites the session record for the given session ID.
func (store *MemoryStore) Save(_ context.Context, sid, accessToken string, user *UserProfile, refreshToken string) error {
	payload, err := json.Marshal(Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
	if err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.blobs[sid] = payload

	return nil
}

// Clear removes the session record. Clearing an absent session is a no-op.
func (store *MemoryStore) Clear(_ context.Context, sid string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.blobs, sid)

	return nil
}

// Read returns the current session snapshot.
// Missing or corrupt data yields the zero (unauthenticated) Session.
func (store *MemoryStore) Read(_ context.Context, sid string) Session {
	store.mu.RLock()
	payload, found := store.blobs[sid]
	store.mu.RUnlock()

	if !found {
		return Session{}
	}

	var snapshot Session
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return Session{}
	}

	return snapshot
}

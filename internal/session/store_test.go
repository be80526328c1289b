// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *UserProfile {
	storeID := int64(9)
	return &UserProfile{
		ID:        1,
		FirstName: "Akinyi",
		LastName:  "Odhiambo",
		Email:     "akinyi@myduka.app",
		Role:      "clerk",
		StoreID:   &storeID,
	}
}

/*
TestMemoryStore_RoundTrip verifies that Save persists all three credential
fields together and Read returns them unchanged.
*/
func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, "sid-1", "access-token", testProfile(), "refresh-token"))

	snapshot := store.Read(ctx, "sid-1")
	assert.True(t, snapshot.Authenticated())
	assert.Equal(t, "access-token", snapshot.AccessToken)
	assert.Equal(t, "refresh-token", snapshot.RefreshToken)
	require.NotNil(t, snapshot.User)
	assert.Equal(t, "akinyi@myduka.app", snapshot.User.Email)
	require.NotNil(t, snapshot.User.StoreID)
	assert.Equal(t, int64(9), *snapshot.User.StoreID)
}

/*
TestMemoryStore_ReadMissing verifies that an unknown session ID yields the
zero, unauthenticated session rather than an error.
*/
func TestMemoryStore_ReadMissing(t *testing.T) {
	store := NewMemoryStore()

	snapshot := store.Read(context.Background(), "never-seen")
	assert.False(t, snapshot.Authenticated())
	assert.Empty(t, snapshot.AccessToken)
	assert.Nil(t, snapshot.User)
}

/*
TestMemoryStore_ClearIdempotent verifies Clear removes the record and that
clearing an absent session succeeds.
*/
func TestMemoryStore_ClearIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, "sid-1", "access-token", testProfile(), ""))
	require.NoError(t, store.Clear(ctx, "sid-1"))
	assert.False(t, store.Read(ctx, "sid-1").Authenticated())

	// Second clear of the same (now absent) session must also succeed.
	require.NoError(t, store.Clear(ctx, "sid-1"))

	// Clearing a session that never existed is equally fine.
	require.NoError(t, store.Clear(ctx, "ghost"))
}

/*
TestMemoryStore_CorruptRecord verifies that unparseable stored data is
treated as an absent session instead of crashing or failing the read.
*/
func TestMemoryStore_CorruptRecord(t *testing.T) {
	store := NewMemoryStore()
	store.blobs["sid-1"] = []byte("{not valid json")

	snapshot := store.Read(context.Background(), "sid-1")
	assert.False(t, snapshot.Authenticated())
	assert.Equal(t, Session{}, snapshot)
}

/*
TestSession_Authenticated verifies that both a token and a profile are
required before a session counts as authenticated.
*/
func TestSession_Authenticated(t *testing.T) {
	assert.False(t, Session{}.Authenticated())
	assert.False(t, Session{AccessToken: "token"}.Authenticated())
	assert.False(t, Session{User: testProfile()}.Authenticated())
	assert.True(t, Session{AccessToken: "token", User: testProfile()}.Authenticated())
}

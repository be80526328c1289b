// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myduka/gateway/internal/session"
)

// fakeIdentity is a call-counting IdentityVerifier double. Setting block
// makes Me wait until release is closed, to simulate a slow upstream.
type fakeIdentity struct {
	mu      sync.Mutex
	calls   int
	profile *session.UserProfile
	err     error

	block   bool
	release chan struct{}
}

func (f *fakeIdentity) Me(ctx context.Context, accessToken string) (*session.UserProfile, error) {
	f.mu.Lock()
	f.calls++
	blocked := f.block
	f.mu.Unlock()

	if blocked {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeIdentity) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func merchantProfile() *session.UserProfile {
	return &session.UserProfile{
		ID:        1,
		FirstName: "Mumbi",
		LastName:  "Kamau",
		Email:     "mumbi@myduka.app",
		Role:      "merchant",
	}
}

/*
TestRestorer_NoToken_NoNetwork verifies that an empty session resolves to
Unauthenticated without touching the identity upstream.
*/
func TestRestorer_NoToken_NoNetwork(t *testing.T) {
	store := session.NewMemoryStore()
	identity := &fakeIdentity{}
	restorer := session.NewRestorer(store, identity)

	outcome := restorer.Begin(context.Background(), "sid-1", "/clerk")

	assert.Equal(t, session.StateUnauthenticated, outcome.State)
	assert.Equal(t, "/", outcome.RedirectTo)
	assert.Zero(t, identity.callCount())
	assert.Equal(t, session.StateUnauthenticated, restorer.StateFor("sid-1"))
}

/*
TestRestorer_NoToken_AlreadyAtEntry verifies that no redirect is issued
when the browser is already on the entry route.
*/
func TestRestorer_NoToken_AlreadyAtEntry(t *testing.T) {
	restorer := session.NewRestorer(session.NewMemoryStore(), &fakeIdentity{})

	outcome := restorer.Begin(context.Background(), "sid-1", "/")

	assert.Equal(t, session.StateUnauthenticated, outcome.State)
	assert.Empty(t, outcome.RedirectTo)
}

/*
TestRestorer_Success_FromEntry verifies a successful restoration refreshes
the stored profile, keeps the tokens, and redirects entry → dashboard.
*/
func TestRestorer_Success_FromEntry(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "sid-1", "stored-token", &session.UserProfile{
		ID: 1, Email: "mumbi@myduka.app", Role: "merchant", FirstName: "stale",
	}, "refresh-token"))

	identity := &fakeIdentity{profile: merchantProfile()}
	restorer := session.NewRestorer(store, identity)

	outcome := restorer.Begin(ctx, "sid-1", "/")

	assert.Equal(t, session.StateAuthenticated, outcome.State)
	assert.Equal(t, "/merchant", outcome.RedirectTo)
	assert.Equal(t, 1, identity.callCount())

	// The profile was refreshed but both tokens were kept.
	snapshot := store.Read(ctx, "sid-1")
	assert.Equal(t, "stored-token", snapshot.AccessToken)
	assert.Equal(t, "refresh-token", snapshot.RefreshToken)
	assert.Equal(t, "Mumbi", snapshot.User.FirstName)
}

/*
TestRestorer_Success_DeepLink verifies that a user restoring on a deep
link stays there: no redirect away from their current location.
*/
func TestRestorer_Success_DeepLink(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "sid-1", "stored-token", merchantProfile(), ""))

	restorer := session.NewRestorer(store, &fakeIdentity{profile: merchantProfile()})

	outcome := restorer.Begin(ctx, "sid-1", "/reports")

	assert.Equal(t, session.StateAuthenticated, outcome.State)
	assert.Empty(t, outcome.RedirectTo)
}

/*
TestRestorer_Failure_ClearsAndRedirects verifies any identity error clears
the stored session and bounces the browser to the entry route.
*/
func TestRestorer_Failure_ClearsAndRedirects(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "sid-1", "expired-token", merchantProfile(), ""))

	identity := &fakeIdentity{err: errors.New("token expired")}
	restorer := session.NewRestorer(store, identity)

	outcome := restorer.Begin(ctx, "sid-1", "/merchant")

	assert.Equal(t, session.StateUnauthenticated, outcome.State)
	assert.Equal(t, "/", outcome.RedirectTo)
	assert.False(t, store.Read(ctx, "sid-1").Authenticated())
}

/*
TestRestorer_Idempotent verifies that a second Begin for the same session
replays the terminal outcome without a second identity call.
*/
func TestRestorer_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "sid-1", "stored-token", merchantProfile(), ""))

	identity := &fakeIdentity{profile: merchantProfile()}
	restorer := session.NewRestorer(store, identity)

	first := restorer.Begin(ctx, "sid-1", "/")
	second := restorer.Begin(ctx, "sid-1", "/")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, identity.callCount())
}

/*
TestRestorer_CancelDiscardsLateResolution covers the unmount race: the
identity call resolves after Cancel, and its result must be suppressed:
no store mutation, no redirect.
*/
func TestRestorer_CancelDiscardsLateResolution(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "sid-1", "stored-token", merchantProfile(), ""))

	identity := &fakeIdentity{
		profile: merchantProfile(),
		block:   true,
		release: make(chan struct{}),
	}
	restorer := session.NewRestorer(store, identity)

	outcomes := make(chan session.Outcome, 1)
	go func() {
		outcomes <- restorer.Begin(ctx, "sid-1", "/")
	}()

	// Wait until the cycle is in flight, then cancel it.
	require.Eventually(t, func() bool {
		return restorer.StateFor("sid-1") == session.StateRestoring
	}, time.Second, 5*time.Millisecond)

	restorer.Cancel("sid-1")
	close(identity.release)

	outcome := <-outcomes
	assert.True(t, outcome.Discarded)
	assert.Empty(t, outcome.RedirectTo)

	// The stored session was not mutated by the suppressed resolution.
	snapshot := store.Read(ctx, "sid-1")
	assert.Equal(t, "stored-token", snapshot.AccessToken)

	// After cancellation the session is back to square one.
	assert.Equal(t, session.StateBooting, restorer.StateFor("sid-1"))
}

/*
TestRestorer_LoginDuringRestore verifies that a login completing while the
identity call is in flight wins: the late resolution must not overwrite
the newer credentials or trigger navigation.
*/
func TestRestorer_LoginDuringRestore(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "sid-1", "old-token", merchantProfile(), ""))

	identity := &fakeIdentity{
		err:     errors.New("old token expired"),
		block:   true,
		release: make(chan struct{}),
	}
	restorer := session.NewRestorer(store, identity)

	outcomes := make(chan session.Outcome, 1)
	go func() {
		outcomes <- restorer.Begin(ctx, "sid-1", "/")
	}()

	require.Eventually(t, func() bool {
		return restorer.StateFor("sid-1") == session.StateRestoring
	}, time.Second, 5*time.Millisecond)

	// A fresh login replaces the stored credentials mid-flight.
	require.NoError(t, store.Save(ctx, "sid-1", "new-token", merchantProfile(), "new-refresh"))
	close(identity.release)

	outcome := <-outcomes
	assert.True(t, outcome.Discarded)
	assert.Empty(t, outcome.RedirectTo)

	// The failed restoration did not clear the fresh login.
	snapshot := store.Read(ctx, "sid-1")
	assert.Equal(t, "new-token", snapshot.AccessToken)
	assert.Equal(t, session.StateAuthenticated, restorer.StateFor("sid-1"))
}

/*
TestRestorer_ConcurrentBegin verifies that a Begin racing an in-flight
cycle joins it (observing Restoring) instead of doubling the identity call.
*/
func TestRestorer_ConcurrentBegin(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "sid-1", "stored-token", merchantProfile(), ""))

	identity := &fakeIdentity{
		profile: merchantProfile(),
		block:   true,
		release: make(chan struct{}),
	}
	restorer := session.NewRestorer(store, identity)

	outcomes := make(chan session.Outcome, 1)
	go func() {
		outcomes <- restorer.Begin(ctx, "sid-1", "/")
	}()

	require.Eventually(t, func() bool {
		return restorer.StateFor("sid-1") == session.StateRestoring
	}, time.Second, 5*time.Millisecond)

	racing := restorer.Begin(ctx, "sid-1", "/")
	assert.Equal(t, session.StateRestoring, racing.State)

	close(identity.release)
	outcome := <-outcomes

	assert.Equal(t, session.StateAuthenticated, outcome.State)
	assert.Equal(t, 1, identity.callCount())
}

/*
TestRestorer_StateFor_UnknownSession verifies sessions with no cycle yet
report Booting.
*/
func TestRestorer_StateFor_UnknownSession(t *testing.T) {
	restorer := session.NewRestorer(session.NewMemoryStore(), &fakeIdentity{})
	assert.Equal(t, session.StateBooting, restorer.StateFor("never-seen"))
}

// gatedStore wraps a Store and blocks the first Read until released, to
// simulate a slow backing store.
type gatedStore struct {
	session.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Read(ctx context.Context, sid string) session.Session {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.Store.Read(ctx, sid)
}

/*
TestRestorer_SlowStoreDoesNotBlockOtherSessions verifies that a stalled
store read inside one session's restoration cycle does not serialize
StateFor and Cancel for everyone: guard checks for unrelated sessions must
keep answering while one session's read is stuck.
*/
func TestRestorer_SlowStoreDoesNotBlockOtherSessions(t *testing.T) {
	ctx := context.Background()
	inner := session.NewMemoryStore()
	require.NoError(t, inner.Save(ctx, "sid-1", "stored-token", merchantProfile(), ""))

	gate := &gatedStore{
		Store:   inner,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	identity := &fakeIdentity{profile: merchantProfile()}
	restorer := session.NewRestorer(gate, identity)

	outcomes := make(chan session.Outcome, 1)
	go func() {
		outcomes <- restorer.Begin(ctx, "sid-1", "/")
	}()

	// The cycle is now stuck inside the store read.
	<-gate.entered

	// StateFor and Cancel must answer promptly; run them off the test
	// goroutine so a regression surfaces as a failure, not a test hang.
	answered := make(chan session.State, 1)
	go func() {
		restorer.Cancel("sid-2")
		answered <- restorer.StateFor("sid-1")
	}()

	select {
	case state := <-answered:
		assert.Equal(t, session.StateRestoring, state)
	case <-time.After(time.Second):
		t.Fatal("StateFor blocked behind a stalled store read")
	}

	close(gate.release)
	outcome := <-outcomes
	assert.Equal(t, session.StateAuthenticated, outcome.State)
	assert.Equal(t, "/merchant", outcome.RedirectTo)
}

/*
TestRestorer_CancelDuringStoreRead verifies a cancellation landing while
the initial store read is stalled discards the cycle's resolution.
*/
func TestRestorer_CancelDuringStoreRead(t *testing.T) {
	ctx := context.Background()
	inner := session.NewMemoryStore()

	gate := &gatedStore{
		Store:   inner,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	identity := &fakeIdentity{}
	restorer := session.NewRestorer(gate, identity)

	outcomes := make(chan session.Outcome, 1)
	go func() {
		outcomes <- restorer.Begin(ctx, "sid-1", "/clerk")
	}()

	<-gate.entered
	restorer.Cancel("sid-1")
	close(gate.release)

	outcome := <-outcomes
	assert.True(t, outcome.Discarded)
	assert.Empty(t, outcome.RedirectTo)
	assert.Zero(t, identity.callCount())
}

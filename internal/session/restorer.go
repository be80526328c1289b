// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/myduka/gateway/internal/platform/ctxutil"
	"github.com/myduka/gateway/internal/roles"
)

// IdentityVerifier validates a stored access token against the identity
// upstream and returns the current profile.
//
// Network failures and auth rejections are deliberately indistinguishable
// to the Restorer: any error means the stored credentials cannot be
// trusted and the session fails closed.
type IdentityVerifier interface {
	Me(ctx context.Context, accessToken string) (*UserProfile, error)
}

// Outcome is the result of one restoration cycle.
type Outcome struct {
	// State is the lifecycle state reached by the cycle.
	State State `json:"state"`

	// RedirectTo is the path the client shell should navigate to,
	// empty when the user stays where they are.
	RedirectTo string `json:"redirect_to,omitempty"`

	// Discarded marks a resolution that arrived after cancellation or
	// after the session changed underneath the cycle. A discarded
	// outcome caused no store mutation and must trigger no navigation.
	Discarded bool `json:"-"`
}

// cycle tracks one restoration attempt for one session ID.
type cycle struct {
	state      State
	generation uint64
	done       bool
	outcome    Outcome
}

// Restorer drives the per-session boot state machine:
//
//	Booting → Restoring → {Authenticated, Unauthenticated}
//
// # Invariants
//
//   - At most one cycle runs per session ID at a time; a Begin that races
//     an in-flight cycle observes Restoring instead of starting another.
//   - A cycle makes at most one identity call.
//   - A resolution that lost a race (cancellation, or a login/logout that
//     changed the stored token while the identity call was in flight)
//     is discarded without mutating the store.
type Restorer struct {
	store    Store
	identity IdentityVerifier

	mu          sync.Mutex
	cycles      map[string]*cycle
	generations map[string]uint64
}

// NewRestorer creates a Restorer over the given store and identity upstream.
func NewRestorer(store Store, identity IdentityVerifier) *Restorer {
	return &Restorer{
		store:       store,
		identity:    identity,
		cycles:      make(map[string]*cycle),
		generations: make(map[string]uint64),
	}
}

// StateFor reports the boot state of a session ID.
// Sessions with no observed cycle are Booting.
func (r *Restorer) StateFor(sid string) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, found := r.cycles[sid]
	if !found {
		return StateBooting
	}
	return current.state
}

// Cancel discards the in-flight cycle for a session ID, if any.
//
// The identity call itself is not interrupted; its eventual resolution is
// suppressed by the generation check. A later Begin starts a fresh cycle.
func (r *Restorer) Cancel(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generations[sid]++
	delete(r.cycles, sid)
}

// Begin runs (or joins) the restoration cycle for a session ID.
//
// # Flow
//  1. A finished cycle replays its outcome; an in-flight cycle reports
//     Restoring. Otherwise a new cycle starts.
//  2. No stored token → terminal Unauthenticated, no identity call;
//     redirect to the entry route unless the browser is already there.
//  3. Stored token → exactly one Me call. While it is in flight the
//     state is Restoring.
//  4. On resolution, the result is discarded if the cycle was cancelled,
//     the caller's context expired, or the stored token changed.
//  5. Success persists the refreshed profile (tokens kept) and redirects
//     to the role dashboard only from the entry route. Failure clears the
//     store and redirects to the entry route unless already there.
func (r *Restorer) Begin(ctx context.Context, sid, currentPath string) Outcome {

	// ── 1. Claim the cycle ────────────────────────────────────────────────
	r.mu.Lock()
	if existing, found := r.cycles[sid]; found {
		defer r.mu.Unlock()
		if existing.done {
			return existing.outcome
		}
		return Outcome{State: StateRestoring}
	}

	current := &cycle{
		state:      StateRestoring,
		generation: r.generations[sid],
	}
	r.cycles[sid] = current
	r.mu.Unlock()

	// ── 2. Short-circuit: nothing stored ──────────────────────────────────
	// Store reads are network round-trips in production, so they run
	// outside the lock; the generation check on re-entry suppresses
	// anything that went stale meanwhile.
	snapshot := r.store.Read(ctx, sid)
	if snapshot.AccessToken == "" {
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.cycles[sid] != current || r.generations[sid] != current.generation {
			return Outcome{Discarded: true}
		}

		outcome := Outcome{State: StateUnauthenticated}
		if currentPath != roles.EntryRoute {
			outcome.RedirectTo = roles.EntryRoute
		}
		current.state = StateUnauthenticated
		current.done = true
		current.outcome = outcome
		return outcome
	}

	// ── 3. Revalidate against the identity upstream ───────────────────────
	profile, err := r.identity.Me(ctx, snapshot.AccessToken)
	latest := r.store.Read(ctx, sid)

	// Store writes below stay under the lock: Cancel-then-Save callers
	// (login, logout) serialize against the commit, so a suppressed cycle
	// can never wipe credentials saved after its cancellation.
	r.mu.Lock()
	defer r.mu.Unlock()

	// ── 4. Suppress stale resolutions ─────────────────────────────────────
	if ctx.Err() != nil || r.cycles[sid] != current || r.generations[sid] != current.generation {
		return Outcome{Discarded: true}
	}

	if latest.AccessToken != snapshot.AccessToken {
		// A login or logout won the race. The session already reflects the
		// newer action; report its state but suppress any navigation.
		current.done = true
		if latest.Authenticated() {
			current.state = StateAuthenticated
		} else {
			current.state = StateUnauthenticated
		}
		current.outcome = Outcome{State: current.state, Discarded: true}
		return current.outcome
	}

	// ── 5. Commit the resolution ──────────────────────────────────────────
	if err != nil {
		if clearErr := r.store.Clear(ctx, sid); clearErr != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "session_clear_degraded",
				slog.String("session_id", sid),
				slog.Any("error", clearErr),
			)
		}

		outcome := Outcome{State: StateUnauthenticated}
		if currentPath != roles.EntryRoute {
			outcome.RedirectTo = roles.EntryRoute
		}
		current.state = StateUnauthenticated
		current.done = true
		current.outcome = outcome
		return outcome
	}

	if saveErr := r.store.Save(ctx, sid, snapshot.AccessToken, profile, snapshot.RefreshToken); saveErr != nil {
		// Degraded persistence: the refreshed profile is lost but the
		// verified identity is still good for this boot.
		ctxutil.GetLogger(ctx).WarnContext(ctx, "session_save_degraded",
			slog.String("session_id", sid),
			slog.Any("error", saveErr),
		)
	}

	outcome := Outcome{State: StateAuthenticated}
	if currentPath == roles.EntryRoute {
		outcome.RedirectTo = roles.Normalize(profile.Role).DashboardRoute()
	}
	current.state = StateAuthenticated
	current.done = true
	current.outcome = outcome
	return outcome
}

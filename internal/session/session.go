// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

/*
Package session owns the server-side browser session lifecycle.

Each browser is identified by an opaque session-ID cookie. Everything the
gateway knows about that browser (access token, refresh token, last-known
profile) lives in a [Store] keyed by that session ID, and is restored at
shell boot by the [Restorer] state machine.

# Architecture

  - Session: the persisted credential snapshot for one browser.
  - Store: the persistence contract (memory and Redis implementations).
  - Restorer: the per-session boot state machine that revalidates stored
    credentials against the identity upstream exactly once per boot.
*/
package session

// UserProfile is the last-known identity snapshot for a browser session.
//
// The Role is stored raw as reported by the identity upstream; it is
// normalized via the roles package at every decision point, never here.
type UserProfile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	StoreID   *int64 `json:"store_id,omitempty"`
}

// Session is the credential snapshot persisted per browser.
//
// The three fields always change together: Save overwrites the whole
// record atomically so a reader can never observe a token from one login
// paired with a profile from another.
type Session struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *UserProfile `json:"user"`
}

// Authenticated reports whether the session holds a usable identity:
// both a non-empty access token and a profile must be present.
func (s Session) Authenticated() bool {
	return s.AccessToken != "" && s.User != nil
}

// State is the lifecycle phase of a browser session during shell boot.
type State string

const (
	// StateBooting means no restoration cycle has been observed yet.
	StateBooting State = "booting"

	// StateRestoring means a restoration cycle is in flight.
	StateRestoring State = "restoring"

	// StateUnauthenticated is terminal: no usable credentials.
	StateUnauthenticated State = "unauthenticated"

	// StateAuthenticated is terminal: credentials verified this boot.
	StateAuthenticated State = "authenticated"
)

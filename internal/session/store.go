// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package session

import "context"

// Store persists one [Session] per browser session ID.
//
// # Contract
//
//   - Save overwrites the entire record in a single write; partial updates
//     are impossible by construction.
//   - Clear is idempotent: clearing an absent session succeeds.
//   - Read never fails: missing, corrupt, or unreadable data yields the
//     zero (unauthenticated) Session. Callers treat the result as a
//     point-in-time snapshot, not a live view.
//
// Save may return an error on storage faults; callers log it and degrade
// (the browser simply behaves logged-out) rather than abort the request.
type Store interface {
	Save(ctx context.Context, sid, accessToken string, user *UserProfile, refreshToken string) error
	Clear(ctx context.Context, sid string) error
	Read(ctx context.Context, sid string) Session
}

// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

/*
Package guard provides the route-level authorization middleware for
protected dashboard and feature routes.

# Architecture

The guard is a routing convenience, not a security boundary: it decides
synchronously from the stored session snapshot whether to render, redirect,
or hold. It performs no network calls: the Restorer has already validated
the credentials (or soon will), and the backing API enforces real
authorization on every data request.

# Decision Table

  - Restoration pending or in flight → neutral 202 "restoring" (no
    protected content, no redirect flicker).
  - No usable session → 303 to the entry route.
  - Role outside the permitted set → 303 to the user's own dashboard.
  - Otherwise → serve the protected handler.
*/
package guard

import (
	"net/http"

	"github.com/myduka/gateway/internal/platform/ctxutil"
	"github.com/myduka/gateway/internal/platform/respond"
	"github.com/myduka/gateway/internal/roles"
	"github.com/myduka/gateway/internal/session"
)

// BootState reports the restoration state of a browser session.
// Satisfied by [*session.Restorer]; fakes stand in for it in tests.
type BootState interface {
	StateFor(sid string) session.State
}

// restoringBody is the neutral payload returned while a restoration is
// pending; the client shell keeps its splash up and retries.
type restoringBody struct {
	Status string `json:"status"`
}

// Protect builds a chi middleware guarding a route for the permitted roles.
//
// An empty permitted set means "any authenticated role".
//
// # Flow
//  1. While this session is Booting with stored credentials, or actively
//     Restoring, answer 202; the outcome is not yet decidable.
//  2. Read the session snapshot once; all decisions below use it.
//  3. Unauthenticated → 303 See Other to the entry route.
//  4. Authenticated but not permitted → 303 to the user's own dashboard,
//     so a clerk deep-linking to /admin lands somewhere useful.
func Protect(store session.Store, boot BootState, permitted ...roles.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			sid := ctxutil.GetSessionID(request.Context())

			// ── 1. Hold while the outcome is undecided ────────────────────
			switch boot.StateFor(sid) {
			case session.StateRestoring:
				respond.Accepted(writer, restoringBody{Status: "restoring"})
				return
			case session.StateBooting:
				// Credentials exist but the shell has not run its
				// restoration yet: holding avoids a redirect flicker
				// for a user who is about to be authenticated.
				if store.Read(request.Context(), sid).AccessToken != "" {
					respond.Accepted(writer, restoringBody{Status: "restoring"})
					return
				}
			}

			// ── 2. Snapshot the session ───────────────────────────────────
			snapshot := store.Read(request.Context(), sid)

			// ── 3. Authentication gate ────────────────────────────────────
			if !snapshot.Authenticated() {
				http.Redirect(writer, request, roles.EntryRoute, http.StatusSeeOther)
				return
			}

			// ── 4. Role gate ──────────────────────────────────────────────
			role := roles.Normalize(snapshot.User.Role)
			if len(permitted) > 0 && !role.In(permitted...) {
				http.Redirect(writer, request, role.DashboardRoute(), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

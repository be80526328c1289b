// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package guard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myduka/gateway/internal/guard"
	"github.com/myduka/gateway/internal/platform/ctxutil"
	"github.com/myduka/gateway/internal/roles"
	"github.com/myduka/gateway/internal/session"
)

// fixedBoot is a BootState double reporting one state for every session.
type fixedBoot struct {
	state session.State
}

func (f fixedBoot) StateFor(string) session.State { return f.state }

// serve runs a guarded request for the given session ID and returns the recorder.
func serve(t *testing.T, store session.Store, boot guard.BootState, sid, path string, permitted ...roles.Role) *httptest.ResponseRecorder {
	t.Helper()

	protected := guard.Protect(store, boot, permitted...)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("protected content"))
		},
	))

	request := httptest.NewRequest(http.MethodGet, path, nil)
	request = request.WithContext(ctxutil.WithSessionID(request.Context(), sid))

	recorder := httptest.NewRecorder()
	protected.ServeHTTP(recorder, request)
	return recorder
}

func saveSession(t *testing.T, store session.Store, sid, role string) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), sid, "valid-token", &session.UserProfile{
		ID: 1, Email: "user@myduka.app", Role: role,
	}, ""))
}

/*
TestProtect_Unauthenticated verifies a session without credentials is
bounced to the entry route with 303 and sees no protected content.
*/
func TestProtect_Unauthenticated(t *testing.T) {
	store := session.NewMemoryStore()
	boot := fixedBoot{state: session.StateUnauthenticated}

	recorder := serve(t, store, boot, "sid-1", "/merchant", roles.RoleMerchant)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/", recorder.Header().Get("Location"))
	assert.NotContains(t, recorder.Body.String(), "protected content")
}

/*
TestProtect_RoleMatrix exercises the full role × route permission table.
*/
func TestProtect_RoleMatrix(t *testing.T) {
	tests := []struct {
		name         string
		role         string
		path         string
		permitted    []roles.Role
		wantStatus   int
		wantLocation string
	}{
		{"merchant_on_merchant", "merchant", "/merchant", []roles.Role{roles.RoleMerchant}, http.StatusOK, ""},
		{"admin_on_admin", "admin", "/admin", []roles.Role{roles.RoleAdmin}, http.StatusOK, ""},
		{"clerk_on_clerk", "clerk", "/clerk", []roles.Role{roles.RoleClerk}, http.StatusOK, ""},
		{"clerk_on_admin", "clerk", "/admin", []roles.Role{roles.RoleAdmin}, http.StatusSeeOther, "/clerk"},
		{"admin_on_merchant", "admin", "/merchant", []roles.Role{roles.RoleMerchant}, http.StatusSeeOther, "/admin"},
		{"merchant_on_clerk", "merchant", "/clerk", []roles.Role{roles.RoleClerk}, http.StatusSeeOther, "/merchant"},
		{"merchant_on_reports", "merchant", "/reports", []roles.Role{roles.RoleMerchant, roles.RoleAdmin}, http.StatusOK, ""},
		{"admin_on_reports", "admin", "/reports", []roles.Role{roles.RoleMerchant, roles.RoleAdmin}, http.StatusOK, ""},
		{"clerk_on_reports", "clerk", "/reports", []roles.Role{roles.RoleMerchant, roles.RoleAdmin}, http.StatusSeeOther, "/clerk"},
		// Unknown roles fail closed to clerk.
		{"unknown_role_on_admin", "superuser", "/admin", []roles.Role{roles.RoleAdmin}, http.StatusSeeOther, "/clerk"},
		{"unknown_role_on_clerk", "superuser", "/clerk", []roles.Role{roles.RoleClerk}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			saveSession(t, store, "sid-1", tt.role)
			boot := fixedBoot{state: session.StateAuthenticated}

			recorder := serve(t, store, boot, "sid-1", tt.path, tt.permitted...)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, recorder.Header().Get("Location"))
			}
		})
	}
}

/*
TestProtect_EmptyPermittedSet verifies that an empty set admits any
authenticated role but still bounces anonymous sessions.
*/
func TestProtect_EmptyPermittedSet(t *testing.T) {
	store := session.NewMemoryStore()
	saveSession(t, store, "sid-1", "clerk")
	boot := fixedBoot{state: session.StateAuthenticated}

	recorder := serve(t, store, boot, "sid-1", "/anything")
	assert.Equal(t, http.StatusOK, recorder.Code)

	anonymous := serve(t, store, boot, "sid-2", "/anything")
	assert.Equal(t, http.StatusSeeOther, anonymous.Code)
	assert.Equal(t, "/", anonymous.Header().Get("Location"))
}

/*
TestProtect_RestoringGate verifies that a session whose restoration is in
flight is held with 202: no content, no redirect.
*/
func TestProtect_RestoringGate(t *testing.T) {
	store := session.NewMemoryStore()
	saveSession(t, store, "sid-1", "merchant")
	boot := fixedBoot{state: session.StateRestoring}

	recorder := serve(t, store, boot, "sid-1", "/merchant", roles.RoleMerchant)

	assert.Equal(t, http.StatusAccepted, recorder.Code)
	assert.Empty(t, recorder.Header().Get("Location"))
	assert.Contains(t, recorder.Body.String(), "restoring")
	assert.NotContains(t, recorder.Body.String(), "protected content")
}

/*
TestProtect_BootingWithStoredToken verifies that before the shell has run
its restoration, stored credentials hold the guard (202) instead of either
rendering or redirecting prematurely.
*/
func TestProtect_BootingWithStoredToken(t *testing.T) {
	store := session.NewMemoryStore()
	saveSession(t, store, "sid-1", "admin")
	boot := fixedBoot{state: session.StateBooting}

	recorder := serve(t, store, boot, "sid-1", "/admin", roles.RoleAdmin)

	assert.Equal(t, http.StatusAccepted, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "protected content")
}

/*
TestProtect_BootingWithoutToken verifies a booting session with nothing
stored redirects straight to entry; there is nothing to wait for.
*/
func TestProtect_BootingWithoutToken(t *testing.T) {
	store := session.NewMemoryStore()
	boot := fixedBoot{state: session.StateBooting}

	recorder := serve(t, store, boot, "sid-1", "/clerk", roles.RoleClerk)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/", recorder.Header().Get("Location"))
}

/*
TestProtect_ExpiredMidSession covers the snapshot semantics: once the
store is cleared (e.g. restoration failed in another tab), the next
guarded request redirects even though earlier requests rendered fine.
*/
func TestProtect_ExpiredMidSession(t *testing.T) {
	store := session.NewMemoryStore()
	saveSession(t, store, "sid-1", "merchant")
	boot := fixedBoot{state: session.StateAuthenticated}

	first := serve(t, store, boot, "sid-1", "/merchant", roles.RoleMerchant)
	assert.Equal(t, http.StatusOK, first.Code)

	require.NoError(t, store.Clear(context.Background(), "sid-1"))

	second := serve(t, store, fixedBoot{state: session.StateUnauthenticated}, "sid-1", "/merchant", roles.RoleMerchant)
	assert.Equal(t, http.StatusSeeOther, second.Code)
	assert.Equal(t, "/", second.Header().Get("Location"))
}

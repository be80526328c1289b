// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

/*
Package entry owns the unauthenticated surface of the gateway: the entry
route descriptor, password login, invitation completion, logout, and the
session-restore endpoint the client shell calls at boot.

# Architecture

The handlers here are the only writers of the credential store. Every
path that establishes a session (login, invite completion) goes through
the same atomic save; every path that ends one (logout, failed restore)
goes through the same clear.
*/
package entry

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/myduka/gateway/internal/authgw"
	"github.com/myduka/gateway/internal/platform/apperr"
	"github.com/myduka/gateway/internal/platform/constants"
	"github.com/myduka/gateway/internal/platform/ctxutil"
	requestutil "github.com/myduka/gateway/internal/platform/request"
	"github.com/myduka/gateway/internal/platform/respond"
	"github.com/myduka/gateway/internal/platform/validate"
	"github.com/myduka/gateway/internal/roles"
	"github.com/myduka/gateway/internal/session"
)

// Handler serves the entry surface and the /api/v1 auth endpoints.
type Handler struct {
	store    session.Store
	restorer *session.Restorer
	gateway  authgw.AuthGateway
}

// NewHandler wires the entry surface to its collaborators.
func NewHandler(store session.Store, restorer *session.Restorer, gateway authgw.AuthGateway) *Handler {
	return &Handler{
		store:    store,
		restorer: restorer,
		gateway:  gateway,
	}
}

// AuthRoutes returns the router mounted at /api/v1/auth.
func (h *Handler) AuthRoutes() http.Handler {
	router := chi.NewRouter()
	router.Post("/login", h.Login)
	router.Post("/invite", h.CompleteInvite)
	router.Post("/logout", h.Logout)
	return router
}

// # Entry Surface

// surfaceResponse describes which form the entry route should render.
type surfaceResponse struct {
	Mode        string   `json:"mode"`
	Fields      []string `json:"fields"`
	InviteToken string   `json:"invite_token,omitempty"`
}

// Surface handles GET /. It tells the client shell whether to render the
// login form or the invitation-completion form.
//
// The invite_token query parameter is inspected at request time and takes
// precedence even when a valid session is already stored: someone opening
// an invite link mid-session is deliberately switching accounts.
func (h *Handler) Surface(writer http.ResponseWriter, request *http.Request) {
	inviteToken := request.URL.Query().Get(constants.InviteTokenParam)

	if inviteToken != "" {
		respond.OK(writer, surfaceResponse{
			Mode:        "invite",
			Fields:      []string{"first_name", "last_name", "password"},
			InviteToken: inviteToken,
		})
		return
	}

	respond.OK(writer, surfaceResponse{
		Mode:   "login",
		Fields: []string{"email", "password"},
	})
}

// # Session Establishment

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is returned by every operation that establishes a session.
type sessionResponse struct {
	User       *session.UserProfile `json:"user"`
	RedirectTo string               `json:"redirect_to"`
}

// Login handles POST /api/v1/auth/login.
//
// # Flow
//  1. Decode and validate the credentials payload.
//  2. Exchange them upstream; any failure leaves the store untouched.
//  3. Atomically persist the new session under this browser's session ID.
//  4. Respond with the profile and the role's dashboard route.
func (h *Handler) Login(writer http.ResponseWriter, request *http.Request) {

	// ── 1. Decode & Validate ──────────────────────────────────────────────
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.
		Required("email", input.Email).
		Email("email", input.Email).
		Required("password", input.Password).
		Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	sid, err := requestutil.SessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Upstream Exchange ──────────────────────────────────────────────
	credentials, err := h.gateway.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Establish the session ──────────────────────────────────────────
	h.establishSession(writer, request, sid, credentials)
}

type inviteRequest struct {
	InviteToken string `json:"invite_token"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Password    string `json:"password"`
}

// CompleteInvite handles POST /api/v1/auth/invite.
//
// Success feeds the exact same session establishment as login; failure
// surfaces the backend's reason and mutates nothing, so the invite form
// stays up for another attempt.
func (h *Handler) CompleteInvite(writer http.ResponseWriter, request *http.Request) {

	// ── 1. Decode & Validate ──────────────────────────────────────────────
	var input inviteRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.
		Required("invite_token", input.InviteToken).
		Required("first_name", input.FirstName).
		Required("last_name", input.LastName).
		Required("password", input.Password).
		MinLen("password", input.Password, 8).
		Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	sid, err := requestutil.SessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Redeem the invitation ──────────────────────────────────────────
	credentials, err := h.gateway.RegisterAdminFromInvite(request.Context(), authgw.InviteCompletion{
		InviteToken: input.InviteToken,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Password:    input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Establish the session ──────────────────────────────────────────
	h.establishSession(writer, request, sid, credentials)
}

// establishSession atomically persists fresh credentials and responds with
// the role's dashboard route. Shared by login and invite completion so the
// two transitions can never drift apart.
func (h *Handler) establishSession(writer http.ResponseWriter, request *http.Request, sid string, credentials *authgw.Credentials) {

	// A stale in-flight restoration must not clobber this fresh login.
	h.restorer.Cancel(sid)

	if err := h.store.Save(request.Context(), sid, credentials.AccessToken, credentials.User, credentials.RefreshToken); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "session_save_failed",
			slog.String("session_id", sid),
			slog.Any("error", err),
		)
		respond.Error(writer, request, apperr.ServiceUnavailable("Session could not be established"))
		return
	}

	respond.OK(writer, sessionResponse{
		User:       credentials.User,
		RedirectTo: roles.Normalize(credentials.User.Role).DashboardRoute(),
	})
}

// # Session Teardown

// logoutResponse points the shell back at the entry route.
type logoutResponse struct {
	RedirectTo string `json:"redirect_to"`
}

// Logout handles POST /api/v1/auth/logout.
//
// The upstream call is best-effort: the local session is cleared no matter
// what, because the browser must end up logged out even when the upstream
// is down.
func (h *Handler) Logout(writer http.ResponseWriter, request *http.Request) {
	sid, err := requestutil.SessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Suppress any in-flight restoration for this browser.
	h.restorer.Cancel(sid)

	snapshot := h.store.Read(request.Context(), sid)
	if snapshot.AccessToken != "" {
		if err := h.gateway.Logout(request.Context(), snapshot.AccessToken); err != nil {
			ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "upstream_logout_failed",
				slog.String("session_id", sid),
				slog.Any("error", err),
			)
		}
	}

	if err := h.store.Clear(request.Context(), sid); err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.OK(writer, logoutResponse{RedirectTo: roles.EntryRoute})
}

// # Session Restoration

type restoreRequest struct {
	CurrentPath string `json:"current_path"`
}

// RestoreSession handles POST /api/v1/session/restore, the one call the
// client shell makes at boot to revalidate stored credentials.
//
// A discarded outcome (cancelled or outraced cycle) answers 204: the shell
// must neither navigate nor change what it renders.
func (h *Handler) RestoreSession(writer http.ResponseWriter, request *http.Request) {
	sid, err := requestutil.SessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input restoreRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.CurrentPath == "" {
		input.CurrentPath = roles.EntryRoute
	}

	outcome := h.restorer.Begin(request.Context(), sid, input.CurrentPath)
	if outcome.Discarded {
		respond.NoContent(writer)
		return
	}

	respond.OK(writer, outcome)
}

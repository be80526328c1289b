// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package idp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/myduka/gateway/internal/platform/constants"
	requestutil "github.com/myduka/gateway/internal/platform/request"
	"github.com/myduka/gateway/internal/platform/respond"
	"github.com/myduka/gateway/internal/session"
)

// Handler exposes the embedded identity provider over HTTP at /idp/v1.
//
// The wire shapes intentionally match what the authgw HTTP client expects,
// so a deployment can be split later (gateway here, identity there)
// by pointing UPSTREAM_AUTH_URL at this surface.
type Handler struct {
	service *Service
}

// NewHandler creates the identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router mounted at /idp/v1.
func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Post("/login", h.Login)
	router.Post("/register", h.Register)
	router.Get("/me", h.Me)
	router.Post("/invite", h.Invite)
	router.Post("/register-invite", h.RegisterInvite)
	router.Post("/logout", h.Logout)
	return router
}

// credentialsResponse is the wire shape for operations that issue tokens.
type credentialsResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token,omitempty"`
	User         *session.UserProfile `json:"user"`
}

func toCredentialsResponse(result *LoginResult) credentialsResponse {
	return credentialsResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User.Profile(),
	}
}

// # Handlers

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /idp/v1/login.
func (h *Handler) Login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := h.service.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, toCredentialsResponse(result))
}

// Me handles GET /idp/v1/me.
func (h *Handler) Me(writer http.ResponseWriter, request *http.Request) {
	accessToken, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := h.service.Me(request.Context(), accessToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Profile())
}

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// Register handles POST /idp/v1/register (merchant self-registration).
//
// This is the unauthenticated path to a tenant's first account; invited
// roles go through /register-invite instead.
func (h *Handler) Register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	merchant, err := h.service.Register(request.Context(), RegisterInput{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  input.Password,
		Role:      input.Role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, merchant.Profile())
}

type inviteRequest struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	StoreID   *int64 `json:"store_id"`
}

// inviteResponse carries the redeemable token plus the link a merchant
// can hand straight to the invitee.
type inviteResponse struct {
	InviteToken string               `json:"invite_token"`
	InviteLink  string               `json:"invite_link"`
	User        *session.UserProfile `json:"user"`
}

// Invite handles POST /idp/v1/invite (merchant bearer token required).
func (h *Handler) Invite(writer http.ResponseWriter, request *http.Request) {

	// ── 1. Identify the inviter ───────────────────────────────────────────
	accessToken, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	inviter, err := h.service.Me(request.Context(), accessToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Issue the invitation ───────────────────────────────────────────
	var input inviteRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	invitation, err := h.service.Invite(request.Context(), inviter, InviteInput{
		Email:     input.Email,
		Role:      input.Role,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		StoreID:   input.StoreID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, inviteResponse{
		InviteToken: invitation.Token,
		InviteLink:  "/?" + constants.InviteTokenParam + "=" + invitation.Token,
		User:        invitation.User.Profile(),
	})
}

type registerInviteRequest struct {
	InviteToken string `json:"invite_token"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Password    string `json:"password"`
}

// RegisterInvite handles POST /idp/v1/register-invite.
func (h *Handler) RegisterInvite(writer http.ResponseWriter, request *http.Request) {
	var input registerInviteRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := h.service.CompleteInvite(request.Context(), CompleteInviteInput{
		Token:     input.InviteToken,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, toCredentialsResponse(result))
}

// Logout handles POST /idp/v1/logout.
func (h *Handler) Logout(writer http.ResponseWriter, request *http.Request) {
	accessToken, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := h.service.Logout(request.Context(), accessToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

/*
Package authgw defines the gateway's contract with the authentication
backend and its HTTP client implementation.

# Architecture

Every identity operation the gateway performs (password login, token
revalidation, invite redemption, logout) goes through the [AuthGateway]
interface. Production deployments point it at the MyDuka auth backend via
[Client]; standalone deployments satisfy it in-process with the embedded
identity provider.

# Fail-Closed

Consumers never distinguish "the upstream said no" from "the upstream was
unreachable": both surface as errors, and sessions fail closed on errors.
*/
package authgw

import (
	"context"

	"github.com/myduka/gateway/internal/session"
)

// Credentials is the result of any operation that establishes an identity.
type Credentials struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token,omitempty"`
	User         *session.UserProfile `json:"user"`
}

// InviteCompletion is the payload for redeeming an invitation.
// The email is deliberately absent: it is pinned inside the invite token.
type InviteCompletion struct {
	InviteToken string `json:"invite_token"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Password    string `json:"password"`
}

// AuthGateway is the gateway's view of the authentication backend.
type AuthGateway interface {
	// Login exchanges email + password for credentials.
	Login(ctx context.Context, email, password string) (*Credentials, error)

	// Me validates an access token and returns the current profile.
	// Its signature satisfies [session.IdentityVerifier].
	Me(ctx context.Context, accessToken string) (*session.UserProfile, error)

	// RegisterAdminFromInvite redeems an invitation token, completing the
	// invited account, and returns credentials exactly like Login.
	RegisterAdminFromInvite(ctx context.Context, completion InviteCompletion) (*Credentials, error)

	// Logout invalidates the upstream session for the token, best-effort.
	Logout(ctx context.Context, accessToken string) error
}

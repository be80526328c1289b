// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

/*
Package idp is the embedded identity provider for standalone deployments.

# Architecture

When no external authentication upstream is configured, the gateway hosts
its own account storage (PostgreSQL) and token issuance (HS256). The
[Gateway] adapter exposes this provider through the same [authgw.AuthGateway]
contract the HTTP client implements, so the rest of the gateway cannot tell
the difference.

# Accounts

A merchant owns the tenant; admins and clerks are created inactive via
invitation and activated when the invitation is redeemed.
*/
package idp

import (
	"time"

	"github.com/myduka/gateway/internal/session"
)

// User represents an account in the embedded identity store.
//
// # Rules
//   - Email is unique.
//   - Invited accounts start inactive with an empty password hash;
//     both change when the invitation is redeemed.
//   - MerchantID links admins and clerks to their owning merchant;
//     it is nil for merchants themselves.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
	MerchantID   *int64
	StoreID      *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordSet reports whether the account has completed password setup.
// Invited accounts have no password until redemption.
func (u *User) PasswordSet() bool {
	return u.PasswordHash != ""
}

// Profile projects the account onto the session-facing profile shape.
func (u *User) Profile() *session.UserProfile {
	return &session.UserProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		StoreID:   u.StoreID,
	}
}

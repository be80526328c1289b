// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

/*
Package roles defines the canonical actor roles of the MyDuka platform and
the routing table that maps each role to its dashboard.

# Architecture

Role strings arrive from outside the gateway (upstream auth responses,
stored sessions, tokens) and are never trusted as-is. [Normalize] is the
single funnel through which every raw role string must pass; no other
package compares raw role strings.

# Fail-Closed

Unknown or malformed input normalizes to [RoleClerk], the least privileged
role. A typo in an upstream payload therefore narrows access instead of
widening it.
*/
package roles

import "strings"

// Role is the canonical enumerated actor role.
type Role string

const (
	// RoleMerchant is the tenant owner: full account control, invites admins.
	RoleMerchant Role = "merchant"

	// RoleAdmin manages stores and clerks within a merchant's account.
	RoleAdmin Role = "admin"

	// RoleClerk records stock at a single store. Least privileged.
	RoleClerk Role = "clerk"
)

// EntryRoute is the unauthenticated landing route (login / invite surface).
const EntryRoute = "/"

// Normalize maps a raw role string to a canonical [Role].
//
// # Flow
//  1. Trim surrounding whitespace and lowercase the input.
//  2. Match against the known role set.
//  3. Anything unrecognized (including empty) fails closed to [RoleClerk].
//
// The function is pure and total: every input yields a valid Role.
func Normalize(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RoleMerchant):
		return RoleMerchant
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleClerk):
		return RoleClerk
	default:
		return RoleClerk
	}
}

// DashboardRoute returns the dashboard path owned by the role.
//
// Every canonical role has exactly one dashboard; the clerk dashboard
// doubles as the fallback because Normalize fails closed to clerk.
func (r Role) DashboardRoute() string {
	switch r {
	case RoleMerchant:
		return "/merchant"
	case RoleAdmin:
		return "/admin"
	default:
		return "/clerk"
	}
}

// In reports whether the role is a member of the given set.
func (r Role) In(set ...Role) bool {
	for _, candidate := range set {
		if r == candidate {
			return true
		}
	}
	return false
}

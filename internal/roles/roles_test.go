// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package roles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/myduka/gateway/internal/roles"
)

/*
TestNormalize verifies canonical mapping, case-folding, trimming, and the
fail-closed default for unknown input.
*/
func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want roles.Role
	}{
		{"canonical_merchant", "merchant", roles.RoleMerchant},
		{"canonical_admin", "admin", roles.RoleAdmin},
		{"canonical_clerk", "clerk", roles.RoleClerk},
		{"uppercase", "MERCHANT", roles.RoleMerchant},
		{"mixed_case", "Admin", roles.RoleAdmin},
		{"padded", "  clerk  ", roles.RoleClerk},
		{"padded_mixed", " Merchant ", roles.RoleMerchant},
		{"empty", "", roles.RoleClerk},
		{"whitespace_only", "   ", roles.RoleClerk},
		{"unknown", "superadmin", roles.RoleClerk},
		{"typo", "merchnat", roles.RoleClerk},
		{"numeric", "42", roles.RoleClerk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roles.Normalize(tt.raw))
		})
	}
}

/*
TestDashboardRoute verifies the role-to-dashboard table is total: every
role (including a zero/invalid Role value) maps to some dashboard.
*/
func TestDashboardRoute(t *testing.T) {
	assert.Equal(t, "/merchant", roles.RoleMerchant.DashboardRoute())
	assert.Equal(t, "/admin", roles.RoleAdmin.DashboardRoute())
	assert.Equal(t, "/clerk", roles.RoleClerk.DashboardRoute())

	// A Role value that bypassed Normalize still gets a route.
	assert.Equal(t, "/clerk", roles.Role("bogus").DashboardRoute())
}

/*
TestIn verifies set membership used by the route guard.
*/
func TestIn(t *testing.T) {
	assert.True(t, roles.RoleMerchant.In(roles.RoleMerchant, roles.RoleAdmin))
	assert.True(t, roles.RoleAdmin.In(roles.RoleMerchant, roles.RoleAdmin))
	assert.False(t, roles.RoleClerk.In(roles.RoleMerchant, roles.RoleAdmin))
	assert.False(t, roles.RoleClerk.In())
}

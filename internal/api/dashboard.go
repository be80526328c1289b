// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package api

import (
	"net/http"

	"github.com/myduka/gateway/internal/platform/respond"
	"github.com/myduka/gateway/internal/roles"
)

// dashboardHandler renders the shell payload for a role dashboard.
//
// The guard in front of it has already decided this browser may be here;
// the actual dashboard content is fetched by the SPA from the backing API.
func dashboardHandler(role roles.Role) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respond.OK(writer, map[string]string{
			"dashboard": string(role),
			"route":     role.DashboardRoute(),
		})
	}
}

// reportsHandler renders the shell payload for the shared reports route.
func reportsHandler() http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respond.OK(writer, map[string]string{
			"feature": "reports",
			"route":   "/reports",
		})
	}
}

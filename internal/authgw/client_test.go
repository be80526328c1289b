// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package authgw_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myduka/gateway/internal/authgw"
	"github.com/myduka/gateway/internal/platform/apperr"
)

/*
TestClient_Login_Success verifies the client decodes the standard success
envelope into credentials.
*/
func TestClient_Login_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {
			"access_token": "upstream-access",
			"refresh_token": "upstream-refresh",
			"user": {"id": 5, "first_name": "Mumbi", "last_name": "Kamau",
			         "email": "mumbi@myduka.app", "role": "merchant"}
		}}`))
	}))
	defer upstream.Close()

	client := authgw.NewClient(upstream.URL)
	credentials, err := client.Login(context.Background(), "mumbi@myduka.app", "secret")

	require.NoError(t, err)
	assert.Equal(t, "upstream-access", credentials.AccessToken)
	assert.Equal(t, "upstream-refresh", credentials.RefreshToken)
	require.NotNil(t, credentials.User)
	assert.Equal(t, int64(5), credentials.User.ID)
	assert.Equal(t, "merchant", credentials.User.Role)
}

/*
TestClient_Login_Unauthorized verifies a 401 maps to an UNAUTHORIZED
AppError carrying the upstream's message.
*/
func TestClient_Login_Unauthorized(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "Invalid email or password", "code": "UNAUTHORIZED"}`))
	}))
	defer upstream.Close()

	client := authgw.NewClient(upstream.URL)
	_, err := client.Login(context.Background(), "mumbi@myduka.app", "wrong")

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)
	assert.Equal(t, "Invalid email or password", ae.Message)
}

/*
TestClient_Me verifies the bearer token is forwarded and the profile decoded.
*/
func TestClient_Me(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "Bearer the-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"id": 7, "first_name": "Akinyi", "last_name": "Odhiambo",
			"email": "akinyi@myduka.app", "role": "clerk", "store_id": 3}}`))
	}))
	defer upstream.Close()

	client := authgw.NewClient(upstream.URL)
	profile, err := client.Me(context.Background(), "the-token")

	require.NoError(t, err)
	assert.Equal(t, "clerk", profile.Role)
	require.NotNil(t, profile.StoreID)
	assert.Equal(t, int64(3), *profile.StoreID)
}

/*
TestClient_UpstreamUnreachable verifies transport failures fail closed as
INTERNAL_ERROR, indistinguishable in kind from an auth rejection.
*/
func TestClient_UpstreamUnreachable(t *testing.T) {
	// Point at a server that is already closed.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	client := authgw.NewClient(upstream.URL)
	_, err := client.Me(context.Background(), "any-token")

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INTERNAL_ERROR", ae.Code)
}

/*
TestClient_Logout verifies logout posts the bearer token and treats a bare
2xx as success.
*/
func TestClient_Logout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logout", r.URL.Path)
		assert.Equal(t, "Bearer the-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()

	client := authgw.NewClient(upstream.URL)
	assert.NoError(t, client.Logout(context.Background(), "the-token"))
}

/*
TestClient_RegisterAdminFromInvite verifies invite redemption returns
credentials like login and maps a rejected token to its upstream error.
*/
func TestClient_RegisterAdminFromInvite(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/register-invite", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {
			"access_token": "fresh-access",
			"user": {"id": 11, "email": "newadmin@myduka.app", "role": "admin"}
		}}`))
	}))
	defer upstream.Close()

	client := authgw.NewClient(upstream.URL)
	credentials, err := client.RegisterAdminFromInvite(context.Background(), authgw.InviteCompletion{
		InviteToken: "invite-token",
		FirstName:   "New",
		LastName:    "Admin",
		Password:    "hunter22",
	})

	require.NoError(t, err)
	assert.Equal(t, "fresh-access", credentials.AccessToken)
	assert.Equal(t, "admin", credentials.User.Role)
}

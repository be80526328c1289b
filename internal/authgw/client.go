// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package authgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/myduka/gateway/internal/platform/apperr"
	"github.com/myduka/gateway/internal/platform/constants"
	"github.com/myduka/gateway/internal/session"
)

// Client is the HTTP implementation of [AuthGateway].
//
// It speaks the standard MyDuka envelope: successes arrive as {"data": ...}
// and failures as {"error": ..., "code": ...}.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given upstream base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: constants.UpstreamRequestTimeout,
		},
	}
}

// # AuthGateway Implementation

// Login exchanges email + password for credentials.
func (client *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	var credentials Credentials
	if err := client.post(ctx, "/login", "", payload, &credentials); err != nil {
		return nil, err
	}

	return &credentials, nil
}

// Me validates an access token and returns the current profile.
func (client *Client) Me(ctx context.Context, accessToken string) (*session.UserProfile, error) {
	var profile session.UserProfile
	if err := client.get(ctx, "/me", accessToken, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// RegisterAdminFromInvite redeems an invitation and returns fresh credentials.
func (client *Client) RegisterAdminFromInvite(ctx context.Context, completion InviteCompletion) (*Credentials, error) {
	var credentials Credentials
	if err := client.post(ctx, "/register-invite", "", completion, &credentials); err != nil {
		return nil, err
	}

	return &credentials, nil
}

// Logout invalidates the upstream session for the token.
func (client *Client) Logout(ctx context.Context, accessToken string) error {
	return client.post(ctx, "/logout", accessToken, nil, nil)
}

// # HTTP Plumbing

// successEnvelope mirrors the standard {"data": ...} success shape.
type successEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// errorEnvelope mirrors the standard {"error": ..., "code": ...} failure shape.
type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (client *Client) get(ctx context.Context, path, bearerToken string, target interface{}) error {
	return client.do(ctx, http.MethodGet, path, bearerToken, nil, target)
}

func (client *Client) post(ctx context.Context, path, bearerToken string, payload, target interface{}) error {
	return client.do(ctx, http.MethodPost, path, bearerToken, payload, target)
}

// do executes one upstream call and decodes the response envelope.
//
// # Flow
//  1. Encode the payload (if any) and build the request.
//  2. Execute; transport failures become INTERNAL_ERROR (fail closed).
//  3. Non-2xx responses are mapped onto [apperr.AppError] by status.
//  4. 2xx responses have their "data" field decoded into target.
func (client *Client) do(ctx context.Context, method, path, bearerToken string, payload, target interface{}) error {

	// ── 1. Build the request ──────────────────────────────────────────────
	var body *bytes.Buffer = &bytes.Buffer{}
	if payload != nil {
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			return apperr.Internal(fmt.Errorf("authgw: failed to encode request: %w", err))
		}
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, body)
	if err != nil {
		return apperr.Internal(fmt.Errorf("authgw: failed to build request: %w", err))
	}

	request.Header.Set("Content-Type", "application/json")
	if bearerToken != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+bearerToken)
	}

	// ── 2. Execute ────────────────────────────────────────────────────────
	response, err := client.httpClient.Do(request)
	if err != nil {
		return apperr.Internal(fmt.Errorf("authgw: upstream unreachable: %w", err))
	}
	defer func() { _ = response.Body.Close() }()

	// ── 3. Map failures ───────────────────────────────────────────────────
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return client.mapError(response.StatusCode, response.Body)
	}

	// ── 4. Decode the success envelope ────────────────────────────────────
	if target == nil {
		return nil
	}

	var envelope successEnvelope
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return apperr.Internal(fmt.Errorf("authgw: malformed upstream response: %w", err))
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		return apperr.Internal(fmt.Errorf("authgw: malformed upstream payload: %w", err))
	}

	return nil
}

// mapError converts an upstream failure response into an [apperr.AppError],
// preserving the upstream's client-safe message where one was provided.
func (client *Client) mapError(statusCode int, body io.Reader) error {
	var envelope errorEnvelope
	_ = json.NewDecoder(body).Decode(&envelope)

	message := envelope.Error
	if message == "" {
		message = "Authentication request failed"
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return apperr.Unauthorized(message)
	case http.StatusForbidden:
		return apperr.Forbidden(message)
	case http.StatusNotFound:
		return apperr.NotFound("Account")
	case http.StatusConflict:
		return apperr.Conflict(message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperr.Unprocessable(message)
	default:
		return apperr.Internal(fmt.Errorf("authgw: upstream returned status %d: %s", statusCode, message))
	}
}

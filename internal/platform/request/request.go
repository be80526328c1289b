// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away common extraction patterns (body decoding, bearer tokens,
session cookies), ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/myduka/gateway/internal/platform/apperr"
	"github.com/myduka/gateway/internal/platform/constants"
	"github.com/myduka/gateway/internal/platform/ctxutil"
	"github.com/myduka/gateway/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
BearerToken extracts the token from an 'Authorization: Bearer <token>' header.

Returns:
  - string: The raw token
  - error: apperr.Unauthorized if the header is missing or malformed
*/
func BearerToken(request *http.Request) (string, error) {

	// Get the Authorization header
	header := request.Header.Get(constants.HeaderAuthorization)
	if header == "" {
		return "", apperr.Unauthorized("Authentication required")
	}

	// Validate the 'Bearer <token>' shape
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", apperr.Unauthorized("Invalid authorization format")
	}

	return parts[1], nil
}

/*
SessionID returns the opaque browser session ID attached to the request
context by the session middleware.

Returns:
  - string: The session ID
  - error: apperr.Unauthorized if no session cookie accompanied the request
*/
func SessionID(request *http.Request) (string, error) {

	// Get the session ID injected by the middleware
	sid := ctxutil.GetSessionID(request.Context())

	// Every browser request should carry a session cookie once the
	// middleware has run; its absence means the chain was bypassed.
	if sid == "" {
		return "", apperr.Unauthorized("Session required")
	}

	return sid, nil
}

// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/myduka/gateway/internal/platform/ctxutil"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_SessionID verifies that the browser session ID can be stored in context.
*/
func TestContext_SessionID(t *testing.T) {
	ctx := context.Background()

	// 1. Initially should be empty (anonymous request)
	assert.Empty(t, ctxutil.GetSessionID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithSessionID(ctx, "sid-abc-123")
	assert.Equal(t, "sid-abc-123", ctxutil.GetSessionID(ctx))
}

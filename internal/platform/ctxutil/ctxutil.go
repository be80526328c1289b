// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/myduka/gateway/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Browser Sessions

// WithSessionID returns a new context with the browser session ID attached.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, ctxkey.KeySessionID, sid)
}

// GetSessionID retrieves the browser session ID from the context.
// Returns an empty string when the request carried no session cookie.
func GetSessionID(ctx context.Context) string {
	sid, _ := ctx.Value(ctxkey.KeySessionID).(string)
	return sid
}

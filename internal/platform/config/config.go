// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the MyDuka gateway.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Key-Value Cache (Redis). Optional: when empty the gateway keeps
	// browser sessions in process memory, which is fine for a single
	// instance but loses sessions on restart.
	RedisURL string `env:"REDIS_URL"`

	// UpstreamAuthURL points at the external authentication backend.
	// When empty the gateway runs its own embedded identity provider,
	// which requires the database settings below.
	UpstreamAuthURL string `env:"UPSTREAM_AUTH_URL"`

	// Relational Database (PostgreSQL), used in embedded identity mode only.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// AuthSecret signs HS256 tokens minted by the embedded identity provider.
	AuthSecret string `env:"AUTH_SECRET"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// Embedded identity mode has hard requirements that the env tags
	// cannot express (they only apply when UPSTREAM_AUTH_URL is unset).
	if cfg.EmbeddedIdentity() {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("config: DATABASE_URL is required when UPSTREAM_AUTH_URL is not set")
		}
		if cfg.AuthSecret == "" {
			return nil, fmt.Errorf("config: AUTH_SECRET is required when UPSTREAM_AUTH_URL is not set")
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// EmbeddedIdentity reports whether the gateway should run its own
// identity provider instead of delegating to an external upstream.
func (c *Config) EmbeddedIdentity() bool {
	return c.UpstreamAuthURL == ""
}

// AllowedOrigins returns the extra CORS origins configured via EXTRA_ORIGINS
// (comma-separated). The myduka.app suffix is always allowed regardless.
func (c *Config) AllowedOrigins() []string {
	if c.ExtraOrigins == "" {
		return nil
	}

	parts := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

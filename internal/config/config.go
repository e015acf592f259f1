// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

// Package config loads and validates the application configuration with a
// layered precedence: built-in defaults, then an optional YAML file, then
// environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/vitarank/vitarank/internal/engine"
	"github.com/vitarank/vitarank/internal/logging"
	"github.com/vitarank/vitarank/internal/store"
)

// Config is the root application configuration.
type Config struct {
	Server  ServerConfig   `json:"server"`
	Logging logging.Config `json:"logging"`
	Store   store.Config   `json:"store"`
	Engine  *engine.Config `json:"engine"`
	Catalog CatalogConfig  `json:"catalog"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// Host is the bind address.
	Host string `json:"host"`

	// Port is the listen port.
	Port int `json:"port"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// CORSOrigins lists allowed CORS origins. Empty disables CORS.
	CORSOrigins []string `json:"cors_origins"`

	// RateLimitReqs is the request budget per window per client IP.
	// Zero disables rate limiting.
	RateLimitReqs int `json:"rate_limit_reqs"`

	// RateLimitWindow is the rate-limit window.
	RateLimitWindow time.Duration `json:"rate_limit_window"`
}

// CatalogConfig configures the supplement catalog.
type CatalogConfig struct {
	// Path optionally overrides the embedded catalog with a JSON file.
	Path string `json:"path"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8460,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: logging.DefaultConfig(),
		Store: store.Config{
			Path: "/data/vitarank",
		},
		Engine: engine.DefaultConfig(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path is required unless store.in_memory is set")
	}
	if c.Engine == nil {
		return fmt.Errorf("engine configuration is required")
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

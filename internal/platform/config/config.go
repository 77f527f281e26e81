// Copyright (c) 2026 Lehae. All rights reserved.

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
  - DI-Friendly: Passed to core components (transport, stores) via constructors.
  - Zero Hidden State: No global variables are used to store config.

A single configured base URL covers every API call, token refresh included.
*/
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// State backend selectors for [Config.StateBackend].
const (
	StateBackendFile   = "file"
	StateBackendRedis  = "redis"
	StateBackendMemory = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the Lehae client.
type Config struct {

	// BaseURL is the root of the Lehae REST API. Every request, including
	// token refresh, is resolved against this one URL.
	BaseURL string `env:"LEHAE_BASE_URL,required"`

	// HTTPTimeout bounds a single logical API call end to end.
	HTTPTimeout time.Duration `env:"LEHAE_HTTP_TIMEOUT" envDefault:"30s"`

	// StateBackend selects where credentials persist: file, redis or memory.
	StateBackend string `env:"LEHAE_STATE_BACKEND" envDefault:"file"`

	// StatePath is the JSON state file location for the file backend.
	// Empty means a default under the user config directory.
	StatePath string `env:"LEHAE_STATE_PATH"`

	// RedisURL is required when StateBackend is "redis".
	RedisURL string `env:"LEHAE_REDIS_URL"`

	// RateLimitRPS throttles outbound API requests. Zero disables throttling.
	RateLimitRPS float64 `env:"LEHAE_RATE_LIMIT_RPS" envDefault:"20"`

	Debug bool `env:"DEBUG" envDefault:"false"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects combinations that would only fail later at dial time.
func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: LEHAE_BASE_URL %q is not an absolute URL", c.BaseURL)
	}
	// Trailing slashes break naive path joining downstream.
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	switch c.StateBackend {
	case StateBackendFile, StateBackendMemory:
	case StateBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: LEHAE_REDIS_URL is required for the redis state backend")
		}
	default:
		return fmt.Errorf("config: unknown state backend %q", c.StateBackend)
	}

	return nil
}

// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
		c.validateCatalog,
		c.validateRecommend,
		c.validateStore,
		c.validateEvents,
		c.validateSupervisor,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read and write timeouts must be positive")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("server.environment must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

// validateSecurity validates CORS and rate limiting settings
func (c *Config) validateSecurity() error {
	if c.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("security.cors_origins must not contain '*' in production")
			}
		}
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 || c.Security.RateLimitReqs > 100000 {
			return fmt.Errorf("security.rate_limit_reqs must be between 1 and 100000, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive")
		}
	}

	if c.Security.MaxBodyBytes <= 0 {
		return fmt.Errorf("security.max_body_bytes must be positive, got %d", c.Security.MaxBodyBytes)
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if len(c.Catalog.Delimiter) > 1 {
		return fmt.Errorf("catalog.delimiter must be a single character, got %q", c.Catalog.Delimiter)
	}
	return nil
}

// validateRecommend mirrors the engine's own checks so misconfiguration
// fails at load time with the config key in the message.
func (c *Config) validateRecommend() error {
	r := c.Recommend
	switch {
	case r.PriorStrength < 0:
		return fmt.Errorf("recommend.prior_strength must be >= 0, got %g", r.PriorStrength)
	case r.Alpha <= 0 || r.Alpha > 1:
		return fmt.Errorf("recommend.alpha must be in (0,1], got %g", r.Alpha)
	case r.NeutralWeight < 0 || r.NeutralWeight > 1:
		return fmt.Errorf("recommend.neutral_weight must be in [0,1], got %g", r.NeutralWeight)
	case r.FuzzyThreshold < 0 || r.FuzzyThreshold >= 100:
		return fmt.Errorf("recommend.fuzzy_threshold must be in [0,100), got %d", r.FuzzyThreshold)
	case r.Epsilon <= 0:
		return fmt.Errorf("recommend.epsilon must be positive, got %g", r.Epsilon)
	case r.MaxResults < 1:
		return fmt.Errorf("recommend.max_results must be >= 1, got %d", r.MaxResults)
	}

	if r.ResolverCacheEnabled {
		if r.ResolverCacheSize < 1 {
			return fmt.Errorf("recommend.resolver_cache_size must be >= 1, got %d", r.ResolverCacheSize)
		}
		if r.ResolverCacheTTL <= 0 {
			return fmt.Errorf("recommend.resolver_cache_ttl must be positive")
		}
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "badger":
		if !c.Store.Badger.InMemory && strings.TrimSpace(c.Store.Badger.Dir) == "" {
			return fmt.Errorf("store.badger.dir is required unless store.badger.in_memory is set")
		}
	case "http":
		h := c.Store.HTTP
		if h.BaseURL == "" {
			return fmt.Errorf("store.http.base_url is required when store.backend=http")
		}
		if err := validateURL(h.BaseURL, "store.http.base_url", httpSchemes); err != nil {
			return err
		}
		if h.Timeout <= 0 {
			return fmt.Errorf("store.http.timeout must be positive")
		}
		if h.MaxRPS < 0 {
			return fmt.Errorf("store.http.max_rps must be >= 0, got %g", h.MaxRPS)
		}
		if h.Breaker.FailureRatio <= 0 || h.Breaker.FailureRatio > 1 {
			return fmt.Errorf("store.http.breaker.failure_ratio must be in (0,1], got %g", h.Breaker.FailureRatio)
		}
	default:
		return fmt.Errorf("store.backend must be badger or http, got %q", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Events.Topic) == "" {
		return fmt.Errorf("events.topic is required when events are enabled")
	}

	switch c.Events.Backend {
	case "memory":
	case "nats":
		if c.Events.NATS.EmbeddedServer {
			// -1 asks the embedded server for a random free port.
			if c.Events.NATS.Port < -1 || c.Events.NATS.Port > 65535 {
				return fmt.Errorf("events.nats.port must be between -1 and 65535, got %d", c.Events.NATS.Port)
			}
			return nil
		}
		if err := validateURL(c.Events.NATS.URL, "events.nats.url", natsSchemes); err != nil {
			return err
		}
	default:
		return fmt.Errorf("events.backend must be memory or nats, got %q", c.Events.Backend)
	}
	return nil
}

func (c *Config) validateSupervisor() error {
	s := c.Supervisor
	if s.FailureThreshold <= 0 {
		return fmt.Errorf("supervisor.failure_threshold must be positive")
	}
	if s.FailureBackoff <= 0 || s.ShutdownTimeout <= 0 {
		return fmt.Errorf("supervisor backoff and shutdown timeout must be positive")
	}
	if s.JanitorInterval <= 0 {
		return fmt.Errorf("supervisor.janitor_interval must be positive")
	}
	return nil
}

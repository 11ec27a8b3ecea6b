// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package config

import (
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"wildcard CORS in production", func(c *Config) { c.Server.Environment = "production" }, "cors_origins"},
		{"explicit CORS in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Security.CORSOrigins = []string{"https://books.example"}
		}, ""},
		{"unknown environment", func(c *Config) { c.Server.Environment = "qa" }, "server.environment"},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "rate_limit_reqs"},
		{"rate limit disabled ignores bounds", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"empty catalog path", func(c *Config) { c.Catalog.Path = " " }, "catalog.path"},
		{"multi-char delimiter", func(c *Config) { c.Catalog.Delimiter = ";;" }, "catalog.delimiter"},
		{"negative prior strength", func(c *Config) { c.Recommend.PriorStrength = -1 }, "prior_strength"},
		{"zero alpha", func(c *Config) { c.Recommend.Alpha = 0 }, "recommend.alpha"},
		{"threshold 100", func(c *Config) { c.Recommend.FuzzyThreshold = 100 }, "fuzzy_threshold"},
		{"zero epsilon", func(c *Config) { c.Recommend.Epsilon = 0 }, "epsilon"},
		{"zero max results", func(c *Config) { c.Recommend.MaxResults = 0 }, "max_results"},
		{"zero cache size", func(c *Config) { c.Recommend.ResolverCacheSize = 0 }, "resolver_cache_size"},
		{"badger without dir", func(c *Config) { c.Store.Badger.Dir = "" }, "store.badger.dir"},
		{"in-memory badger without dir", func(c *Config) {
			c.Store.Badger.Dir = ""
			c.Store.Badger.InMemory = true
		}, ""},
		{"http store with path prefix", func(c *Config) {
			c.Store.Backend = "http"
			c.Store.HTTP.BaseURL = "https://gateway.example/prefs"
		}, ""},
		{"http store with ftp", func(c *Config) {
			c.Store.Backend = "http"
			c.Store.HTTP.BaseURL = "ftp://prefs.example"
		}, "store.http.base_url scheme"},
		{"breaker ratio", func(c *Config) {
			c.Store.Backend = "http"
			c.Store.HTTP.BaseURL = "http://prefs.example"
			c.Store.HTTP.Breaker.FailureRatio = 0
		}, "failure_ratio"},
		{"nats bad url", func(c *Config) {
			c.Events.Backend = "nats"
			c.Events.NATS.URL = "http://nats.example"
		}, "events.nats.url"},
		{"nats embedded skips url", func(c *Config) {
			c.Events.Backend = "nats"
			c.Events.NATS.URL = ""
			c.Events.NATS.EmbeddedServer = true
		}, ""},
		{"nats embedded random port", func(c *Config) {
			c.Events.Backend = "nats"
			c.Events.NATS.EmbeddedServer = true
			c.Events.NATS.Port = -1
		}, ""},
		{"disabled events skip checks", func(c *Config) {
			c.Events.Enabled = false
			c.Events.Backend = "kafka"
		}, ""},
		{"unknown events backend", func(c *Config) { c.Events.Backend = "kafka" }, "events.backend"},
		{"zero janitor interval", func(c *Config) { c.Supervisor.JanitorInterval = 0 }, "janitor_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.IsProduction() {
		t.Error("default environment should not be production")
	}
	cfg.Server.Environment = "production"
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false for production")
	}
}

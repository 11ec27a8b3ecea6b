// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/bookrec/config.yaml",
	"/etc/bookrec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			MaxBodyBytes:      1 << 20, // 1MB
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Catalog: CatalogConfig{
			Path: "data/books.csv",
		},
		Recommend: RecommendConfig{
			PriorStrength:        10,
			Alpha:                0.1,
			NeutralWeight:        0.5,
			FuzzyThreshold:       60,
			Epsilon:              1e-5,
			MaxResults:           10,
			DegradedMode:         false,
			ResolverCacheEnabled: true,
			ResolverCacheSize:    10000,
			ResolverCacheTTL:     time.Hour,
		},
		Store: StoreConfig{
			Backend:    "badger",
			LockUsers:  true,
			SeedGlobal: true,
			Badger: BadgerStoreConfig{
				Dir:        "/data/preferences",
				InMemory:   false,
				SyncWrites: false,
			},
			HTTP: HTTPStoreConfig{
				BaseURL: "",
				Timeout: 5 * time.Second,
				MaxRPS:  50,
				Burst:   10,
				Breaker: BreakerConfig{
					MaxRequests:  3,
					Interval:     time.Minute,
					Timeout:      30 * time.Second,
					MinRequests:  10,
					FailureRatio: 0.6,
				},
			},
		},
		Events: EventsConfig{
			Enabled: true,
			Backend: "memory",
			Topic:   "bookrec.preferences.updated",
			NATS: NATSConfig{
				URL:            "nats://127.0.0.1:4222",
				EmbeddedServer: false,
				Host:           "127.0.0.1",
				Port:           4222,
				MaxReconnects:  -1, // Unlimited
				ReconnectWait:  2 * time.Second,
				QueueGroup:     "bookrec-audit",
				CloseTimeout:   10 * time.Second,
			},
			AuditConsumer: true,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
			JanitorInterval:  5 * time.Minute,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Security mappings
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"max_body_bytes":      "security.max_body_bytes",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Catalog mappings
	"catalog_path":      "catalog.path",
	"catalog_delimiter": "catalog.delimiter",

	// Recommendation pipeline mappings
	"recommend_prior_strength":         "recommend.prior_strength",
	"recommend_alpha":                  "recommend.alpha",
	"recommend_neutral_weight":         "recommend.neutral_weight",
	"recommend_fuzzy_threshold":        "recommend.fuzzy_threshold",
	"recommend_epsilon":                "recommend.epsilon",
	"recommend_max_results":            "recommend.max_results",
	"recommend_degraded_mode":          "recommend.degraded_mode",
	"recommend_resolver_cache_enabled": "recommend.resolver_cache_enabled",
	"recommend_resolver_cache_size":    "recommend.resolver_cache_size",
	"recommend_resolver_cache_ttl":     "recommend.resolver_cache_ttl",

	// Preference store mappings
	"store_backend":               "store.backend",
	"store_lock_users":            "store.lock_users",
	"store_seed_global":           "store.seed_global",
	"store_badger_dir":            "store.badger.dir",
	"store_badger_in_memory":      "store.badger.in_memory",
	"store_badger_sync_writes":    "store.badger.sync_writes",
	"store_http_base_url":         "store.http.base_url",
	"store_http_timeout":          "store.http.timeout",
	"store_http_max_rps":          "store.http.max_rps",
	"store_http_burst":            "store.http.burst",
	"store_breaker_max_requests":  "store.http.breaker.max_requests",
	"store_breaker_interval":      "store.http.breaker.interval",
	"store_breaker_timeout":       "store.http.breaker.timeout",
	"store_breaker_min_requests":  "store.http.breaker.min_requests",
	"store_breaker_failure_ratio": "store.http.breaker.failure_ratio",

	// Event mappings
	"events_enabled":        "events.enabled",
	"events_backend":        "events.backend",
	"events_topic":          "events.topic",
	"events_audit_consumer": "events.audit_consumer",
	"nats_url":              "events.nats.url",
	"nats_embedded":         "events.nats.embedded_server",
	"nats_host":             "events.nats.host",
	"nats_port":             "events.nats.port",
	"nats_max_reconnects":   "events.nats.max_reconnects",
	"nats_reconnect_wait":   "events.nats.reconnect_wait",
	"nats_queue_group":      "events.nats.queue_group",
	"nats_close_timeout":    "events.nats.close_timeout",

	// Supervisor mappings
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
	"supervisor_janitor_interval":  "supervisor.janitor_interval",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - RECOMMEND_ALPHA -> recommend.alpha
//   - STORE_HTTP_BASE_URL -> store.http.base_url
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

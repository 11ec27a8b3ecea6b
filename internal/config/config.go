// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package config

import (
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Store      StoreConfig      `koanf:"store"`
	Events     EventsConfig     `koanf:"events"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// SecurityConfig holds cross-origin and rate limiting settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// LoggingConfig holds zerolog settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller adds file:line to every entry.
	Caller bool `koanf:"caller"`
}

// CatalogConfig describes where the book catalog comes from
type CatalogConfig struct {
	// Path is the CSV file with one row per book.
	Path string `koanf:"path"`

	// Delimiter overrides DuckDB's delimiter sniffing when set.
	Delimiter string `koanf:"delimiter"`
}

// RecommendConfig holds tuning for the recommendation pipeline.
// Defaults reproduce the reference behaviour of the service.
type RecommendConfig struct {
	PriorStrength  float64 `koanf:"prior_strength"`
	Alpha          float64 `koanf:"alpha"`
	NeutralWeight  float64 `koanf:"neutral_weight"`
	FuzzyThreshold int     `koanf:"fuzzy_threshold"`
	Epsilon        float64 `koanf:"epsilon"`
	MaxResults     int     `koanf:"max_results"`

	// DegradedMode serves recommendations from fallbacks when the
	// preference store fails instead of returning an error.
	DegradedMode bool `koanf:"degraded_mode"`

	ResolverCacheEnabled bool          `koanf:"resolver_cache_enabled"`
	ResolverCacheSize    int           `koanf:"resolver_cache_size"`
	ResolverCacheTTL     time.Duration `koanf:"resolver_cache_ttl"`
}

// StoreConfig selects and configures the preference store backend
type StoreConfig struct {
	// Backend is "badger" (embedded) or "http" (remote preference service).
	Backend string `koanf:"backend"`

	// LockUsers serializes concurrent requests for the same user.
	LockUsers bool `koanf:"lock_users"`

	// SeedGlobal writes a neutral prior over the catalog vocabulary at
	// startup when none is stored.
	SeedGlobal bool `koanf:"seed_global"`

	Badger BadgerStoreConfig `koanf:"badger"`
	HTTP   HTTPStoreConfig   `koanf:"http"`
}

// BadgerStoreConfig configures the embedded store
type BadgerStoreConfig struct {
	Dir        string `koanf:"dir"`
	InMemory   bool   `koanf:"in_memory"`
	SyncWrites bool   `koanf:"sync_writes"`
}

// HTTPStoreConfig configures the remote preference service client
type HTTPStoreConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`

	// MaxRPS is the client-side request rate limit (0 disables).
	MaxRPS float64 `koanf:"max_rps"`
	Burst  int     `koanf:"burst"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker in front of a remote dependency
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"` // Probes allowed while half-open
	Interval     time.Duration `koanf:"interval"`     // Count reset period while closed
	Timeout      time.Duration `koanf:"timeout"`      // Open duration before half-open
	MinRequests  uint32        `koanf:"min_requests"` // Requests before the ratio is considered
	FailureRatio float64       `koanf:"failure_ratio"`
}

// EventsConfig configures preference update events
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`

	// Backend is "memory" (Watermill GoChannel) or "nats".
	Backend string `koanf:"backend"`
	Topic   string `koanf:"topic"`

	NATS NATSConfig `koanf:"nats"`

	// AuditConsumer subscribes to the topic and logs every update.
	AuditConsumer bool `koanf:"audit_consumer"`
}

// NATSConfig holds NATS connection settings
type NATSConfig struct {
	URL            string        `koanf:"url"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`
	QueueGroup     string        `koanf:"queue_group"`
	CloseTimeout   time.Duration `koanf:"close_timeout"`
}

// SupervisorConfig tunes the suture supervisor tree
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`

	// JanitorInterval is how often the resolver cache is swept.
	JanitorInterval time.Duration `koanf:"janitor_interval"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation pipeline.
type Config struct {
	// PriorStrength is the number of virtual observations the global prior
	// counts as in the Bayesian update.
	// Default: 10.
	PriorStrength float64 `json:"prior_strength"`

	// Alpha is the smoothing factor blending the fresh estimate into the
	// stored profile. 1.0 replaces the stored value outright.
	// Default: 0.1.
	Alpha float64 `json:"alpha"`

	// NeutralWeight is used when neither the stored profile nor the global
	// prior has a value.
	// Default: 0.5.
	NeutralWeight float64 `json:"neutral_weight"`

	// FuzzyThreshold is the minimum fuzzy score (exclusive, 0-100) for a
	// non-exact title match to be accepted.
	// Default: 60.
	FuzzyThreshold int `json:"fuzzy_threshold"`

	// Epsilon regularizes the whitening transform.
	// Default: 1e-5.
	Epsilon float64 `json:"epsilon"`

	// MaxResults caps the number of recommendations per request.
	// Default: 10.
	MaxResults int `json:"max_results"`

	// DegradedMode serves from the global prior when the store fails
	// instead of failing the request.
	// Default: false.
	DegradedMode bool `json:"degraded_mode"`

	// SerializeUsers runs the read-modify-write for one user under a lock.
	// Default: true.
	SerializeUsers bool `json:"serialize_users"`

	// ResolverCache controls the title resolution cache.
	ResolverCache ResolverCacheConfig `json:"resolver_cache"`
}

// ResolverCacheConfig contains title resolution cache parameters.
type ResolverCacheConfig struct {
	// Enabled enables caching of resolved titles.
	// Default: true.
	Enabled bool `json:"enabled"`

	// MaxEntries is the maximum number of cached resolutions.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`

	// TTL is the cache entry lifetime.
	// Default: 1 hour.
	TTL time.Duration `json:"ttl"`
}

// MarshalJSON implements json.Marshaler for ResolverCacheConfig.
//
//nolint:gocritic // value receiver is required for json.Marshaler
func (c ResolverCacheConfig) MarshalJSON() ([]byte, error) {
	type Alias ResolverCacheConfig
	return json.Marshal(&struct {
		Alias
		TTL string `json:"ttl"`
	}{
		Alias: Alias(c),
		TTL:   c.TTL.String(),
	})
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		PriorStrength:  10,
		Alpha:          0.1,
		NeutralWeight:  0.5,
		FuzzyThreshold: 60,
		Epsilon:        1e-5,
		MaxResults:     10,
		DegradedMode:   false,
		SerializeUsers: true,
		ResolverCache: ResolverCacheConfig{
			Enabled:    true,
			MaxEntries: 10000,
			TTL:        time.Hour,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.PriorStrength < 0 {
		return fmt.Errorf("prior_strength must be non-negative, got %f", c.PriorStrength)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0, 1], got %f", c.Alpha)
	}
	if c.NeutralWeight < 0 || c.NeutralWeight > 1 {
		return fmt.Errorf("neutral_weight must be in [0, 1], got %f", c.NeutralWeight)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold >= 100 {
		return fmt.Errorf("fuzzy_threshold must be in [0, 100), got %d", c.FuzzyThreshold)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %g", c.Epsilon)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.ResolverCache.Enabled {
		if c.ResolverCache.MaxEntries < 1 {
			return fmt.Errorf("resolver_cache.max_entries must be positive, got %d", c.ResolverCache.MaxEntries)
		}
		if c.ResolverCache.TTL <= 0 {
			return fmt.Errorf("resolver_cache.ttl must be positive, got %v", c.ResolverCache.TTL)
		}
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

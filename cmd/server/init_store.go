// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/bookrec/internal/cache"
	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/prefstore"
	"github.com/tomtom215/bookrec/internal/recommend"
)

// openStore opens the configured preference store and, when enabled, seeds
// a neutral global prior over the catalog vocabulary.
func openStore(ctx context.Context, cfg *config.Config, books *recommend.Catalog) (prefstore.Store, error) {
	store, err := prefstore.Open(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}

	if cfg.Store.SeedGlobal {
		prior := prefstore.GlobalProfileFromCatalog(books, cfg.Recommend.NeutralWeight)
		if _, err := prefstore.EnsureGlobal(ctx, store, prior); err != nil {
			// A remote store may come up later; degraded mode covers it.
			logging.Warn().Err(err).Str("backend", store.Backend()).Msg("Could not seed global preference prior")
		}
	}
	return store, nil
}

// engineConfig maps the recommend config section onto the pipeline config.
func engineConfig(cfg *config.Config) *recommend.Config {
	rc := recommend.DefaultConfig()
	rc.PriorStrength = cfg.Recommend.PriorStrength
	rc.Alpha = cfg.Recommend.Alpha
	rc.NeutralWeight = cfg.Recommend.NeutralWeight
	rc.FuzzyThreshold = cfg.Recommend.FuzzyThreshold
	rc.Epsilon = cfg.Recommend.Epsilon
	rc.MaxResults = cfg.Recommend.MaxResults
	rc.DegradedMode = cfg.Recommend.DegradedMode
	rc.SerializeUsers = cfg.Store.LockUsers
	rc.ResolverCache = recommend.ResolverCacheConfig{
		Enabled:    cfg.Recommend.ResolverCacheEnabled,
		MaxEntries: cfg.Recommend.ResolverCacheSize,
		TTL:        cfg.Recommend.ResolverCacheTTL,
	}
	return rc
}

// newEngine builds the pipeline over store. The returned cache is nil when
// resolution caching is off.
func newEngine(cfg *config.Config, model *recommend.Model, store prefstore.Store) (*recommend.Engine, *cache.LRUCache[recommend.Resolution], error) {
	rc := engineConfig(cfg)

	engine, err := recommend.NewEngine(rc, model, store, logging.WithComponent("recommend"))
	if err != nil {
		return nil, nil, fmt.Errorf("create recommendation engine: %w", err)
	}

	if rc.SerializeUsers {
		engine.SetUserLocker(prefstore.NewKeyedMutex())
	}
	if rc.DegradedMode {
		engine.SetFallbackGlobal(prefstore.DefaultGlobalProfile())
	}

	var resolutions *cache.LRUCache[recommend.Resolution]
	if rc.ResolverCache.Enabled {
		resolutions = cache.NewLRUCache[recommend.Resolution](rc.ResolverCache.MaxEntries, rc.ResolverCache.TTL)
		engine.SetResolutionCache(resolutions)
	}

	logging.Info().
		Float64("prior_strength", rc.PriorStrength).
		Float64("alpha", rc.Alpha).
		Int("fuzzy_threshold", rc.FuzzyThreshold).
		Bool("degraded_mode", rc.DegradedMode).
		Bool("serialize_users", rc.SerializeUsers).
		Bool("resolver_cache", rc.ResolverCache.Enabled).
		Msg("Recommendation engine initialized")

	return engine, resolutions, nil
}

// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/cache"
	"github.com/tomtom215/bookrec/internal/metrics"
)

const defaultJanitorInterval = time.Minute

// ExpiringCache is the part of cache.LRUCache the janitor drives.
type ExpiringCache interface {
	CleanupExpired() int
	Stats() cache.Stats
}

// CacheJanitorService sweeps expired title resolutions on a fixed interval
// and publishes the cache size and hit rate.
type CacheJanitorService struct {
	cache    ExpiringCache
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheJanitorService creates a janitor for c. A non-positive interval
// means one minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheJanitorService(c ExpiringCache, interval time.Duration, logger zerolog.Logger) *CacheJanitorService {
	if interval <= 0 {
		interval = defaultJanitorInterval
	}
	return &CacheJanitorService{
		cache:    c,
		interval: interval,
		logger:   logger.With().Str("service", "cache-janitor").Logger(),
		name:     "cache-janitor",
	}
}

// Serve implements suture.Service.
func (s *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *CacheJanitorService) sweep() {
	removed := s.cache.CleanupExpired()
	stats := s.cache.Stats()
	metrics.UpdateResolverCacheStats(stats.Size, stats.HitRate())

	if removed > 0 {
		s.logger.Debug().
			Int("removed", removed).
			Int("entries", stats.Size).
			Float64("hit_rate", stats.HitRate()).
			Msg("Expired title resolutions removed")
	}
}

// String implements fmt.Stringer.
func (s *CacheJanitorService) String() string {
	return s.name
}

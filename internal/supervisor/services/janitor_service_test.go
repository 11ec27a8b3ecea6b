// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/bookrec/internal/cache"
	"github.com/tomtom215/bookrec/internal/metrics"
)

var _ suture.Service = (*CacheJanitorService)(nil)

func TestCacheJanitorService_Sweeps(t *testing.T) {
	c := cache.NewLRUCache[string](10, 20*time.Millisecond)
	c.Add("dune", "Dune")
	c.Add("hyperion", "Hyperion")
	c.Get("dune")
	c.Get("missing")

	svc := NewCacheJanitorService(c, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve returned %v, want context.Canceled", err)
	}
	if c.Len() != 0 {
		t.Errorf("cache still holds %d expired entries", c.Len())
	}
	if got := testutil.ToFloat64(metrics.ResolverCacheEntries); got != 0 {
		t.Errorf("entries gauge = %v, want 0", got)
	}
	if got := testutil.ToFloat64(metrics.ResolverCacheHitRate); got != 0.5 {
		t.Errorf("hit rate gauge = %v, want 0.5", got)
	}
}

func TestNewCacheJanitorService_DefaultInterval(t *testing.T) {
	svc := NewCacheJanitorService(cache.NewLRUCache[int](1, time.Minute), 0, zerolog.Nop())
	if svc.interval != defaultJanitorInterval {
		t.Errorf("interval = %v, want %v", svc.interval, defaultJanitorInterval)
	}
	if svc.String() != "cache-janitor" {
		t.Errorf("String() = %q", svc.String())
	}
}

// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

HTTP Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)

Catalog Metrics:
  - catalog_books, catalog_feature_dimensions (gauges)
  - catalog_load_duration_seconds (histogram)

Recommendation Metrics:
  - recommendations_total: Pipeline runs (counter)
    Labels: outcome (success, degraded, no_match, store_error, error)
  - recommendation_duration_seconds (histogram)
  - title_resolutions_total: Input titles (counter)
    Labels: kind (exact, fuzzy, none)
  - resolver_cache_entries, resolver_cache_hit_rate (gauges)

Preference Store Metrics:
  - preference_store_operations_total (counter)
    Labels: backend, operation, result
  - preference_store_duration_seconds (histogram)
    Labels: backend, operation

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Labels name, result
  - circuit_breaker_consecutive_failures (gauge)
  - circuit_breaker_state_transitions_total: Labels name, from_state, to_state

Event Metrics:
  - events_published_total: Labels topic, result
  - events_consumed_total: Labels topic

# Usage

	start := time.Now()
	resp, err := engine.Recommend(ctx, req)
	metrics.RecordRecommendation(outcome, time.Since(start))

# Thread Safety

All recording functions are safe for concurrent use.
*/
package metrics

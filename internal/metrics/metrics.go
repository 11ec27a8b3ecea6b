// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Catalog Metrics
	CatalogBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_books",
			Help: "Number of books in the loaded catalog",
		},
	)

	CatalogFeatureDimensions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_feature_dimensions",
			Help: "Width of the one-hot feature matrix",
		},
	)

	CatalogLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_load_duration_seconds",
			Help:    "Time spent loading the catalog and building the feature index",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	// Recommendation Pipeline Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // "success", "degraded", "no_match", "conflict", "store_error", "error"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "End-to-end recommendation pipeline latency",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	TitleResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "title_resolutions_total",
			Help: "Input titles by resolution kind",
		},
		[]string{"kind"}, // "exact", "fuzzy", "none"
	)

	ResolverCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resolver_cache_entries",
			Help: "Current number of cached fuzzy title resolutions",
		},
	)

	ResolverCacheHitRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resolver_cache_hit_rate",
			Help: "Hit rate of the fuzzy title resolution cache (0-1)",
		},
	)

	// Preference Store Metrics
	PreferenceStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preference_store_operations_total",
			Help: "Preference store operations by backend, operation and result",
		},
		[]string{"backend", "operation", "result"}, // result: "success", "not_found", "conflict", "error"
	)

	PreferenceStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "preference_store_duration_seconds",
			Help:    "Preference store operation latency",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"backend", "operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events published by topic and result",
		},
		[]string{"topic", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Domain events received by the audit consumer",
		},
		[]string{"topic"},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCatalogLoad records the catalog shape after startup.
func RecordCatalogLoad(books, dimensions int, duration time.Duration) {
	CatalogBooks.Set(float64(books))
	CatalogFeatureDimensions.Set(float64(dimensions))
	CatalogLoadDuration.Observe(duration.Seconds())
}

// RecordRecommendation records one pipeline run.
func RecordRecommendation(outcome string, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordTitleResolution counts one resolved or unresolved input title.
func RecordTitleResolution(kind string) {
	TitleResolutions.WithLabelValues(kind).Inc()
}

// UpdateResolverCacheStats publishes the resolution cache gauges.
func UpdateResolverCacheStats(entries int, hitRate float64) {
	ResolverCacheEntries.Set(float64(entries))
	ResolverCacheHitRate.Set(hitRate)
}

// RecordStoreOperation records a preference store call. result is one of
// "success", "not_found", "conflict" or "error".
func RecordStoreOperation(backend, operation, result string, duration time.Duration) {
	PreferenceStoreOperations.WithLabelValues(backend, operation, result).Inc()
	PreferenceStoreDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordEventPublish records a publish attempt.
func RecordEventPublish(topic string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordEventConsumed records a received event.
func RecordEventConsumed(topic string) {
	EventsConsumed.WithLabelValues(topic).Inc()
}

// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package middleware provides the service's own HTTP middleware in the
// func(http.Handler) http.Handler shape chi expects.
//
//   - RequestID: X-Request-ID propagation and a request-scoped logger
//   - AccessLog: one structured log line per request
//   - PrometheusMetrics: request count, latency and in-flight gauges,
//     labelled by chi route pattern
//
// CORS, rate limiting, real IP and panic recovery come from go-chi.
package middleware

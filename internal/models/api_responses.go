// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package models

import (
	"time"
)

// APIResponse is the envelope for every /api/v1 response.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"recommended_titles": ["Dune Messiah", "Hyperion"]},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "request_id": "9b1d...", "query_time_ms": 4}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {
//	    "code": "NO_MATCHABLE_HISTORY",
//	    "message": "no matchable reading history: unresolved titles \"Dnue\"",
//	    "details": {"reason": "no_resolved_titles"}
//	  },
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is the machine-readable error body.
//
// Codes:
//   - VALIDATION_ERROR (400): malformed body or parameters
//   - NOT_FOUND (404): unknown user profile or book index
//   - PREFERENCE_CONFLICT (409): profile changed since it was read
//   - NO_MATCHABLE_HISTORY (422): no title resolved, or all matches weigh zero
//   - RATE_LIMIT_EXCEEDED (429)
//   - PREFERENCE_STORE_UNAVAILABLE (503)
//   - INTERNAL_ERROR (500)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes.
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "PREFERENCE_CONFLICT"
	ErrCodeNoMatch          = "NO_MATCHABLE_HISTORY"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeStoreUnavailable = "PREFERENCE_STORE_UNAVAILABLE"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	CatalogSize int               `json:"catalog_size"`
	Uptime      string            `json:"uptime"`
	Components  map[string]string `json:"components"`
}

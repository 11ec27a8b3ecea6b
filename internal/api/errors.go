// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/bookrec/internal/models"
	"github.com/tomtom215/bookrec/internal/prefstore"
	"github.com/tomtom215/bookrec/internal/recommend"
)

// apiFailure is an error translated for a response.
type apiFailure struct {
	status  int
	code    string
	message string
	details map[string]interface{}
}

// classifyError maps pipeline and store errors onto HTTP statuses.
// Store errors other than not-found and conflict are 503.
func classifyError(err error) apiFailure {
	var noMatch *recommend.NoMatchableHistoryError
	var storeErr *recommend.PreferenceStoreError

	switch {
	case errors.As(err, &noMatch):
		unresolved := noMatch.Unresolved
		if unresolved == nil {
			unresolved = []recommend.UnresolvedTitle{}
		}
		return apiFailure{
			status:  http.StatusUnprocessableEntity,
			code:    models.ErrCodeNoMatch,
			message: noMatch.Error(),
			details: map[string]interface{}{
				"reason":            noMatch.Reason,
				"unresolved_titles": unresolved,
			},
		}

	case errors.Is(err, prefstore.ErrVersionConflict):
		return apiFailure{
			status:  http.StatusConflict,
			code:    models.ErrCodeConflict,
			message: "preference profile was modified concurrently; re-read and retry",
		}

	case errors.Is(err, prefstore.ErrNotFound):
		return apiFailure{
			status:  http.StatusNotFound,
			code:    models.ErrCodeNotFound,
			message: "preference profile not found",
		}

	case errors.As(err, &storeErr):
		return apiFailure{
			status:  http.StatusServiceUnavailable,
			code:    models.ErrCodeStoreUnavailable,
			message: "preference store unavailable",
			details: map[string]interface{}{"operation": string(storeErr.Op)},
		}

	case errors.Is(err, prefstore.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return apiFailure{
			status:  http.StatusServiceUnavailable,
			code:    models.ErrCodeStoreUnavailable,
			message: "preference store unavailable",
		}

	default:
		return apiFailure{
			status:  http.StatusInternalServerError,
			code:    models.ErrCodeInternal,
			message: "internal error",
		}
	}
}

// classifyStoreError is classifyError for direct store calls, where any
// failure other than not-found and conflict means the store is unavailable.
func classifyStoreError(err error) apiFailure {
	f := classifyError(err)
	if f.status == http.StatusInternalServerError {
		f.status = http.StatusServiceUnavailable
		f.code = models.ErrCodeStoreUnavailable
		f.message = "preference store unavailable"
	}
	return f
}

// respondFailure writes err as an error envelope.
func respondFailure(w http.ResponseWriter, r *http.Request, f apiFailure, err error) {
	respondError(w, r, f.status, f.code, f.message, f.details, err)
}

// recommendOutcome labels a pipeline result for metrics.
func recommendOutcome(resp *recommend.Response, err error) string {
	switch {
	case err == nil && resp.Degraded:
		return "degraded"
	case err == nil:
		return "success"
	case errors.Is(err, recommend.ErrNoMatchableHistory):
		return "no_match"
	case errors.Is(err, prefstore.ErrVersionConflict):
		return "conflict"
	default:
		var storeErr *recommend.PreferenceStoreError
		if errors.As(err, &storeErr) {
			return "store_error"
		}
		return "error"
	}
}

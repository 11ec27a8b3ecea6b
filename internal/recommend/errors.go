// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyCatalog is returned when a catalog has no rows.
	ErrEmptyCatalog = errors.New("catalog is empty")

	// ErrCatalogTooSmall is returned when the catalog cannot support a
	// covariance estimate.
	ErrCatalogTooSmall = errors.New("catalog needs at least two books for whitening")

	// ErrNoMatchableHistory matches any *NoMatchableHistoryError via errors.Is.
	ErrNoMatchableHistory = errors.New("no matchable reading history")

	// ErrProfileNotFound is returned by a PreferenceStore for users that have
	// never been profiled.
	ErrProfileNotFound = errors.New("preference profile not found")

	// ErrVersionConflict is returned by a PreferenceStore when a conditional
	// write observes a different version than expected.
	ErrVersionConflict = errors.New("preference profile version conflict")
)

// Reasons reported by NoMatchableHistoryError.
const (
	ReasonNoResolvedTitles = "no_resolved_titles"
	ReasonZeroWeight       = "zero_weight"
)

// UnresolvedTitle records an input title that matched nothing closely
// enough. It is informational and never fails a request on its own.
type UnresolvedTitle struct {
	Title     string `json:"title"`
	BestMatch string `json:"best_match,omitempty"`
	BestScore int    `json:"best_score"`
}

// NoMatchableHistoryError means no user embedding could be formed: either
// no title resolved or every resolved book carries zero weight.
type NoMatchableHistoryError struct {
	Reason     string
	Unresolved []UnresolvedTitle
}

func (e *NoMatchableHistoryError) Error() string {
	switch e.Reason {
	case ReasonZeroWeight:
		return "no matchable reading history: all matched books have zero preference weight"
	default:
		if len(e.Unresolved) == 0 {
			return "no matchable reading history: no titles supplied"
		}
		titles := make([]string, len(e.Unresolved))
		for i, u := range e.Unresolved {
			titles[i] = fmt.Sprintf("%q", u.Title)
		}
		return "no matchable reading history: unresolved titles " + strings.Join(titles, ", ")
	}
}

// Is reports whether target is ErrNoMatchableHistory.
func (e *NoMatchableHistoryError) Is(target error) bool {
	return target == ErrNoMatchableHistory
}

// StoreOp names the preference store operation that failed.
type StoreOp string

const (
	OpGetUser   StoreOp = "get_user"
	OpGetGlobal StoreOp = "get_global"
	OpSetUser   StoreOp = "set_user"
)

// PreferenceStoreError wraps a failed preference store call.
type PreferenceStoreError struct {
	Op     StoreOp
	UserID string
	Err    error
}

func (e *PreferenceStoreError) Error() string {
	if e.UserID == "" {
		return fmt.Sprintf("preference store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("preference store %s (user %s): %v", e.Op, e.UserID, e.Err)
}

func (e *PreferenceStoreError) Unwrap() error {
	return e.Err
}

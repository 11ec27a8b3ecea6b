// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package prefstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/recommend"
)

var (
	// ErrNotFound is returned for users (or a global prior) never written.
	ErrNotFound = recommend.ErrProfileNotFound

	// ErrVersionConflict is returned when a conditional write observes a
	// different version than expected.
	ErrVersionConflict = recommend.ErrVersionConflict

	// ErrUnavailable is returned when the remote store's circuit breaker
	// rejects a call.
	ErrUnavailable = errors.New("preference store unavailable")
)

// Operation names used in metrics and logs.
const (
	opGetUser    = "get_user"
	opSetUser    = "set_user"
	opDeleteUser = "delete_user"
	opGetGlobal  = "get_global"
	opSetGlobal  = "set_global"
)

// Store is the full preference store surface: the pipeline's
// recommend.PreferenceStore plus administrative operations.
type Store interface {
	recommend.PreferenceStore

	// GetGlobalSnapshot returns the global prior with its version.
	GetGlobalSnapshot(ctx context.Context) (recommend.ProfileSnapshot, error)

	// SetGlobalPreferences replaces the global prior. expectedVersion
	// follows the same rules as SetUserPreferences.
	SetGlobalPreferences(ctx context.Context, profile recommend.PreferenceProfile, expectedVersion uint64) (uint64, error)

	// DeleteUserPreferences removes a user's profile. Deleting an absent
	// profile returns ErrNotFound.
	DeleteUserPreferences(ctx context.Context, userID string) error

	// Backend names the implementation ("badger", "http").
	Backend() string

	Close() error
}

// record is the stored representation of a profile.
type record struct {
	Version   uint64                      `json:"version"`
	UpdatedAt time.Time                   `json:"updated_at"`
	Profile   recommend.PreferenceProfile `json:"profile"`
}

func (r *record) snapshot() recommend.ProfileSnapshot {
	return recommend.ProfileSnapshot{Profile: r.Profile, Version: r.Version, UpdatedAt: r.UpdatedAt}
}

func decodeRecord(data []byte) (*record, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode preference record: %w", err)
	}
	return &r, nil
}

// Open creates the store selected by cfg.Backend.
func Open(cfg *config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "badger":
		return OpenBadger(&cfg.Badger)
	case "http":
		return NewHTTPStore(&cfg.HTTP)
	default:
		return nil, fmt.Errorf("unknown preference store backend %q", cfg.Backend)
	}
}

// EnsureGlobal writes profile as the global prior when none is stored and
// reports whether it did.
//
//nolint:gocritic // hugeParam: called once at startup
func EnsureGlobal(ctx context.Context, s Store, profile recommend.PreferenceProfile) (bool, error) {
	_, err := s.GetGlobalSnapshot(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("read global prior: %w", err)
	}

	if _, err := s.SetGlobalPreferences(ctx, profile, 0); err != nil {
		// Another instance seeded first.
		if errors.Is(err, ErrVersionConflict) {
			return false, nil
		}
		return false, fmt.Errorf("seed global prior: %w", err)
	}

	logging.Info().
		Str("backend", s.Backend()).
		Int("values", profile.Size()).
		Msg("Seeded global preference prior")
	return true, nil
}

// observe records an operation's outcome in metrics.
func observe(backend, op string, start time.Time, err error) {
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case errors.Is(err, ErrVersionConflict):
		result = "conflict"
	default:
		result = "error"
	}
	metrics.RecordStoreOperation(backend, op, result, time.Since(start))
}

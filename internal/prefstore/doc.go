// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package prefstore holds the durable homes of preference profiles.
//
// Two backends implement Store:
//
//   - BadgerStore: embedded BadgerDB, keys prefs:user:<id> and
//     prefs:global, JSON records carrying a version and update time.
//   - HTTPStore: client for the legacy preference service
//     (/user/{id}/preferences, /global/preferences), with versions in
//     ETag / If-Match headers, a gobreaker circuit breaker and a
//     client-side rate limiter.
//
// Writes are conditional: SetUserPreferences succeeds only when the stored
// version equals the expected one (zero meaning "not yet written") and
// otherwise returns ErrVersionConflict. KeyedMutex adds in-process per-user
// serialization on top.
package prefstore

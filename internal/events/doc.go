// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package events publishes PreferencesUpdated events after a profile is
// persisted and consumes them for auditing.
//
// Transport is Watermill over one of two backends:
//
//   - memory: gochannel.GoChannel, in-process only (default)
//   - nats: watermill-nats on core NATS, optionally against an
//     EmbeddedServer started by the process
//
// Publishing is best effort. The recommendation pipeline logs a failed
// publish and carries on; the profile write has already succeeded.
package events

// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package logging provides centralized zerolog-based structured logging for Bookrec.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Int("books", n).Msg("catalog loaded")
//	logging.Error().Err(err).Msg("preference store unavailable")
//
//	// Request-scoped logging (request_id and user_id from context)
//	logging.Ctx(ctx).Warn().Str("title", t).Msg("unresolved title")
//
// # Adapters
//
// Two adapters route third-party logging into the same output:
//
//   - SlogHandler implements slog.Handler, used by sutureslog for the
//     supervisor tree.
//   - WatermillAdapter implements watermill.LoggerAdapter, used by the
//     event publishers and subscribers.
//
// Always terminate event chains with Msg or Send; an unterminated chain
// emits nothing.
package logging

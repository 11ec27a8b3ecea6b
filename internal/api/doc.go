// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package api provides the HTTP surface of the recommendation service.

# Routes

Versioned routes answer with the models.APIResponse envelope:

	POST   /api/v1/recommendations
	GET    /api/v1/users/{userID}/preferences
	PUT    /api/v1/users/{userID}/preferences
	DELETE /api/v1/users/{userID}/preferences
	GET    /api/v1/global/preferences
	PUT    /api/v1/global/preferences
	GET    /api/v1/books/resolve?title=
	GET    /api/v1/books/{index}/similar?limit=

Legacy routes answer with bare JSON and {"detail": "..."} errors:

	POST   /recommendations
	GET    /user/{userID}/preferences
	POST   /user/{userID}/preferences
	DELETE /user/{userID}/preferences
	GET    /global/preferences
	POST   /global/preferences

The legacy preference routes carry the profile version in ETag and accept
If-Match / If-None-Match preconditions; they are the protocol spoken by
prefstore.HTTPStore.

Operational routes: GET /health and GET /metrics.

# Error Mapping

	no matchable history           422 NO_MATCHABLE_HISTORY
	version conflict               409 PREFERENCE_CONFLICT (412 on legacy conditional writes)
	profile or book not found      404 NOT_FOUND
	store failure or open breaker  503 PREFERENCE_STORE_UNAVAILABLE
	invalid request                400 VALIDATION_ERROR

# Middleware

Request id and access logging, real IP, panic recovery, go-chi/cors,
per-IP go-chi/httprate limits on API routes, and Prometheus
instrumentation labelled by route pattern.
*/
package api

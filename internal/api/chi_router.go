// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/bookrec/internal/middleware"
	"github.com/tomtom215/bookrec/internal/models"
)

// Rate limit scopes, used as the api_rate_limit_hits_total label.
const (
	rateLimitScopeV1     = "api_v1"
	rateLimitScopeLegacy = "legacy"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)        // X-Request-ID and request-scoped logger
	r.Use(middleware.AccessLog)        // One line per request
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "route not found", nil, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil, nil)
	})

	// ========================
	// Operational Endpoints
	// ========================
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// ========================
	// API v1
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit(rateLimitScopeV1))

		r.Post("/recommendations", h.Recommendations)

		r.Route("/users/{userID}/preferences", func(r chi.Router) {
			r.Get("/", h.GetUserPreferences)
			r.Put("/", h.PutUserPreferences)
			r.Delete("/", h.DeleteUserPreferences)
		})

		r.Route("/global/preferences", func(r chi.Router) {
			r.Get("/", h.GetGlobalPreferences)
			r.Put("/", h.PutGlobalPreferences)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/resolve", h.ResolveTitle)
			r.Get("/{index}/similar", h.SimilarBooks)
		})
	})

	// ========================
	// Legacy Endpoints
	// ========================
	// Bare JSON bodies; also the remote preference store protocol.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit(rateLimitScopeLegacy))

		r.Post("/recommendations", h.LegacyRecommendations)

		r.Get("/user/{userID}/preferences", h.LegacyGetUserPreferences)
		r.Post("/user/{userID}/preferences", h.LegacyPostUserPreferences)
		r.Delete("/user/{userID}/preferences", h.LegacyDeleteUserPreferences)

		r.Get("/global/preferences", h.LegacyGetGlobalPreferences)
		r.Post("/global/preferences", h.LegacyPostGlobalPreferences)
	})

	return r
}

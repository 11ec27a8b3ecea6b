// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"context"
	"time"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/prefstore"
	"github.com/tomtom215/bookrec/internal/recommend"
)

// defaultRequestTimeout bounds a single pipeline run including store calls.
const defaultRequestTimeout = 10 * time.Second

// Recommender is the part of recommend.Engine the handlers use.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	ResolveOne(title string) recommend.Resolution
	Similar(index, limit int) ([]recommend.Recommendation, error)
	Catalog() *recommend.Catalog
	GetMetrics() recommend.Metrics
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_recommend.go: recommendations, title resolution, similar books
//   - handlers_preferences.go: user and global profile administration
//   - handlers_legacy.go: bare-JSON routes spoken by older clients
//   - handlers_health.go: health
type Handler struct {
	engine         Recommender
	store          prefstore.Store
	config         *config.Config
	version        string
	startTime      time.Time
	requestTimeout time.Duration
	notifier       recommend.UpdateNotifier
}

var _ Recommender = (*recommend.Engine)(nil)

// NewHandler creates a handler serving engine and store.
//
// Example:
//
//	handler := api.NewHandler(engine, store, cfg, version)
//	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security))
//	http.ListenAndServe(":8001", router.SetupChi())
func NewHandler(engine Recommender, store prefstore.Store, cfg *config.Config, version string) *Handler {
	return &Handler{
		engine:         engine,
		store:          store,
		config:         cfg,
		version:        version,
		startTime:      time.Now(),
		requestTimeout: defaultRequestTimeout,
	}
}

// SetRequestTimeout overrides the per-request pipeline timeout.
func (h *Handler) SetRequestTimeout(d time.Duration) {
	if d > 0 {
		h.requestTimeout = d
	}
}

// SetNotifier publishes profile writes made through the preference routes.
func (h *Handler) SetNotifier(n recommend.UpdateNotifier) {
	h.notifier = n
}

func (h *Handler) maxBodyBytes() int64 {
	if h.config == nil {
		return defaultMaxBodyBytes
	}
	return h.config.Security.MaxBodyBytes
}

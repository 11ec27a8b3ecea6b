// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/bookrec/internal/models"
	"github.com/tomtom215/bookrec/internal/prefstore"
)

// healthCheckTimeout bounds the store read made by /health.
const healthCheckTimeout = 2 * time.Second

// breakerReporter is implemented by stores behind a circuit breaker.
type breakerReporter interface {
	BreakerState() string
}

// Health handles GET /health.
//
// The store is checked by reading the global prior; a missing prior still
// counts as reachable. Status is "healthy" or "degraded"; the response
// code is 200 either way.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	components := map[string]string{
		"catalog": "ok",
	}
	status := "healthy"

	if h.store != nil {
		components["store_backend"] = h.store.Backend()

		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		_, err := h.store.GetGlobalSnapshot(ctx)
		cancel()
		if err == nil || errors.Is(err, prefstore.ErrNotFound) {
			components["store"] = "ok"
		} else {
			components["store"] = "unavailable"
			status = "degraded"
		}

		if br, ok := h.store.(breakerReporter); ok {
			components["circuit_breaker"] = br.BreakerState()
		}
	}

	respondData(w, r, http.StatusOK, &models.HealthResponse{
		Status:      status,
		Version:     h.version,
		CatalogSize: h.engine.Catalog().Len(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Components:  components,
	}, start)
}

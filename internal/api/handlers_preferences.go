// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/models"
	"github.com/tomtom215/bookrec/internal/recommend"
	"github.com/tomtom215/bookrec/internal/validation"
)

// profileResource binds a stored profile (one user's, or the global
// prior) to read and conditional-write operations.
type profileResource struct {
	userID string
	get    func(ctx context.Context) (recommend.ProfileSnapshot, error)
	set    func(ctx context.Context, p recommend.PreferenceProfile, expected uint64) (uint64, error)
}

func (h *Handler) userResource(userID string) profileResource {
	return profileResource{
		userID: userID,
		get: func(ctx context.Context) (recommend.ProfileSnapshot, error) {
			return h.store.GetUserPreferences(ctx, userID)
		},
		set: func(ctx context.Context, p recommend.PreferenceProfile, expected uint64) (uint64, error) {
			return h.store.SetUserPreferences(ctx, userID, p, expected)
		},
	}
}

func (h *Handler) globalResource() profileResource {
	return profileResource{
		get: h.store.GetGlobalSnapshot,
		set: h.store.SetGlobalPreferences,
	}
}

// userIDParam reads and validates the {userID} path segment. chi matches
// on the escaped path, so the segment is unescaped here.
func userIDParam(r *http.Request) (string, *validation.RequestValidationError) {
	raw := chi.URLParam(r, "userID")
	userID, err := url.PathUnescape(raw)
	if err != nil {
		userID = raw
	}
	if verr := validation.ValidateUserID(userID); verr != nil {
		return "", verr
	}
	return userID, nil
}

// GetUserPreferences handles GET /api/v1/users/{userID}/preferences.
func (h *Handler) GetUserPreferences(w http.ResponseWriter, r *http.Request) {
	userID, verr := userIDParam(r)
	if verr != nil {
		respondValidation(w, r, verr)
		return
	}
	h.getProfile(w, r, h.userResource(userID))
}

// PutUserPreferences handles PUT /api/v1/users/{userID}/preferences.
// The body's version must equal the stored version (0 to create).
func (h *Handler) PutUserPreferences(w http.ResponseWriter, r *http.Request) {
	userID, verr := userIDParam(r)
	if verr != nil {
		respondValidation(w, r, verr)
		return
	}
	h.putProfile(w, r, h.userResource(userID))
}

// DeleteUserPreferences handles DELETE /api/v1/users/{userID}/preferences.
func (h *Handler) DeleteUserPreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, verr := userIDParam(r)
	if verr != nil {
		respondValidation(w, r, verr)
		return
	}

	if err := h.store.DeleteUserPreferences(r.Context(), userID); err != nil {
		respondFailure(w, r, classifyStoreError(err), err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", sanitizeLogValue(userID)).Msg("Deleted user preferences")
	respondData(w, r, http.StatusOK, map[string]interface{}{"user_id": userID, "deleted": true}, start)
}

// GetGlobalPreferences handles GET /api/v1/global/preferences.
func (h *Handler) GetGlobalPreferences(w http.ResponseWriter, r *http.Request) {
	h.getProfile(w, r, h.globalResource())
}

// PutGlobalPreferences handles PUT /api/v1/global/preferences.
func (h *Handler) PutGlobalPreferences(w http.ResponseWriter, r *http.Request) {
	h.putProfile(w, r, h.globalResource())
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request, res profileResource) {
	start := time.Now()

	snap, err := res.get(r.Context())
	if err != nil {
		respondFailure(w, r, classifyStoreError(err), err)
		return
	}
	respondData(w, r, http.StatusOK, models.NewProfileResponse(res.userID, snap), start)
}

func (h *Handler) putProfile(w http.ResponseWriter, r *http.Request, res profileResource) {
	start := time.Now()

	var req models.ProfileUpdateRequest
	if err := decodeJSON(w, r, h.maxBodyBytes(), &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	if verr := validation.ValidateProfile(req.Profile); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	version, err := res.set(r.Context(), req.Profile, req.Version)
	if err != nil {
		respondFailure(w, r, classifyStoreError(err), err)
		return
	}
	h.notifyUpdate(r, res.userID, req.Profile, version)

	status := http.StatusOK
	if req.Version == 0 {
		status = http.StatusCreated
	}
	respondData(w, r, status, &models.ProfileResponse{
		UserID:  res.userID,
		Version: version,
		Profile: req.Profile,
	}, start)
}

// notifyUpdate publishes an administrative write of a user profile.
// Global prior writes are not published.
//
//nolint:gocritic // hugeParam: profile forwarded once per write
func (h *Handler) notifyUpdate(r *http.Request, userID string, profile recommend.PreferenceProfile, version uint64) {
	if h.notifier == nil || userID == "" {
		return
	}
	err := h.notifier.NotifyProfileUpdated(r.Context(), recommend.ProfileUpdate{
		UserID:    userID,
		Version:   version,
		Profile:   profile,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Uint64("version", version).Msg("failed to publish profile update")
	}
}

// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/bookrec/internal/models"
	"github.com/tomtom215/bookrec/internal/prefstore"
	"github.com/tomtom215/bookrec/internal/recommend"
	"github.com/tomtom215/bookrec/internal/validation"
)

// Legacy routes answer with bare JSON bodies and {"detail": "..."} errors.
// The preference routes also form the wire protocol of prefstore.HTTPStore,
// so one instance can serve as another's remote store.

type legacyError struct {
	Detail string `json:"detail"`
}

func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, legacyError{Detail: detail})
}

func respondLegacyFailure(w http.ResponseWriter, r *http.Request, f apiFailure, err error) {
	if f.status >= http.StatusInternalServerError {
		logAPIError(r, f.status, f.code, err)
	}
	respondDetail(w, f.status, f.message)
}

// LegacyRecommendations handles POST /recommendations.
func (h *Handler) LegacyRecommendations(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendationRequest
	if err := decodeJSON(w, r, h.maxBodyBytes(), &req); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		respondDetail(w, status, err.Error())
		return
	}
	if verr := validateRequest(&req); verr != nil {
		respondDetail(w, http.StatusUnprocessableEntity, verr.Error())
		return
	}

	resp, err := h.runRecommendation(r, &req)
	if err != nil {
		respondLegacyFailure(w, r, classifyError(err), err)
		return
	}

	respondJSON(w, http.StatusOK, models.LegacyRecommendationResponse{RecommendedTitles: resp.Titles()})
}

// LegacyGetUserPreferences handles GET /user/{userID}/preferences.
func (h *Handler) LegacyGetUserPreferences(w http.ResponseWriter, r *http.Request) {
	userID, verr := userIDParam(r)
	if verr != nil {
		respondDetail(w, http.StatusBadRequest, verr.Error())
		return
	}
	h.legacyGet(w, r, h.userResource(userID))
}

// LegacyPostUserPreferences handles POST /user/{userID}/preferences.
func (h *Handler) LegacyPostUserPreferences(w http.ResponseWriter, r *http.Request) {
	userID, verr := userIDParam(r)
	if verr != nil {
		respondDetail(w, http.StatusBadRequest, verr.Error())
		return
	}
	h.legacyPost(w, r, h.userResource(userID))
}

// LegacyDeleteUserPreferences handles DELETE /user/{userID}/preferences.
func (h *Handler) LegacyDeleteUserPreferences(w http.ResponseWriter, r *http.Request) {
	userID, verr := userIDParam(r)
	if verr != nil {
		respondDetail(w, http.StatusBadRequest, verr.Error())
		return
	}
	if err := h.store.DeleteUserPreferences(r.Context(), userID); err != nil {
		respondLegacyFailure(w, r, classifyStoreError(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LegacyGetGlobalPreferences handles GET /global/preferences.
func (h *Handler) LegacyGetGlobalPreferences(w http.ResponseWriter, r *http.Request) {
	h.legacyGet(w, r, h.globalResource())
}

// LegacyPostGlobalPreferences handles POST /global/preferences.
func (h *Handler) LegacyPostGlobalPreferences(w http.ResponseWriter, r *http.Request) {
	h.legacyPost(w, r, h.globalResource())
}

// legacyGet writes the bare profile with its version as ETag.
func (h *Handler) legacyGet(w http.ResponseWriter, r *http.Request, res profileResource) {
	snap, err := res.get(r.Context())
	if err != nil {
		respondLegacyFailure(w, r, classifyStoreError(err), err)
		return
	}

	setVersionHeaders(w, snap)
	if match := r.Header.Get("If-None-Match"); match != "" {
		if v, ok := prefstore.ParseETag(match); ok && v == snap.Version {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	respondJSON(w, http.StatusOK, snap.Profile)
}

// legacyPost replaces the profile. Preconditions:
//
//	If-None-Match: *   create only
//	If-Match: "<v>"    replace version v
//	neither            replace whatever is stored
//
// A failed precondition is 412; a lost race without one is 409.
func (h *Handler) legacyPost(w http.ResponseWriter, r *http.Request, res profileResource) {
	expected, conditional, ok := parsePreconditions(r)
	if !ok {
		respondDetail(w, http.StatusBadRequest, "malformed If-Match header")
		return
	}

	var profile recommend.PreferenceProfile
	if err := decodeJSON(w, r, h.maxBodyBytes(), &profile); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if verr := validation.ValidateProfile(profile); verr != nil {
		respondDetail(w, http.StatusUnprocessableEntity, verr.Error())
		return
	}

	if !conditional {
		snap, err := res.get(r.Context())
		switch {
		case err == nil:
			expected = snap.Version
		case errors.Is(err, prefstore.ErrNotFound):
			expected = 0
		default:
			respondLegacyFailure(w, r, classifyStoreError(err), err)
			return
		}
	}

	version, err := res.set(r.Context(), profile, expected)
	if err != nil {
		f := classifyStoreError(err)
		if conditional && f.status == http.StatusConflict {
			f.status = http.StatusPreconditionFailed
		}
		respondLegacyFailure(w, r, f, err)
		return
	}
	h.notifyUpdate(r, res.userID, profile, version)

	w.Header().Set("ETag", prefstore.FormatETag(version))
	respondJSON(w, http.StatusOK, profile)
}

// parsePreconditions reads If-None-Match / If-Match. ok is false for an
// If-Match value that is not a version tag.
func parsePreconditions(r *http.Request) (expected uint64, conditional, ok bool) {
	if strings.TrimSpace(r.Header.Get("If-None-Match")) == "*" {
		return 0, true, true
	}
	match := r.Header.Get("If-Match")
	if match == "" {
		return 0, false, true
	}
	v, parsed := prefstore.ParseETag(match)
	if !parsed {
		return 0, false, false
	}
	return v, true, true
}

//nolint:gocritic // hugeParam: snapshot read once per request
func setVersionHeaders(w http.ResponseWriter, snap recommend.ProfileSnapshot) {
	w.Header().Set("ETag", prefstore.FormatETag(snap.Version))
	if !snap.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", snap.UpdatedAt.UTC().Format(http.TimeFormat))
	}
}

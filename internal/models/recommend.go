// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package models

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/bookrec/internal/recommend"
)

// UserID accepts either a JSON string or a JSON integer. Older clients
// send numeric user ids.
type UserID string

// UnmarshalJSON implements json.Unmarshaler.
func (u *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UserID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("user_id must be a string or an integer: %s", data)
	}
	*u = UserID(strconv.FormatInt(n, 10))
	return nil
}

// RecommendationRequest is the body of POST /api/v1/recommendations and
// of the legacy POST /recommendations.
type RecommendationRequest struct {
	UserID UserID   `json:"user_id" validate:"required,max=128,userid"`
	Titles []string `json:"user_book_titles" validate:"max=200,dive,max=512,booktitle"`
	Limit  int      `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// RecommendationResponse is the data of a successful recommendation.
type RecommendationResponse struct {
	RecommendedTitles []string                    `json:"recommended_titles"`
	Recommendations   []recommend.Recommendation  `json:"recommendations"`
	UnresolvedTitles  []recommend.UnresolvedTitle `json:"unresolved_titles"`
	Matched           []recommend.Resolution      `json:"matched"`
	Degraded          bool                        `json:"degraded"`
	ProfileVersion    uint64                      `json:"profile_version"`
}

// NewRecommendationResponse converts an engine response.
func NewRecommendationResponse(r *recommend.Response) *RecommendationResponse {
	out := &RecommendationResponse{
		RecommendedTitles: r.Titles(),
		Recommendations:   r.Recommendations,
		UnresolvedTitles:  r.Unresolved,
		Matched:           r.Matched,
		Degraded:          r.Degraded,
		ProfileVersion:    r.ProfileVersion,
	}
	if out.Recommendations == nil {
		out.Recommendations = []recommend.Recommendation{}
	}
	if out.UnresolvedTitles == nil {
		out.UnresolvedTitles = []recommend.UnresolvedTitle{}
	}
	if out.Matched == nil {
		out.Matched = []recommend.Resolution{}
	}
	return out
}

// LegacyRecommendationResponse is the bare body of POST /recommendations.
type LegacyRecommendationResponse struct {
	RecommendedTitles []string `json:"recommended_titles"`
}

// ProfileResponse carries a stored profile with its version.
type ProfileResponse struct {
	UserID    string                      `json:"user_id,omitempty"`
	Version   uint64                      `json:"version"`
	UpdatedAt *time.Time                  `json:"updated_at,omitempty"`
	Profile   recommend.PreferenceProfile `json:"profile"`
}

// NewProfileResponse converts a snapshot.
//
//nolint:gocritic // hugeParam: snapshot copied once per response
func NewProfileResponse(userID string, snap recommend.ProfileSnapshot) *ProfileResponse {
	out := &ProfileResponse{UserID: userID, Version: snap.Version, Profile: snap.Profile}
	if !snap.UpdatedAt.IsZero() {
		t := snap.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// ProfileUpdateRequest is the body of PUT .../preferences. Version is the
// version the client last read; zero creates.
type ProfileUpdateRequest struct {
	Version uint64                      `json:"version"`
	Profile recommend.PreferenceProfile `json:"profile"`
}

// ResolveResponse is returned by GET /api/v1/books/resolve.
type ResolveResponse struct {
	recommend.Resolution
	Resolved bool            `json:"resolved"`
	Book     *recommend.Book `json:"book,omitempty"`
}

// SimilarResponse is returned by GET /api/v1/books/{index}/similar.
type SimilarResponse struct {
	Book    recommend.Book             `json:"book"`
	Similar []recommend.Recommendation `json:"similar"`
}

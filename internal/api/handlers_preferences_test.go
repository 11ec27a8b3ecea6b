// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/bookrec/internal/models"
)

const sampleProfile = `{"Main Genre":{"Fiction":0.8},"Sub Genre":{"SciFi":0.9},"Type":{},"Author":{"Frank Herbert":1}}`

func TestUserPreferences_Lifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	notifier := &recordingNotifier{}
	env.handler.SetNotifier(notifier)

	path := "/api/v1/users/reader-9/preferences"

	expectError(t, env.do(t, http.MethodGet, path, ""), http.StatusNotFound, models.ErrCodeNotFound)

	rec := env.do(t, http.MethodPut, path, `{"version":0,"profile":`+sampleProfile+`}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var created models.ProfileResponse
	envelope(t, rec, &created)
	if created.Version != 1 || created.UserID != "reader-9" {
		t.Errorf("created = %+v", created)
	}

	rec = env.do(t, http.MethodGet, path, "")
	var got models.ProfileResponse
	envelope(t, rec, &got)
	if got.Version != 1 || got.UpdatedAt == nil {
		t.Errorf("got = %+v", got)
	}
	if w, _ := got.Profile.SubGenre.Get("SciFi"); w != 0.9 {
		t.Errorf("SciFi weight = %v", w)
	}

	// Stale version.
	expectError(t, env.do(t, http.MethodPut, path, `{"version":0,"profile":`+sampleProfile+`}`),
		http.StatusConflict, models.ErrCodeConflict)

	rec = env.do(t, http.MethodPut, path, `{"version":1,"profile":`+sampleProfile+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var updated models.ProfileResponse
	envelope(t, rec, &updated)
	if updated.Version != 2 {
		t.Errorf("updated version = %d", updated.Version)
	}

	if rec := env.do(t, http.MethodDelete, path, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	expectError(t, env.do(t, http.MethodDelete, path, ""), http.StatusNotFound, models.ErrCodeNotFound)
	expectError(t, env.do(t, http.MethodGet, path, ""), http.StatusNotFound, models.ErrCodeNotFound)

	updates := notifier.all()
	if len(updates) != 2 {
		t.Fatalf("notifications = %d, want 2", len(updates))
	}
	if updates[0].UserID != "reader-9" || updates[0].Version != 1 || updates[1].Version != 2 {
		t.Errorf("notifications = %+v", updates)
	}
}

func TestUserPreferences_EscapedUserID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/users/team%2Falice/preferences", `{"profile":`+sampleProfile+`}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var created models.ProfileResponse
	envelope(t, rec, &created)
	if created.UserID != "team/alice" {
		t.Errorf("user_id = %q", created.UserID)
	}
}

func TestUserPreferences_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"control char in id", http.MethodGet, "/api/v1/users/a%0Ab/preferences", "", http.StatusBadRequest},
		{"blank id", http.MethodGet, "/api/v1/users/%20/preferences", "", http.StatusBadRequest},
		{"negative weight", http.MethodPut, "/api/v1/users/u/preferences", `{"profile":{"Main Genre":{"Fiction":-1}}}`, http.StatusBadRequest},
		{"blank value", http.MethodPut, "/api/v1/users/u/preferences", `{"profile":{"Author":{"":0.5}}}`, http.StatusBadRequest},
		{"malformed body", http.MethodPut, "/api/v1/users/u/preferences", `{"profile":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			expectError(t, env.do(t, tt.method, tt.path, tt.body), tt.status, models.ErrCodeValidation)
		})
	}
}

func TestGlobalPreferences(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/global/preferences", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var seeded models.ProfileResponse
	envelope(t, rec, &seeded)
	if seeded.Version != 1 {
		t.Errorf("seeded version = %d", seeded.Version)
	}
	if w, ok := seeded.Profile.Author.Get("Tara Westover"); !ok || w != 0.5 {
		t.Errorf("seeded prior missing catalog author: %v %v", w, ok)
	}

	expectError(t, env.do(t, http.MethodPut, "/api/v1/global/preferences", `{"version":0,"profile":`+sampleProfile+`}`),
		http.StatusConflict, models.ErrCodeConflict)

	rec = env.do(t, http.MethodPut, "/api/v1/global/preferences", `{"version":1,"profile":`+sampleProfile+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var updated models.ProfileResponse
	envelope(t, rec, &updated)
	if updated.Version != 2 || updated.UserID != "" {
		t.Errorf("updated = %+v", updated)
	}
}

func TestPreferences_StoreUnavailable(t *testing.T) {
	t.Parallel()
	env := newFailingEnv(t, false)

	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/v1/users/u/preferences", ""},
		{http.MethodPut, "/api/v1/users/u/preferences", `{"profile":` + sampleProfile + `}`},
		{http.MethodDelete, "/api/v1/users/u/preferences", ""},
		{http.MethodGet, "/api/v1/global/preferences", ""},
	} {
		expectError(t, env.do(t, tc.method, tc.path, tc.body), http.StatusServiceUnavailable, models.ErrCodeStoreUnavailable)
	}
}

// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/tomtom215/bookrec/internal/models"
	"github.com/tomtom215/bookrec/internal/prefstore"
	"github.com/tomtom215/bookrec/internal/recommend"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "no matchable history",
			err:    &recommend.NoMatchableHistoryError{Reason: recommend.ReasonNoResolvedTitles},
			status: http.StatusUnprocessableEntity,
			code:   models.ErrCodeNoMatch,
		},
		{
			name:   "conflict inside store error",
			err:    &recommend.PreferenceStoreError{Op: recommend.OpSetUser, UserID: "u", Err: prefstore.ErrVersionConflict},
			status: http.StatusConflict,
			code:   models.ErrCodeConflict,
		},
		{
			name:   "not found",
			err:    fmt.Errorf("lookup: %w", prefstore.ErrNotFound),
			status: http.StatusNotFound,
			code:   models.ErrCodeNotFound,
		},
		{
			name:   "store failure",
			err:    &recommend.PreferenceStoreError{Op: recommend.OpGetGlobal, Err: errDiskFull},
			status: http.StatusServiceUnavailable,
			code:   models.ErrCodeStoreUnavailable,
		},
		{
			name:   "breaker open",
			err:    fmt.Errorf("%w: open", prefstore.ErrUnavailable),
			status: http.StatusServiceUnavailable,
			code:   models.ErrCodeStoreUnavailable,
		},
		{
			name:   "deadline",
			err:    context.DeadlineExceeded,
			status: http.StatusServiceUnavailable,
			code:   models.ErrCodeStoreUnavailable,
		},
		{
			name:   "unknown",
			err:    errDiskFull,
			status: http.StatusInternalServerError,
			code:   models.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := classifyError(tt.err)
			if f.status != tt.status || f.code != tt.code {
				t.Errorf("classifyError = (%d, %s), want (%d, %s)", f.status, f.code, tt.status, tt.code)
			}
			if f.message == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestClassifyError_Details(t *testing.T) {
	t.Parallel()

	f := classifyError(&recommend.PreferenceStoreError{Op: recommend.OpGetUser, UserID: "u", Err: errDiskFull})
	if f.details["operation"] != "get_user" {
		t.Errorf("operation detail = %v", f.details["operation"])
	}
	if f.message != "preference store unavailable" {
		t.Errorf("message leaks cause: %q", f.message)
	}

	f = classifyError(&recommend.NoMatchableHistoryError{Reason: recommend.ReasonZeroWeight})
	if f.details["reason"] != recommend.ReasonZeroWeight {
		t.Errorf("reason detail = %v", f.details["reason"])
	}
	if u, ok := f.details["unresolved_titles"].([]recommend.UnresolvedTitle); !ok || u == nil {
		t.Errorf("unresolved_titles = %#v, want empty slice", f.details["unresolved_titles"])
	}
}

func TestClassifyStoreError(t *testing.T) {
	t.Parallel()

	if f := classifyStoreError(errDiskFull); f.status != http.StatusServiceUnavailable {
		t.Errorf("raw store error status = %d", f.status)
	}
	if f := classifyStoreError(prefstore.ErrNotFound); f.status != http.StatusNotFound {
		t.Errorf("not found status = %d", f.status)
	}
}

func TestRecommendOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp *recommend.Response
		err  error
		want string
	}{
		{"success", &recommend.Response{}, nil, "success"},
		{"degraded", &recommend.Response{Degraded: true}, nil, "degraded"},
		{"no match", nil, &recommend.NoMatchableHistoryError{Reason: recommend.ReasonNoResolvedTitles}, "no_match"},
		{"conflict", nil, &recommend.PreferenceStoreError{Op: recommend.OpSetUser, Err: prefstore.ErrVersionConflict}, "conflict"},
		{"store", nil, &recommend.PreferenceStoreError{Op: recommend.OpGetUser, Err: errDiskFull}, "store_error"},
		{"other", nil, errDiskFull, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := recommendOutcome(tt.resp, tt.err); got != tt.want {
				t.Errorf("recommendOutcome = %q, want %q", got, tt.want)
			}
		})
	}
}

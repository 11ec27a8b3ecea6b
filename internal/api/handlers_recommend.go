// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/models"
	"github.com/tomtom215/bookrec/internal/recommend"
)

// Recommendations handles POST /api/v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RecommendationRequest
	if err := decodeJSON(w, r, h.maxBodyBytes(), &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	resp, err := h.runRecommendation(r, &req)
	if err != nil {
		respondFailure(w, r, classifyError(err), err)
		return
	}

	respondData(w, r, http.StatusOK, models.NewRecommendationResponse(resp), start)
}

// runRecommendation executes the pipeline with the request timeout and
// records its metrics.
func (h *Handler) runRecommendation(r *http.Request, req *models.RecommendationRequest) (*recommend.Response, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := h.engine.Recommend(ctx, recommend.Request{
		UserID:    string(req.UserID),
		Titles:    req.Titles,
		Limit:     req.Limit,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	metrics.RecordRecommendation(recommendOutcome(resp, err), time.Since(start))
	recordResolutions(resp, err)

	return resp, err
}

func recordResolutions(resp *recommend.Response, err error) {
	if resp != nil {
		for i := range resp.Matched {
			metrics.RecordTitleResolution(string(resp.Matched[i].Kind))
		}
		for range resp.Unresolved {
			metrics.RecordTitleResolution(string(recommend.MatchNone))
		}
		return
	}

	var noMatch *recommend.NoMatchableHistoryError
	if errors.As(err, &noMatch) {
		for range noMatch.Unresolved {
			metrics.RecordTitleResolution(string(recommend.MatchNone))
		}
	}
}

// resolveQuery holds the validated parameters of GET /api/v1/books/resolve.
type resolveQuery struct {
	Title string `json:"title" validate:"required,max=512,booktitle"`
}

// ResolveTitle handles GET /api/v1/books/resolve?title=.
// An unmatched title is a successful response with resolved=false.
func (h *Handler) ResolveTitle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := resolveQuery{Title: r.URL.Query().Get("title")}
	if verr := validateRequest(&q); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	res := h.engine.ResolveOne(q.Title)
	metrics.RecordTitleResolution(string(res.Kind))

	out := &models.ResolveResponse{Resolution: res, Resolved: res.Resolved()}
	if out.Resolved {
		if book, err := h.engine.Catalog().Book(res.Index); err == nil {
			out.Book = &book
		}
	}
	respondData(w, r, http.StatusOK, out, start)
}

// maxSimilarLimit caps ?limit= on the similar-books route.
const maxSimilarLimit = 100

// SimilarBooks handles GET /api/v1/books/{index}/similar?limit=.
// It never reads or writes preferences.
func (h *Handler) SimilarBooks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "index must be an integer", nil, nil)
		return
	}
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil, nil)
		return
	}
	if limit < 0 || limit > maxSimilarLimit {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
			"limit must be between 0 and "+strconv.Itoa(maxSimilarLimit), nil, nil)
		return
	}

	book, err := h.engine.Catalog().Book(index)
	if err != nil {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "book index out of range", nil, nil)
		return
	}

	similar, err := h.engine.Similar(index, limit)
	if err != nil {
		respondFailure(w, r, classifyError(err), err)
		return
	}
	if similar == nil {
		similar = []recommend.Recommendation{}
	}

	respondData(w, r, http.StatusOK, &models.SimilarResponse{Book: book, Similar: similar}, start)
}

// respondDecodeError maps body decoding failures.
func respondDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, errBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	respondError(w, r, status, models.ErrCodeValidation, err.Error(), nil, nil)
}

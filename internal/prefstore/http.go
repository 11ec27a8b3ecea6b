// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package prefstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/recommend"
)

const (
	httpBackend = "http"
	breakerName = "preference-service"

	// maxErrorBodySize bounds how much of an error response is kept.
	maxErrorBodySize = 4 * 1024
)

// HTTPStore is a client for the remote preference service. Profiles travel
// as bare category-keyed JSON and versions travel in ETag headers.
//
// Every call passes the client-side rate limiter and then the circuit
// breaker. Calls are never retried.
type HTTPStore struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[*reply]
}

var _ Store = (*HTTPStore)(nil)

// reply is the part of a response the store cares about.
type reply struct {
	version      uint64
	lastModified time.Time
	body         []byte
}

// NewHTTPStore builds a client from cfg.
func NewHTTPStore(cfg *config.HTTPStoreConfig) (*HTTPStore, error) {
	if _, err := url.Parse(cfg.BaseURL); err != nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("invalid preference service url %q", cfg.BaseURL)
	}

	s := &HTTPStore{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.MaxRPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MaxRPS), burst)
	}
	s.cb = newBreaker(&cfg.Breaker)
	return s, nil
}

func newBreaker(cfg *config.BreakerConfig) *gobreaker.CircuitBreaker[*reply] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	minRequests := cfg.MinRequests
	ratio := cfg.FailureRatio

	return gobreaker.NewCircuitBreaker[*reply](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio < ratio {
				return false
			}
			logging.Warn().
				Uint32("failures", counts.TotalFailures).
				Float64("failure_rate", failureRatio*100).
				Msg("[CIRCUIT BREAKER] Opening circuit")
			return true
		},

		// Answers the service gave on purpose are not failures.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, ErrVersionConflict) ||
				errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
}

// Backend implements Store.
func (s *HTTPStore) Backend() string { return httpBackend }

// Close implements Store.
func (s *HTTPStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// BreakerState returns the circuit breaker state for health reporting.
func (s *HTTPStore) BreakerState() string {
	return stateToString(s.cb.State())
}

// GetUserPreferences implements recommend.PreferenceStore.
func (s *HTTPStore) GetUserPreferences(ctx context.Context, userID string) (snap recommend.ProfileSnapshot, err error) {
	defer func(start time.Time) { observe(httpBackend, opGetUser, start, err) }(time.Now())
	return s.getProfile(ctx, s.userPath(userID))
}

// GetGlobalPreferences implements recommend.PreferenceStore.
func (s *HTTPStore) GetGlobalPreferences(ctx context.Context) (recommend.PreferenceProfile, error) {
	snap, err := s.GetGlobalSnapshot(ctx)
	if err != nil {
		return recommend.PreferenceProfile{}, err
	}
	return snap.Profile, nil
}

// GetGlobalSnapshot implements Store.
func (s *HTTPStore) GetGlobalSnapshot(ctx context.Context) (snap recommend.ProfileSnapshot, err error) {
	defer func(start time.Time) { observe(httpBackend, opGetGlobal, start, err) }(time.Now())
	return s.getProfile(ctx, "/global/preferences")
}

// SetUserPreferences implements recommend.PreferenceStore.
func (s *HTTPStore) SetUserPreferences(ctx context.Context, userID string, profile recommend.PreferenceProfile, expectedVersion uint64) (version uint64, err error) {
	defer func(start time.Time) { observe(httpBackend, opSetUser, start, err) }(time.Now())
	return s.putProfile(ctx, s.userPath(userID), &profile, expectedVersion)
}

// SetGlobalPreferences implements Store.
func (s *HTTPStore) SetGlobalPreferences(ctx context.Context, profile recommend.PreferenceProfile, expectedVersion uint64) (version uint64, err error) {
	defer func(start time.Time) { observe(httpBackend, opSetGlobal, start, err) }(time.Now())
	return s.putProfile(ctx, "/global/preferences", &profile, expectedVersion)
}

// DeleteUserPreferences implements Store.
func (s *HTTPStore) DeleteUserPreferences(ctx context.Context, userID string) (err error) {
	defer func(start time.Time) { observe(httpBackend, opDeleteUser, start, err) }(time.Now())
	_, err = s.do(ctx, http.MethodDelete, s.userPath(userID), nil, nil)
	return err
}

func (s *HTTPStore) userPath(userID string) string {
	return "/user/" + url.PathEscape(userID) + "/preferences"
}

func (s *HTTPStore) getProfile(ctx context.Context, path string) (recommend.ProfileSnapshot, error) {
	r, err := s.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return recommend.ProfileSnapshot{}, err
	}

	var profile recommend.PreferenceProfile
	if err := json.Unmarshal(r.body, &profile); err != nil {
		return recommend.ProfileSnapshot{}, fmt.Errorf("decode preference profile: %w", err)
	}
	return recommend.ProfileSnapshot{Profile: profile, Version: r.version, UpdatedAt: r.lastModified}, nil
}

func (s *HTTPStore) putProfile(ctx context.Context, path string, profile *recommend.PreferenceProfile, expectedVersion uint64) (uint64, error) {
	body, err := json.Marshal(profile)
	if err != nil {
		return 0, fmt.Errorf("marshal profile: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	if expectedVersion == 0 {
		header.Set("If-None-Match", "*")
	} else {
		header.Set("If-Match", FormatETag(expectedVersion))
	}

	r, err := s.do(ctx, http.MethodPost, path, body, header)
	if err != nil {
		return 0, err
	}
	if r.version == 0 {
		// Services that do not echo an ETag advance by one.
		return expectedVersion + 1, nil
	}
	return r.version, nil
}

// do sends one request through the limiter and the breaker.
func (s *HTTPStore) do(ctx context.Context, method, path string, body []byte, header http.Header) (*reply, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	r, err := s.cb.Execute(func() (*reply, error) {
		return s.send(ctx, method, path, body, header)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		logging.Warn().Err(err).Str("path", path).Msg("[CIRCUIT BREAKER] Request rejected")
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	case err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrVersionConflict):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		counts := s.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(float64(counts.ConsecutiveFailures))
		return nil, err
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)
	return r, nil
}

func (s *HTTPStore) send(ctx context.Context, method, path string, body []byte, header http.Header) (*reply, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusPreconditionFailed, http.StatusConflict:
		return nil, fmt.Errorf("%w: %s %s", ErrVersionConflict, method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%s %s: preference service returned %d: %s",
			method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	r := &reply{body: data}
	if v, ok := ParseETag(resp.Header.Get("ETag")); ok {
		r.version = v
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			r.lastModified = t
		}
	}
	return r, nil
}

// FormatETag renders a profile version as a strong entity tag.
func FormatETag(version uint64) string {
	return `"` + strconv.FormatUint(version, 10) + `"`
}

// ParseETag extracts a version from an entity tag, accepting weak tags.
func ParseETag(tag string) (uint64, bool) {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "W/")
	tag = strings.Trim(tag, `"`)
	if tag == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(tag, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

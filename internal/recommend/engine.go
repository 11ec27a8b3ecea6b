// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages. The
// store, lock and notifier are injected through the interfaces below.

// PreferenceStore is the durable home of per-user and global profiles.
type PreferenceStore interface {
	// GetUserPreferences returns the stored profile or ErrProfileNotFound.
	GetUserPreferences(ctx context.Context, userID string) (ProfileSnapshot, error)

	// GetGlobalPreferences returns the catalog-wide prior. It defines the
	// full vocabulary of every updated profile.
	GetGlobalPreferences(ctx context.Context) (PreferenceProfile, error)

	// SetUserPreferences writes profile if the stored version equals
	// expectedVersion (zero meaning absent) and returns the new version.
	// A mismatch returns ErrVersionConflict.
	SetUserPreferences(ctx context.Context, userID string, profile PreferenceProfile, expectedVersion uint64) (uint64, error)
}

// UserLocker serializes work per user. Lock returns the unlock function.
type UserLocker interface {
	Lock(userID string) func()
}

// ProfileUpdate describes a successfully persisted profile.
type ProfileUpdate struct {
	UserID    string
	Version   uint64
	Profile   PreferenceProfile
	RequestID string
}

// UpdateNotifier is told about every persisted profile.
type UpdateNotifier interface {
	NotifyProfileUpdated(ctx context.Context, update ProfileUpdate) error
}

// Model is the immutable catalog context shared by every request.
type Model struct {
	Catalog  *Catalog
	Features *FeatureIndex
	BuiltAt  time.Time
}

// BuildModel builds the feature index for c.
func BuildModel(c *Catalog, epsilon float64) (*Model, error) {
	fi, err := BuildFeatureIndex(c, epsilon)
	if err != nil {
		return nil, fmt.Errorf("build feature index: %w", err)
	}
	return &Model{Catalog: c, Features: fi, BuiltAt: time.Now()}, nil
}

// Engine runs the resolve, update, persist and score pipeline. It is safe
// for concurrent use.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	model    *Model
	resolver *TitleResolver
	scorer   *Scorer
	updater  PreferenceUpdater
	store    PreferenceStore
	locker   UserLocker
	notifier UpdateNotifier
	fallback PreferenceProfile

	requestCount    atomic.Int64
	errorCount      atomic.Int64
	noMatchCount    atomic.Int64
	degradedCount   atomic.Int64
	unresolvedCount atomic.Int64
	storeFailures   atomic.Int64
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, model *Model, store PreferenceStore, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if model == nil || model.Catalog == nil || model.Features == nil {
		return nil, errors.New("model is required")
	}
	if store == nil {
		return nil, errors.New("preference store is required")
	}

	// Later changes to cfg by the caller do not reach the engine.
	cfg = cfg.Clone()

	return &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		model:    model,
		resolver: NewTitleResolver(model.Catalog, cfg.FuzzyThreshold),
		scorer:   NewScorer(model.Catalog, model.Features),
		updater:  NewPreferenceUpdater(cfg),
		store:    store,
	}, nil
}

// SetUserLocker enables per-user serialization when Config.SerializeUsers
// is set.
func (e *Engine) SetUserLocker(l UserLocker) {
	e.locker = l
}

// SetNotifier registers the profile update notifier.
func (e *Engine) SetNotifier(n UpdateNotifier) {
	e.notifier = n
}

// SetResolutionCache enables caching of fuzzy title resolutions.
func (e *Engine) SetResolutionCache(c ResolutionCache) {
	e.resolver.SetCache(c)
}

// SetFallbackGlobal sets the prior used in degraded mode when the store
// cannot supply one.
//
//nolint:gocritic // hugeParam: profile copied once at startup
func (e *Engine) SetFallbackGlobal(p PreferenceProfile) {
	e.fallback = p.Clone()
}

// Catalog returns the catalog the engine serves.
func (e *Engine) Catalog() *Catalog {
	return e.model.Catalog
}

// Recommend resolves the request titles, updates and persists the user's
// profile, and ranks the catalog against the weighted reading history.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(req)
	logger := e.createRequestLogger(req)
	logger.Debug().Int("titles", len(req.Titles)).Msg("processing recommendation request")

	indices, matched, unresolved := e.resolver.Resolve(req.Titles)
	e.logUnresolved(logger, unresolved)

	if len(indices) == 0 {
		e.noMatchCount.Add(1)
		return nil, &NoMatchableHistoryError{Reason: ReasonNoResolvedTitles, Unresolved: unresolved}
	}

	if e.config.SerializeUsers && e.locker != nil {
		unlock := e.locker.Lock(req.UserID)
		defer unlock()
	}

	profile, version, degraded, err := e.refreshProfile(ctx, req, indices, logger)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	recs, err := e.scorer.Score(indices, &profile, req.Limit)
	if err != nil {
		var nm *NoMatchableHistoryError
		if errors.As(err, &nm) {
			nm.Unresolved = unresolved
			e.noMatchCount.Add(1)
			return nil, nm
		}
		e.errorCount.Add(1)
		return nil, fmt.Errorf("score: %w", err)
	}

	if degraded {
		e.degradedCount.Add(1)
	}

	resp := &Response{
		Recommendations: recs,
		Matched:         matched,
		Unresolved:      unresolved,
		Degraded:        degraded,
		ProfileVersion:  version,
		Metadata: ResponseMetadata{
			RequestID:   req.RequestID,
			GeneratedAt: time.Now(),
			LatencyMS:   time.Since(start).Milliseconds(),
			CatalogSize: e.model.Catalog.Len(),
		},
	}

	logger.Debug().
		Int("matched", len(matched)).
		Int("unresolved", len(unresolved)).
		Int("returned", len(recs)).
		Bool("degraded", degraded).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// refreshProfile reads the stored and global profiles, applies the
// history and writes the result back. The write only happens when both
// reads succeeded; in degraded mode a failed read falls back and skips it.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) refreshProfile(ctx context.Context, req Request, indices []int, logger zerolog.Logger) (PreferenceProfile, uint64, bool, error) {
	degraded := false

	stored, err := e.store.GetUserPreferences(ctx, req.UserID)
	switch {
	case err == nil:
	case errors.Is(err, ErrProfileNotFound):
		stored = ProfileSnapshot{}
	default:
		e.storeFailures.Add(1)
		if !e.config.DegradedMode {
			return PreferenceProfile{}, 0, false, &PreferenceStoreError{Op: OpGetUser, UserID: req.UserID, Err: err}
		}
		logger.Warn().Err(err).Msg("user preferences unavailable, serving from global prior")
		stored = ProfileSnapshot{}
		degraded = true
	}

	global, err := e.store.GetGlobalPreferences(ctx)
	if err != nil {
		e.storeFailures.Add(1)
		if !e.config.DegradedMode {
			return PreferenceProfile{}, 0, false, &PreferenceStoreError{Op: OpGetGlobal, Err: err}
		}
		logger.Warn().Err(err).Msg("global preferences unavailable, using built-in prior")
		global = e.fallback.Clone()
		degraded = true
	}

	history := make([]Book, len(indices))
	for k, idx := range indices {
		history[k] = e.model.Catalog.books[idx]
	}
	profile := e.updater.Update(history, &stored.Profile, &global)

	if degraded {
		return profile, 0, true, nil
	}

	version, err := e.store.SetUserPreferences(ctx, req.UserID, profile, stored.Version)
	if err != nil {
		e.storeFailures.Add(1)
		if errors.Is(err, ErrVersionConflict) || !e.config.DegradedMode {
			return PreferenceProfile{}, 0, false, &PreferenceStoreError{Op: OpSetUser, UserID: req.UserID, Err: err}
		}
		logger.Warn().Err(err).Msg("failed to persist preferences, continuing in degraded mode")
		return profile, 0, true, nil
	}

	e.notify(ctx, req, profile, version, logger)
	return profile, version, false, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) notify(ctx context.Context, req Request, profile PreferenceProfile, version uint64, logger zerolog.Logger) {
	if e.notifier == nil {
		return
	}
	err := e.notifier.NotifyProfileUpdated(ctx, ProfileUpdate{
		UserID:    req.UserID,
		Version:   version,
		Profile:   profile,
		RequestID: req.RequestID,
	})
	if err != nil {
		logger.Warn().Err(err).Uint64("version", version).Msg("failed to publish profile update")
	}
}

// Resolve resolves titles without touching any profile.
func (e *Engine) Resolve(titles []string) ([]Resolution, []UnresolvedTitle) {
	_, matched, unresolved := e.resolver.Resolve(titles)
	return matched, unresolved
}

// ResolveOne resolves a single title.
func (e *Engine) ResolveOne(title string) Resolution {
	return e.resolver.ResolveOne(title)
}

// Similar returns books most similar to the book at index.
func (e *Engine) Similar(index, limit int) ([]Recommendation, error) {
	return e.scorer.Similar(index, e.clampLimit(limit))
}

// GetMetrics returns a snapshot of engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		Requests:         e.requestCount.Load(),
		Errors:           e.errorCount.Load(),
		NoMatch:          e.noMatchCount.Load(),
		Degraded:         e.degradedCount.Load(),
		UnresolvedTitles: e.unresolvedCount.Load(),
		StoreFailures:    e.storeFailures.Load(),
	}
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	req.Limit = e.clampLimit(req.Limit)
	return req
}

func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 || limit > e.config.MaxResults {
		return e.config.MaxResults
	}
	return limit
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Logger()
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) logUnresolved(logger zerolog.Logger, unresolved []UnresolvedTitle) {
	for _, u := range unresolved {
		e.unresolvedCount.Add(1)
		logger.Warn().
			Str("title", u.Title).
			Str("best_match", u.BestMatch).
			Int("best_score", u.BestScore).
			Msg("unresolved title")
	}
}

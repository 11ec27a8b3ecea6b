// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package recommend implements content-based book recommendations.
//
// # Architecture
//
// A request flows through four stages:
//
//   - Title Resolver: free-text titles to catalog indices (case-insensitive
//     exact match, then fuzzy match above a threshold)
//   - Preference Engine: Bayesian shrinkage of the reading history toward
//     the global prior, then exponential smoothing against the stored profile
//   - Preference Store: read-modify-write of the user's profile with a
//     version token
//   - Scoring Engine: preference-weighted average of whitened feature rows,
//     cosine ranking over the whole catalog, read books removed
//
// The Feature Index one-hot encodes main genre, sub-genre, format and author
// over the catalog's closed vocabulary and applies ZCA whitening so that
// attributes with many values do not dominate attributes with few.
//
// # Usage
//
//	model, err := recommend.BuildModel(catalog, cfg.Epsilon)
//	engine, err := recommend.NewEngine(cfg, model, store, logger)
//	engine.SetUserLocker(prefstore.NewKeyedMutex())
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    UserID: "42",
//	    Titles: []string{"The Hobbit", "Dune"},
//	})
//
// # Errors
//
// Unresolvable titles are reported in Response.Unresolved and never fail a
// request on their own. A request with no usable history returns
// *NoMatchableHistoryError (errors.Is ErrNoMatchableHistory). Store
// failures return *PreferenceStoreError unless degraded mode is enabled.
//
// # Thread Safety
//
// The Model is immutable after construction and shared by all requests.
// The only shared mutable state is the user's stored profile; the engine
// serializes same-user requests through a UserLocker and the store rejects
// stale writes with ErrVersionConflict.
package recommend

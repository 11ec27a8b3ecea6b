// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"fmt"
	"sort"
)

// ExplicitWeight multiplies the profile weights of the book's four
// attribute values. Values missing from the profile contribute a factor
// of 1.
//
//nolint:gocritic // hugeParam: Book is passed by value as an immutable row
func ExplicitWeight(b Book, profile *PreferenceProfile) float64 {
	weight := 1.0
	for _, a := range Attributes {
		if w, ok := profile.Slot(a).Get(b.Value(a)); ok {
			weight *= w
		}
	}
	return weight
}

// Scorer ranks the catalog against a user embedding built from matched
// books. It holds only immutable state.
type Scorer struct {
	catalog  *Catalog
	features *FeatureIndex
}

// NewScorer creates a scorer over a catalog and its feature index.
func NewScorer(c *Catalog, fi *FeatureIndex) *Scorer {
	return &Scorer{catalog: c, features: fi}
}

// Score builds the preference-weighted user embedding from history, ranks
// every catalog book by cosine similarity and returns up to limit books not
// in history.
func (s *Scorer) Score(history []int, profile *PreferenceProfile, limit int) ([]Recommendation, error) {
	if len(history) == 0 {
		return nil, &NoMatchableHistoryError{Reason: ReasonNoResolvedTitles}
	}

	weights := make([]float64, len(history))
	nonZero := false
	for k, idx := range history {
		if idx < 0 || idx >= s.catalog.Len() {
			return nil, fmt.Errorf("history index %d out of range [0, %d)", idx, s.catalog.Len())
		}
		weights[k] = ExplicitWeight(s.catalog.books[idx], profile)
		if weights[k] != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		return nil, &NoMatchableHistoryError{Reason: ReasonZeroWeight}
	}

	embedding, err := s.features.WeightedMean(history, weights)
	if err != nil {
		return nil, &NoMatchableHistoryError{Reason: ReasonZeroWeight}
	}

	return s.rank(embedding, history, limit), nil
}

// Similar ranks the catalog against a single book.
func (s *Scorer) Similar(index, limit int) ([]Recommendation, error) {
	if index < 0 || index >= s.catalog.Len() {
		return nil, fmt.Errorf("book index %d out of range [0, %d)", index, s.catalog.Len())
	}
	return s.rank(s.features.Row(index), []int{index}, limit), nil
}

func (s *Scorer) rank(embedding []float64, exclude []int, limit int) []Recommendation {
	sims := s.features.Similarities(embedding)
	order := rankBySimilarity(sims)

	skip := make(map[int]struct{}, len(exclude))
	for _, i := range exclude {
		skip[i] = struct{}{}
	}

	out := make([]Recommendation, 0, limit)
	for _, i := range order {
		if len(out) == limit {
			break
		}
		if _, ok := skip[i]; ok {
			continue
		}
		out = append(out, Recommendation{
			Index:      i,
			Title:      s.catalog.books[i].Title,
			Similarity: sims[i],
		})
	}
	return out
}

// rankBySimilarity returns catalog indices ordered by descending
// similarity, ties broken by ascending index.
func rankBySimilarity(sims []float64) []int {
	order := make([]int, len(sims))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		sa, sb := sims[order[a]], sims[order[b]]
		if sa != sb {
			return sa > sb
		}
		return order[a] < order[b]
	})
	return order
}

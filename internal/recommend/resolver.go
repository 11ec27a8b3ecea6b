// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import "strings"

// MatchKind describes how an input title was resolved.
type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
	MatchNone  MatchKind = "none"
)

// Resolution is the outcome of resolving one input title.
type Resolution struct {
	Input string    `json:"input"`
	Index int       `json:"index"`
	Title string    `json:"title"`
	Kind  MatchKind `json:"kind"`
	Score int       `json:"score"`
}

// Resolved reports whether the title matched a catalog row.
//
//nolint:gocritic // hugeParam: value receiver keeps Resolution immutable
func (r Resolution) Resolved() bool {
	return r.Kind != MatchNone
}

// ResolutionCache stores resolutions by normalized input title.
// cache.LRUCache satisfies it.
type ResolutionCache interface {
	Get(key string) (Resolution, bool)
	Add(key string, value Resolution)
}

// TitleResolver maps free-text titles to catalog indices.
type TitleResolver struct {
	catalog   *Catalog
	threshold int
	forms     []fuzzyForm
	cache     ResolutionCache
}

// NewTitleResolver creates a resolver over c. A fuzzy candidate is accepted
// only when its score is strictly greater than threshold.
func NewTitleResolver(c *Catalog, threshold int) *TitleResolver {
	forms := make([]fuzzyForm, c.Len())
	for i := range c.books {
		forms[i] = newFuzzyForm(normalizeCatalogTitle(c.books[i].Title))
	}
	return &TitleResolver{
		catalog:   c,
		threshold: threshold,
		forms:     forms,
	}
}

// SetCache enables caching of fuzzy resolutions. Must be called before the
// resolver is shared.
func (r *TitleResolver) SetCache(c ResolutionCache) {
	r.cache = c
}

// ResolveOne resolves a single title: case-insensitive exact match first,
// then the best fuzzy candidate if it clears the threshold.
func (r *TitleResolver) ResolveOne(title string) Resolution {
	if i, ok := r.catalog.LookupTitleFold(title); ok {
		return Resolution{Input: title, Index: i, Title: r.catalog.Title(i), Kind: MatchExact, Score: 100}
	}

	key := normalizeTitle(title)
	if r.cache != nil {
		if res, ok := r.cache.Get(key); ok {
			res.Input = title
			return res
		}
	}

	res := r.fuzzy(title, key)
	if r.cache != nil {
		r.cache.Add(key, res)
	}
	return res
}

func (r *TitleResolver) fuzzy(title, key string) Resolution {
	query := newFuzzyForm(key)
	m := newBlockMatcher()

	best, bestScore := -1, -1
	for i := range r.forms {
		score := m.weightedRatio(&query, &r.forms[i])
		if score > bestScore {
			best, bestScore = i, score
			if score == 100 {
				break
			}
		}
	}

	res := Resolution{Input: title, Index: -1, Kind: MatchNone, Score: max(bestScore, 0)}
	if best < 0 {
		return res
	}
	res.Title = r.catalog.Title(best)
	if bestScore <= r.threshold {
		return res
	}

	// Duplicated titles resolve to their first occurrence.
	idx, ok := r.catalog.LookupTitle(res.Title)
	if !ok {
		idx = best
	}
	res.Index = idx
	res.Kind = MatchFuzzy
	return res
}

// Resolve resolves each title independently. Indices keep input order and
// may repeat; unresolved titles contribute nothing to indices.
func (r *TitleResolver) Resolve(titles []string) (indices []int, matched []Resolution, unresolved []UnresolvedTitle) {
	for _, t := range titles {
		if strings.TrimSpace(t) == "" {
			unresolved = append(unresolved, UnresolvedTitle{Title: t})
			continue
		}
		res := r.ResolveOne(t)
		if !res.Resolved() {
			unresolved = append(unresolved, UnresolvedTitle{Title: t, BestMatch: res.Title, BestScore: res.Score})
			continue
		}
		indices = append(indices, res.Index)
		matched = append(matched, res)
	}
	return indices, matched, unresolved
}

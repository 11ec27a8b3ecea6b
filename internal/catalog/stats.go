// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package catalog

import (
	"github.com/tomtom215/bookrec/internal/recommend"
)

// Stats summarizes a loaded catalog.
type Stats struct {
	Books int `json:"books"`

	// Distinct counts the distinct values per attribute.
	Distinct map[recommend.Attribute]int `json:"-"`

	// DuplicateTitles counts rows whose title repeats an earlier row.
	// Exact lookups resolve to the first occurrence.
	DuplicateTitles int `json:"duplicate_titles"`
}

// FeatureDimensions is the width of the one-hot encoding.
func (s Stats) FeatureDimensions() int {
	n := 0
	for _, d := range s.Distinct {
		n += d
	}
	return n
}

// Summarize computes Stats for c.
func Summarize(c *recommend.Catalog) Stats {
	s := Stats{
		Books:    c.Len(),
		Distinct: make(map[recommend.Attribute]int, len(recommend.Attributes)),
	}
	for _, a := range recommend.Attributes {
		s.Distinct[a] = len(c.Vocabulary(a))
	}

	seen := make(map[string]struct{}, c.Len())
	for _, b := range c.Books() {
		if _, ok := seen[b.Title]; ok {
			s.DuplicateTitles++
			continue
		}
		seen[b.Title] = struct{}{}
	}
	return s
}

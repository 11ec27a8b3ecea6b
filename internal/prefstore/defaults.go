// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package prefstore

import (
	"github.com/tomtom215/bookrec/internal/recommend"
)

// defaultPriorWeight is the weight of every built-in prior entry.
const defaultPriorWeight = 0.5

// DefaultGlobalProfile returns the built-in prior used when the store cannot
// supply a global profile. Author is left empty.
func DefaultGlobalProfile() recommend.PreferenceProfile {
	var p recommend.PreferenceProfile
	for _, v := range []string{"Fiction", "Non-Fiction"} {
		p.MainGenre.Set(v, defaultPriorWeight)
	}
	for _, v := range []string{"Fantasy", "SciFi", "Mystery", "Romance", "Biography"} {
		p.SubGenre.Set(v, defaultPriorWeight)
	}
	for _, v := range []string{"Paperback", "Hardcover", "eBook"} {
		p.Format.Set(v, defaultPriorWeight)
	}
	return p
}

// GlobalProfileFromCatalog returns a prior assigning neutral to every value
// of every attribute in c, in sorted order.
func GlobalProfileFromCatalog(c *recommend.Catalog, neutral float64) recommend.PreferenceProfile {
	var p recommend.PreferenceProfile
	for _, a := range recommend.Attributes {
		slot := p.Slot(a)
		for _, v := range c.Vocabulary(a) {
			slot.Set(v, neutral)
		}
	}
	return p
}

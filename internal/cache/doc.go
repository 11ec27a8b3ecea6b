// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package cache provides a generic thread-safe LRU cache with TTL support.

The title resolver caches fuzzy resolutions here, keyed by the normalized
input title, so repeated misspellings skip the full catalog scan.

# Usage Example

	c := cache.NewLRUCache[recommend.Resolution](10000, time.Hour)
	engine.SetResolutionCache(c)

	stats := c.Stats()
	fmt.Printf("hit rate %.2f over %d entries\n", stats.HitRate(), stats.Size)

# Expiration

Entries expire lazily on Get and Contains. CleanupExpired removes expired
entries in one pass and is run periodically by the cache janitor service.
*/
package cache

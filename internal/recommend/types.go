// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Attribute identifies one of the four categorical book attributes that
// drive both the feature encoding and the preference profile.
type Attribute int

const (
	// AttributeMainGenre is the primary genre (e.g. Fiction).
	AttributeMainGenre Attribute = iota
	// AttributeSubGenre is the secondary genre (e.g. Fantasy).
	AttributeSubGenre
	// AttributeFormat is the publication format (e.g. Paperback).
	AttributeFormat
	// AttributeAuthor is the book author.
	AttributeAuthor
)

// Attributes lists every attribute in encoding order.
var Attributes = [...]Attribute{
	AttributeMainGenre,
	AttributeSubGenre,
	AttributeFormat,
	AttributeAuthor,
}

// String returns the catalog column name of the attribute. These names are
// also the category keys used on the preference store wire format.
func (a Attribute) String() string {
	switch a {
	case AttributeMainGenre:
		return "Main Genre"
	case AttributeSubGenre:
		return "Sub Genre"
	case AttributeFormat:
		return "Type"
	case AttributeAuthor:
		return "Author"
	default:
		return "unknown"
	}
}

// ParseAttribute maps a category key back to its Attribute.
func ParseAttribute(s string) (Attribute, bool) {
	for _, a := range Attributes {
		if a.String() == s {
			return a, true
		}
	}
	return 0, false
}

// Book is an immutable catalog row.
type Book struct {
	// Index is the 0-based catalog position, assigned once at load time.
	Index int `json:"index"`

	// Title is the display title used for resolution and results.
	Title string `json:"title"`

	MainGenre string `json:"main_genre"`
	SubGenre  string `json:"sub_genre"`
	Format    string `json:"format"`
	Author    string `json:"author"`
}

// Value returns the book's value for the given attribute.
//
//nolint:gocritic // hugeParam: Book is passed by value as an immutable row
func (b Book) Value(a Attribute) string {
	switch a {
	case AttributeMainGenre:
		return b.MainGenre
	case AttributeSubGenre:
		return b.SubGenre
	case AttributeFormat:
		return b.Format
	case AttributeAuthor:
		return b.Author
	default:
		return ""
	}
}

// Catalog is the fixed, ordered set of books. It is built once and never
// mutated, so it can be shared across goroutines without locking.
type Catalog struct {
	books    []Book
	byTitle  map[string]int
	byFolded map[string]int
}

// NewCatalog builds a catalog from rows in load order. Each row's Index is
// overwritten with its position.
func NewCatalog(books []Book) (*Catalog, error) {
	if len(books) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		books:    make([]Book, len(books)),
		byTitle:  make(map[string]int, len(books)),
		byFolded: make(map[string]int, len(books)),
	}

	for i := range books {
		b := books[i]
		b.Index = i
		c.books[i] = b

		// First occurrence wins for duplicate titles.
		if _, ok := c.byTitle[b.Title]; !ok {
			c.byTitle[b.Title] = i
		}
		folded := strings.ToLower(b.Title)
		if _, ok := c.byFolded[folded]; !ok {
			c.byFolded[folded] = i
		}
	}

	return c, nil
}

// Len returns the number of books.
func (c *Catalog) Len() int {
	return len(c.books)
}

// Book returns the book at index i.
func (c *Catalog) Book(i int) (Book, error) {
	if i < 0 || i >= len(c.books) {
		return Book{}, fmt.Errorf("book index %d out of range [0, %d)", i, len(c.books))
	}
	return c.books[i], nil
}

// Title returns the title of the book at index i. The index must be valid.
func (c *Catalog) Title(i int) string {
	return c.books[i].Title
}

// Books returns a copy of all rows in catalog order.
func (c *Catalog) Books() []Book {
	out := make([]Book, len(c.books))
	copy(out, c.books)
	return out
}

// LookupTitle returns the first index whose title equals title exactly.
func (c *Catalog) LookupTitle(title string) (int, bool) {
	i, ok := c.byTitle[title]
	return i, ok
}

// LookupTitleFold returns the first index whose title matches title
// ignoring letter case.
func (c *Catalog) LookupTitleFold(title string) (int, bool) {
	i, ok := c.byFolded[strings.ToLower(title)]
	return i, ok
}

// Vocabulary returns the sorted distinct values observed for an attribute.
func (c *Catalog) Vocabulary(a Attribute) []string {
	seen := make(map[string]struct{})
	for i := range c.books {
		seen[c.books[i].Value(a)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Recommendation is a single ranked result.
type Recommendation struct {
	Index      int     `json:"index"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// Request describes one recommendation call.
type Request struct {
	// UserID is the opaque user identifier used as the preference store key.
	UserID string `json:"user_id"`

	// Titles are free-text titles the user has read.
	Titles []string `json:"titles"`

	// Limit caps the result length. Zero means Config.MaxResults.
	Limit int `json:"limit,omitempty"`

	// RequestID is generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// Response carries the ranked titles and what happened along the way.
type Response struct {
	// Recommendations are ordered by descending similarity.
	Recommendations []Recommendation `json:"recommendations"`

	// Matched lists every title that resolved to a catalog row.
	Matched []Resolution `json:"matched"`

	// Unresolved lists titles that were skipped.
	Unresolved []UnresolvedTitle `json:"unresolved"`

	// Degraded is true when the store was bypassed under degraded mode.
	Degraded bool `json:"degraded"`

	// ProfileVersion is the stored profile version after this request.
	// Zero when the profile was not written.
	ProfileVersion uint64 `json:"profile_version"`

	Metadata ResponseMetadata `json:"metadata"`
}

// Titles returns the recommended titles in rank order.
func (r *Response) Titles() []string {
	out := make([]string, len(r.Recommendations))
	for i, rec := range r.Recommendations {
		out[i] = rec.Title
	}
	return out
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID   string    `json:"request_id"`
	GeneratedAt time.Time `json:"generated_at"`
	LatencyMS   int64     `json:"latency_ms"`
	CatalogSize int       `json:"catalog_size"`
}

// Metrics is a point-in-time snapshot of engine counters.
type Metrics struct {
	Requests         int64 `json:"requests"`
	Errors           int64 `json:"errors"`
	NoMatch          int64 `json:"no_match"`
	Degraded         int64 `json:"degraded"`
	UnresolvedTitles int64 `json:"unresolved_titles"`
	StoreFailures    int64 `json:"store_failures"`
}

// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package catalog loads the book catalog from CSV through an in-memory
// DuckDB.
//
// The file must carry a header with the columns Title, Main Genre,
// Sub Genre, Type and Author; any other columns are ignored. Row order in
// the file is the catalog order and therefore the book index.
package catalog

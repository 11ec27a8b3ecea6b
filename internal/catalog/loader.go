// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/recommend"
)

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("catalog column missing")

// TitleColumn is the header of the display title column. The attribute
// columns are named by recommend.Attribute.String.
const TitleColumn = "Title"

// RequiredColumns lists the CSV headers a catalog must carry, in the order
// they are selected.
func RequiredColumns() []string {
	cols := []string{TitleColumn}
	for _, a := range recommend.Attributes {
		cols = append(cols, a.String())
	}
	return cols
}

// connString opens a private in-memory database. Extension autoloading is
// off because read_csv is built in.
const connString = ":memory:?threads=1&preserve_insertion_order=true&autoinstall_known_extensions=false&autoload_known_extensions=false"

// LoadCSV reads the catalog at cfg.Path. Row i of the file (after the
// header) becomes the book with index i. Extra columns are ignored and NULL
// cells load as empty strings.
func LoadCSV(ctx context.Context, cfg *config.CatalogConfig) (*recommend.Catalog, error) {
	start := time.Now()

	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("catalog file: %w", err)
	}

	db, err := sql.Open("duckdb", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer closeQuietly(db)

	source := readCSVExpr(cfg)
	if err := checkColumns(ctx, db, source); err != nil {
		return nil, err
	}

	books, err := readBooks(ctx, db, source)
	if err != nil {
		return nil, err
	}

	c, err := recommend.NewCatalog(books)
	if err != nil {
		return nil, fmt.Errorf("build catalog from %s: %w", cfg.Path, err)
	}

	stats := Summarize(c)
	metrics.RecordCatalogLoad(c.Len(), stats.FeatureDimensions(), time.Since(start))
	logging.Info().
		Str("path", cfg.Path).
		Int("books", stats.Books).
		Int("main_genres", stats.Distinct[recommend.AttributeMainGenre]).
		Int("sub_genres", stats.Distinct[recommend.AttributeSubGenre]).
		Int("formats", stats.Distinct[recommend.AttributeFormat]).
		Int("authors", stats.Distinct[recommend.AttributeAuthor]).
		Int("duplicate_titles", stats.DuplicateTitles).
		Dur("duration", time.Since(start)).
		Msg("Catalog loaded")

	return c, nil
}

// readCSVExpr builds the read_csv_auto table expression. Table function
// arguments cannot be bound parameters, so the path is quoted inline.
func readCSVExpr(cfg *config.CatalogConfig) string {
	var b strings.Builder
	b.WriteString("read_csv_auto(")
	b.WriteString(quoteLiteral(cfg.Path))
	b.WriteString(", header=true, all_varchar=true")
	if cfg.Delimiter != "" {
		b.WriteString(", delim=")
		b.WriteString(quoteLiteral(cfg.Delimiter))
	}
	b.WriteString(")")
	return b.String()
}

func checkColumns(ctx context.Context, db *sql.DB, source string) error {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+source+" LIMIT 0")
	if err != nil {
		return fmt.Errorf("read catalog header: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("read catalog header: %w", err)
	}

	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[strings.TrimSpace(c)] = true
	}
	for _, want := range RequiredColumns() {
		if !present[want] {
			return fmt.Errorf("%w: %q", ErrMissingColumn, want)
		}
	}
	return nil
}

func readBooks(ctx context.Context, db *sql.DB, source string) ([]recommend.Book, error) {
	cols := RequiredColumns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}

	query := "SELECT " + strings.Join(quoted, ", ") + " FROM " + source
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var books []recommend.Book
	for rows.Next() {
		var title, mainGenre, subGenre, format, author sql.NullString
		if err := rows.Scan(&title, &mainGenre, &subGenre, &format, &author); err != nil {
			return nil, fmt.Errorf("scan catalog row %d: %w", len(books), err)
		}
		books = append(books, recommend.Book{
			Title:     title.String,
			MainGenre: mainGenre.String,
			SubGenre:  subGenre.String,
			Format:    format.String,
			Author:    author.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return books, nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func closeQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close catalog database")
	}
}

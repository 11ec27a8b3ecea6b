// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"errors"
	"reflect"
	"testing"
)

func TestAttribute_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attr Attribute
		want string
	}{
		{AttributeMainGenre, "Main Genre"},
		{AttributeSubGenre, "Sub Genre"},
		{AttributeFormat, "Type"},
		{AttributeAuthor, "Author"},
		{Attribute(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.attr.String(); got != tt.want {
			t.Errorf("Attribute(%d).String() = %q, want %q", tt.attr, got, tt.want)
		}
		if tt.want == "unknown" {
			continue
		}
		parsed, ok := ParseAttribute(tt.want)
		if !ok || parsed != tt.attr {
			t.Errorf("ParseAttribute(%q) = %d, %v; want %d, true", tt.want, parsed, ok, tt.attr)
		}
	}

	if _, ok := ParseAttribute("Genre"); ok {
		t.Error("ParseAttribute(\"Genre\") should fail")
	}
}

func TestNewCatalog(t *testing.T) {
	t.Parallel()

	t.Run("empty catalog", func(t *testing.T) {
		t.Parallel()
		if _, err := NewCatalog(nil); !errors.Is(err, ErrEmptyCatalog) {
			t.Errorf("NewCatalog(nil) error = %v, want ErrEmptyCatalog", err)
		}
	})

	t.Run("indices follow load order", func(t *testing.T) {
		t.Parallel()
		c, err := NewCatalog([]Book{
			{Index: 7, Title: "Dune"},
			{Index: 3, Title: "Emma"},
		})
		if err != nil {
			t.Fatalf("NewCatalog: %v", err)
		}
		for i := 0; i < c.Len(); i++ {
			b, err := c.Book(i)
			if err != nil {
				t.Fatalf("Book(%d): %v", i, err)
			}
			if b.Index != i {
				t.Errorf("Book(%d).Index = %d", i, b.Index)
			}
		}
		if _, err := c.Book(2); err == nil {
			t.Error("Book(2) should be out of range")
		}
	})

	t.Run("duplicate titles resolve to first occurrence", func(t *testing.T) {
		t.Parallel()
		c, err := NewCatalog([]Book{
			{Title: "Emma"},
			{Title: "Dune"},
			{Title: "Persuasion"},
			{Title: "DUNE"},
		})
		if err != nil {
			t.Fatalf("NewCatalog: %v", err)
		}
		if i, ok := c.LookupTitle("Dune"); !ok || i != 1 {
			t.Errorf("LookupTitle(Dune) = %d, %v", i, ok)
		}
		if i, ok := c.LookupTitle("DUNE"); !ok || i != 3 {
			t.Errorf("LookupTitle(DUNE) = %d, %v", i, ok)
		}
		if i, ok := c.LookupTitleFold("dune"); !ok || i != 1 {
			t.Errorf("LookupTitleFold(dune) = %d, %v", i, ok)
		}
		if _, ok := c.LookupTitleFold("Middlemarch"); ok {
			t.Error("LookupTitleFold(Middlemarch) should miss")
		}
	})
}

func TestCatalog_Vocabulary(t *testing.T) {
	t.Parallel()

	c := shelfCatalog(t)
	got := c.Vocabulary(AttributeFormat)
	want := []string{"Hardcover", "Paperback", "eBook"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Vocabulary(Format) = %v, want %v", got, want)
	}
}

func TestCatalog_BooksIsCopy(t *testing.T) {
	t.Parallel()

	c := threeBookCatalog(t)
	books := c.Books()
	books[0].Title = "changed"
	if c.Title(0) != "A" {
		t.Errorf("catalog mutated through Books(): %q", c.Title(0))
	}
}

func TestResponse_Titles(t *testing.T) {
	t.Parallel()

	r := &Response{Recommendations: []Recommendation{{Title: "B"}, {Title: "E"}}}
	if got := r.Titles(); !reflect.DeepEqual(got, []string{"B", "E"}) {
		t.Errorf("Titles() = %v", got)
	}
}

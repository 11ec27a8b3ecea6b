// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

func TestTitleResolver_Typos(t *testing.T) {
	t.Parallel()

	c, err := NewCatalog([]Book{
		book("Dune", "Fiction", "SciFi", "Paperback", "Frank Herbert"),
		book("Dune Messiah", "Fiction", "SciFi", "Hardcover", "Frank Herbert"),
		book("The Hobbit", "Fiction", "Fantasy", "Hardcover", "J.R.R. Tolkien"),
		book("The Silmarillion", "Fiction", "Fantasy", "eBook", "J.R.R. Tolkien"),
		book("Hyperion", "Fiction", "SciFi", "Paperback", "Dan Simmons"),
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	r := NewTitleResolver(c, 60)

	tests := []struct {
		input     string
		wantKind  MatchKind
		wantIndex int
		wantScore int
	}{
		{"Dnue", MatchFuzzy, 0, 75},
		{"hobit", MatchFuzzy, 2, 72},
		{"Hyperoin", MatchFuzzy, 4, 88},
		{"silmarilion", MatchFuzzy, 3, 81},
		{"Dune Mesiah", MatchFuzzy, 1, 96},
		{"xyzzy", MatchNone, -1, 18},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got := r.ResolveOne(tt.input)
			if got.Kind != tt.wantKind || got.Index != tt.wantIndex || got.Score != tt.wantScore {
				t.Errorf("ResolveOne(%q) = %+v, want kind=%s index=%d score=%d",
					tt.input, got, tt.wantKind, tt.wantIndex, tt.wantScore)
			}
		})
	}
}

func runeStrings(s string) []string {
	return strings.Split(s, "")
}

func TestBlockMatcher_AgreesWithDifflib(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	alphabets := []string{"ab", "abc ", "abcdefghij kl", "éxyλ"}
	random := func(alphabet []rune, n int) string {
		var b strings.Builder
		for range n {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		return b.String()
	}

	m := newBlockMatcher()
	for n := 0; n < 2000; n++ {
		alphabet := []rune(alphabets[rng.Intn(len(alphabets))])
		a := random(alphabet, rng.Intn(30))
		maxB := 30
		if n%4 == 0 {
			maxB = 260
		}
		b := random(alphabet, rng.Intn(maxB))

		want := difflib.NewMatcher(runeStrings(a), runeStrings(b)).Ratio()
		if got := m.similarity([]rune(a), []rune(b)); got != want {
			t.Fatalf("similarity(%q, %q) = %v, difflib = %v", a, b, got, want)
		}
	}
}

func TestBlockMatcher_MatchingBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want []matchBlock
	}{
		{"abxcd", "abcd", []matchBlock{{0, 0, 2}, {3, 2, 2}}},
		{"dnue", "dune", []matchBlock{{0, 0, 1}, {2, 2, 2}}},
		{"abc", "xyz", nil},
	}

	m := newBlockMatcher()
	for _, tt := range tests {
		m.setSeqs([]rune(tt.a), []rune(tt.b))
		got := append([]matchBlock(nil), m.matchingBlocks()...)
		if !sameBlocks(got, tt.want) {
			t.Errorf("matchingBlocks(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func sameBlocks(got, want []matchBlock) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[matchBlock]bool, len(got))
	for _, b := range got {
		seen[b] = true
	}
	for _, b := range want {
		if !seen[b] {
			return false
		}
	}
	return true
}

func TestBlockMatcher_PopularRunesExtendRuns(t *testing.T) {
	t.Parallel()

	a := "aab"
	b := strings.Repeat("a", 250) + "b"
	want := difflib.NewMatcher(runeStrings(a), runeStrings(b)).Ratio()
	if got := newBlockMatcher().similarity([]rune(a), []rune(b)); got != want {
		t.Errorf("similarity = %v, difflib = %v", got, want)
	}
}

func syntheticCatalog(tb testing.TB, n int) *Catalog {
	tb.Helper()
	words := strings.Fields("the secret history dark city river night war peace garden empire " +
		"stone silent house winter shadow glass king queen road island fire")
	rng := rand.New(rand.NewSource(42))
	books := make([]Book, n)
	for i := range books {
		k := 2 + rng.Intn(5)
		parts := make([]string, k)
		for j := range parts {
			parts[j] = words[rng.Intn(len(words))]
		}
		books[i] = book(fmt.Sprintf("%s %d", strings.Join(parts, " "), i),
			"Fiction", "Mystery", "Paperback", fmt.Sprintf("Author%d", i%50))
	}
	c, err := NewCatalog(books)
	if err != nil {
		tb.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func BenchmarkTitleResolver_Fuzzy(b *testing.B) {
	r := NewTitleResolver(syntheticCatalog(b, 7000), 60)
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		r.ResolveOne("the secret history of the dark city river")
	}
}

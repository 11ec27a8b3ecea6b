// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Title similarity follows the classic weighted-ratio scheme: a
// SequenceMatcher ratio (2*M/T over matching blocks), partial ratios against
// windows anchored on those blocks, and token sort/set variants, scaled
// by the length ratio of the two strings.

const (
	unbaseScale = 0.95
	partialHigh = 0.90
	partialLow  = 0.60

	// autojunkMin is the sequence length from which frequent runes are
	// ignored as match anchors.
	autojunkMin = 200
)

// fullProcess maps every non-word rune to a space, lowercases and trims.
// With forceASCII, runes in the Latin-1 supplement are dropped first.
func fullProcess(s string, forceASCII bool) string {
	if forceASCII {
		s = strings.Map(func(r rune) rune {
			if r >= 128 && r < 256 {
				return -1
			}
			return r
		}, s)
	}
	s = strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.TrimSpace(s)
}

// normalizeTitle is the canonical form of a user-supplied title. It also
// keys the resolution cache.
func normalizeTitle(s string) string {
	return fullProcess(fullProcess(s, false), true)
}

// normalizeCatalogTitle is the canonical form of a catalog title.
func normalizeCatalogTitle(s string) string {
	return fullProcess(s, true)
}

// fuzzyForm is a normalized title with its token views precomputed.
type fuzzyForm struct {
	text   []rune
	sorted []rune   // tokens in lexical order joined by single spaces
	set    []string // distinct tokens in lexical order
}

func newFuzzyForm(normalized string) fuzzyForm {
	tokens := strings.Fields(normalized)
	sort.Strings(tokens)

	set := make([]string, 0, len(tokens))
	for i, t := range tokens {
		if i == 0 || t != tokens[i-1] {
			set = append(set, t)
		}
	}
	return fuzzyForm{
		text:   []rune(normalized),
		sorted: []rune(strings.Join(tokens, " ")),
		set:    set,
	}
}

// matchBlock is a run of Size equal runes at a[A:] and b[B:].
type matchBlock struct {
	A, B, Size int
}

// blockMatcher computes SequenceMatcher matching blocks between rune
// sequences. Scratch space is reused across calls, so a matcher must not
// be shared between goroutines.
type blockMatcher struct {
	a, b []rune

	// Occurrence chains of b: head gives the first position of a rune,
	// next the following position of the same rune, -1 terminates.
	asciiHead [128]int32
	otherHead map[rune]int32
	next      []int32

	// Longest-run lengths ending at (i, j) for the previous and current
	// row of a; an entry is live only when its generation matches.
	runPrev, runCur []int32
	genPrev, genCur []uint32
	gen             uint32

	queue  [][4]int
	blocks []matchBlock
	starts []int
}

func newBlockMatcher() *blockMatcher {
	return &blockMatcher{otherHead: make(map[rune]int32)}
}

func (m *blockMatcher) setSeqs(a, b []rune) {
	m.a, m.b = a, b

	for i := range m.asciiHead {
		m.asciiHead[i] = -1
	}
	clear(m.otherHead)
	if cap(m.next) < len(b) {
		m.next = make([]int32, len(b))
		m.runPrev = make([]int32, len(b))
		m.runCur = make([]int32, len(b))
		m.genPrev = make([]uint32, len(b))
		m.genCur = make([]uint32, len(b))
	}
	m.next = m.next[:len(b)]

	var popular map[rune]bool
	if len(b) >= autojunkMin {
		popular = popularRunes(b)
	}
	for j := len(b) - 1; j >= 0; j-- {
		r := b[j]
		if popular[r] {
			continue
		}
		m.next[j] = m.head(r)
		if r < 128 {
			m.asciiHead[r] = int32(j)
		} else {
			m.otherHead[r] = int32(j)
		}
	}
}

// popularRunes returns runes occurring in more than 1% of b (plus one).
func popularRunes(b []rune) map[rune]bool {
	counts := make(map[rune]int)
	for _, r := range b {
		counts[r]++
	}
	limit := len(b)/100 + 1
	popular := make(map[rune]bool)
	for r, n := range counts {
		if n > limit {
			popular[r] = true
		}
	}
	return popular
}

func (m *blockMatcher) head(r rune) int32 {
	if r >= 0 && r < 128 {
		return m.asciiHead[r]
	}
	if j, ok := m.otherHead[r]; ok {
		return j
	}
	return -1
}

// longestMatch finds the longest common run in a[alo:ahi] and b[blo:bhi].
// Ties go to the run starting earliest in a, then earliest in b.
func (m *blockMatcher) longestMatch(alo, ahi, blo, bhi int) matchBlock {
	best := matchBlock{A: alo, B: blo}
	m.gen++
	for i := alo; i < ahi; i++ {
		m.gen++
		g := m.gen
		m.runPrev, m.runCur = m.runCur, m.runPrev
		m.genPrev, m.genCur = m.genCur, m.genPrev

		for j := int(m.head(m.a[i])); j >= 0; j = int(m.next[j]) {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := int32(1)
			if j > 0 && m.genPrev[j-1] == g-1 {
				k = m.runPrev[j-1] + 1
			}
			m.runCur[j], m.genCur[j] = k, g
			if int(k) > best.Size {
				best = matchBlock{A: i - int(k) + 1, B: j - int(k) + 1, Size: int(k)}
			}
		}
	}

	// Popular runes never anchor a run but may still extend one.
	for best.A > alo && best.B > blo && m.a[best.A-1] == m.b[best.B-1] {
		best.A--
		best.B--
		best.Size++
	}
	for best.A+best.Size < ahi && best.B+best.Size < bhi && m.a[best.A+best.Size] == m.b[best.B+best.Size] {
		best.Size++
	}
	return best
}

// matchingBlocks returns the blocks of the current pair in no particular
// order. The slice is reused by the next call.
func (m *blockMatcher) matchingBlocks() []matchBlock {
	m.blocks = m.blocks[:0]
	m.queue = append(m.queue[:0], [4]int{0, len(m.a), 0, len(m.b)})
	for len(m.queue) > 0 {
		q := m.queue[len(m.queue)-1]
		m.queue = m.queue[:len(m.queue)-1]
		alo, ahi, blo, bhi := q[0], q[1], q[2], q[3]

		x := m.longestMatch(alo, ahi, blo, bhi)
		if x.Size == 0 {
			continue
		}
		m.blocks = append(m.blocks, x)
		if alo < x.A && blo < x.B {
			m.queue = append(m.queue, [4]int{alo, x.A, blo, x.B})
		}
		if x.A+x.Size < ahi && x.B+x.Size < bhi {
			m.queue = append(m.queue, [4]int{x.A + x.Size, ahi, x.B + x.Size, bhi})
		}
	}
	return m.blocks
}

// similarity is 2*M/T for a and b, in [0, 1].
func (m *blockMatcher) similarity(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	m.setSeqs(a, b)
	matched := 0
	for _, blk := range m.matchingBlocks() {
		matched += blk.Size
	}
	return 2 * float64(matched) / float64(total)
}

// ratio is similarity on a 0-100 integer scale.
func (m *blockMatcher) ratio(a, b []rune) int {
	if runesEqual(a, b) {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return roundScore(100 * m.similarity(a, b))
}

// partialRatio scores the shorter string against windows of the longer
// one, each window anchored on a matching block.
func (m *blockMatcher) partialRatio(a, b []rune) int {
	if runesEqual(a, b) {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	short, long := a, b
	if len(a) > len(b) {
		short, long = b, a
	}

	m.setSeqs(short, long)
	m.starts = m.starts[:0]
	for _, blk := range m.matchingBlocks() {
		m.starts = append(m.starts, max(blk.B-blk.A, 0))
	}
	m.starts = append(m.starts, len(long)-len(short))

	best := 0.0
	for _, start := range m.starts {
		end := min(start+len(short), len(long))
		r := m.similarity(short, long[start:end])
		if r > 0.995 {
			return 100
		}
		best = math.Max(best, r)
	}
	return roundScore(100 * best)
}

// tokenSetRatio compares the shared tokens against each side's full token
// set, so a title containing every word of the other scores high.
func (m *blockMatcher) tokenSetRatio(a, b *fuzzyForm, partial bool) int {
	var sect, only1, only2 []string
	i, j := 0, 0
	for i < len(a.set) || j < len(b.set) {
		switch {
		case j == len(b.set) || (i < len(a.set) && a.set[i] < b.set[j]):
			only1 = append(only1, a.set[i])
			i++
		case i == len(a.set) || b.set[j] < a.set[i]:
			only2 = append(only2, b.set[j])
			j++
		default:
			sect = append(sect, a.set[i])
			i++
			j++
		}
	}

	s := []rune(strings.Join(sect, " "))
	c12 := []rune(joinNonEmpty(sect, only1))
	c21 := []rune(joinNonEmpty(sect, only2))

	score := m.ratio
	if partial {
		score = m.partialRatio
	}
	return max(score(s, c12), score(s, c21), score(c12, c21))
}

func joinNonEmpty(head, tail []string) string {
	switch {
	case len(head) == 0:
		return strings.Join(tail, " ")
	case len(tail) == 0:
		return strings.Join(head, " ")
	}
	return strings.Join(head, " ") + " " + strings.Join(tail, " ")
}

// weightedRatio is the blended title similarity on a 0-100 scale.
func (m *blockMatcher) weightedRatio(a, b *fuzzyForm) int {
	if len(a.text) == 0 || len(b.text) == 0 {
		return 0
	}

	base := float64(m.ratio(a.text, b.text))
	la, lb := float64(len(a.text)), float64(len(b.text))
	lengthRatio := math.Max(la, lb) / math.Min(la, lb)

	if lengthRatio < 1.5 {
		tokenSort := float64(m.ratio(a.sorted, b.sorted)) * unbaseScale
		tokenSet := float64(m.tokenSetRatio(a, b, false)) * unbaseScale
		return roundScore(math.Max(base, math.Max(tokenSort, tokenSet)))
	}

	scale := partialHigh
	if lengthRatio > 8 {
		scale = partialLow
	}
	partial := float64(m.partialRatio(a.text, b.text)) * scale
	tokenSort := float64(m.partialRatio(a.sorted, b.sorted)) * unbaseScale * scale
	tokenSet := float64(m.tokenSetRatio(a, b, true)) * unbaseScale * scale
	return roundScore(max(base, partial, tokenSort, tokenSet))
}

// roundScore rounds half to even.
func roundScore(x float64) int {
	return int(math.RoundToEven(x))
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

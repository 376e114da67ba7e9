// Package locate finds a quoted phrase inside a verse's word sequence.
//
// Quotes may be discontinuous: " & " separates the parts of a split
// quote. The occurrence index selects which match of the first part is
// meant; later parts are then taken as the first match at or after the
// preceding part's end, with any number of intervening words allowed.
// There is no backtracking: if a later part is missing, the whole lookup
// fails rather than retrying an earlier part further on.
package locate

import (
	"strings"

	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/text"
)

// PartSeparator splits a discontinuous quote into its ordered parts.
const PartSeparator = " & "

// Span is a contiguous run of verse word indexes, Start inclusive and
// End exclusive.
type Span struct {
	Start int
	End   int
}

// Len returns the number of words the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Find locates quote inside verseWords and returns the matched spans in
// part order, one span per quote part. The second return is false when
// the quote does not occur (or occurs fewer than occurrence times).
// Matching is case- and diacritic-insensitive on both sides.
func Find(verseWords []string, quote string, occurrence int) ([]Span, bool) {
	if len(verseWords) == 0 || strings.TrimSpace(quote) == "" || occurrence < 1 {
		return nil, false
	}

	words := make([]string, len(verseWords))
	for i, w := range verseWords {
		words[i] = text.Word(w)
	}

	var parts [][]string
	for _, p := range strings.Split(quote, PartSeparator) {
		part := text.Words(p)
		if len(part) == 0 {
			return nil, false
		}
		parts = append(parts, part)
	}

	first, ok := nthMatch(words, parts[0], occurrence, 0)
	if !ok {
		return nil, false
	}
	spans := []Span{first}

	cursor := first.End
	for _, part := range parts[1:] {
		span, ok := nthMatch(words, part, 1, cursor)
		if !ok {
			return nil, false
		}
		spans = append(spans, span)
		cursor = span.End
	}
	return spans, true
}

// Start returns the index of the first matched word, or -1 when the
// quote is not found. Convenience for verse-order sorting.
func Start(verseWords []string, quote string, occurrence int) int {
	spans, ok := Find(verseWords, quote, occurrence)
	if !ok {
		return -1
	}
	return spans[0].Start
}

// nthMatch scans start positions from, left to right, for the n-th
// contiguous match of part in words.
func nthMatch(words, part []string, n, from int) (Span, bool) {
	count := 0
	for i := from; i+len(part) <= len(words); i++ {
		if !matchAt(words, part, i) {
			continue
		}
		count++
		if count == n {
			return Span{Start: i, End: i + len(part)}, true
		}
	}
	return Span{}, false
}

func matchAt(words, part []string, at int) bool {
	for j, p := range part {
		if words[at+j] != p {
			return false
		}
	}
	return true
}

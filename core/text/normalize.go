// Package text provides the shared normalization used for cross-script
// comparison of Hebrew, Greek, and gateway-language strings.
//
// Two modes are exposed: Clean (loose) for whitespace/cantillation cleanup
// of whole cells, and Word (strict) for word-level equality checks. Both
// are idempotent: applying either twice yields the same string as once.
package text

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalization helpers
var (
	// Hebrew cantillation and vowel points (U+0591–U+05BD plus the
	// scattered points above that block). Maqaf (U+05BE) and sof pasuq
	// (U+05C3) are punctuation, not points, and survive Clean.
	cantillationRegex = regexp.MustCompile(`[\x{0591}-\x{05BD}\x{05BF}\x{05C1}\x{05C2}\x{05C4}\x{05C5}\x{05C7}]`)

	// Runs of Unicode space separators, including NBSP and the special
	// spacing marks that show up in copied USFM text.
	spaceRegex = regexp.MustCompile(`[\s\p{Zs}\x{200B}\x{2060}\x{FEFF}]+`)

	// Everything that is not a word character for matching purposes.
	// Hebrew (U+0590–U+05FF), Greek (U+0370–U+03FF, U+1F00–U+1FFF),
	// letters, digits, and combining marks survive; punctuation and
	// symbols do not.
	nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}\p{M}\x{0590}-\x{05FF}\x{0370}-\x{03FF}\x{1F00}-\x{1FFF}]`)
)

// Clean strips Hebrew cantillation and vowel points, collapses runs of
// Unicode space separators to a single ASCII space, and trims. Input is
// composed to NFC first so precomposed and decomposed forms compare equal.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = cantillationRegex.ReplaceAllString(s, "")
	s = spaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Word normalizes a single token for equality checks: Clean, then strip
// punctuation and symbols, then Unicode case folding. Folding rather
// than lower-casing makes final sigma equal medial sigma, so an
// upper-cased Greek quote still matches verse text.
func Word(s string) string {
	s = Clean(s)
	s = nonWordRegex.ReplaceAllString(s, "")
	return cases.Fold().String(s)
}

// Words normalizes every token of a whitespace-separated string with Word
// and drops tokens that normalize to nothing (pure punctuation).
func Words(s string) []string {
	fields := strings.Fields(Clean(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := Word(f); w != "" {
			out = append(out, w)
		}
	}
	return out
}

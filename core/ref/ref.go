// Package ref parses and orders chapter:verse references.
package ref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Ref represents a chapter:verse reference within a single book.
type Ref struct {
	// Chapter is the chapter number (1-indexed).
	Chapter int `json:"chapter"`

	// Verse is the verse number (1-indexed, 0 for front matter).
	Verse int `json:"verse"`

	// VerseEnd is the ending verse for bridged verses (optional).
	VerseEnd int `json:"verse_end,omitempty"`
}

// refGrammar is the participle grammar for chapter:verse references.
// Examples: "1:3", "1:3-4", "front:intro" is rejected here and handled
// leniently by Compare.
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	Chapter  int  `parser:"@Int"`
	Verse    int  `parser:"':' @Int"`
	VerseEnd *int `parser:"( '-' @Int )?"`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a strict chapter:verse reference string.
// Supported formats:
//   - "1:3" (chapter and verse)
//   - "1:3-4" (verse bridge)
func Parse(s string) (*Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid reference format: %q: %w", s, err)
	}

	r := &Ref{
		Chapter: parsed.Chapter,
		Verse:   parsed.Verse,
	}
	if parsed.VerseEnd != nil {
		r.VerseEnd = *parsed.VerseEnd
	}
	return r, nil
}

// String returns the chapter:verse representation of the reference.
func (r *Ref) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(r.Chapter))
	sb.WriteString(":")
	sb.WriteString(strconv.Itoa(r.Verse))
	if r.VerseEnd > 0 {
		sb.WriteString("-")
		sb.WriteString(strconv.Itoa(r.VerseEnd))
	}
	return sb.String()
}

// leadingInt returns the integer formed by the leading digit run of s,
// or 0 when s does not start with a digit. Mirrors the lenient numeric
// reading used for references like "3-4" or "front".
func leadingInt(s string) int {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0
	}
	return n
}

// Split returns the lenient (chapter, verse) numeric reading of a
// reference string. Missing or non-numeric parts read as 0, and a verse
// bridge reads as its first verse ("1:3-4" -> 1, 3).
func Split(s string) (chapter, verse int) {
	s = strings.TrimSpace(s)
	c, v, found := strings.Cut(s, ":")
	chapter = leadingInt(c)
	if found {
		verse = leadingInt(v)
	}
	return chapter, verse
}

// Compare orders two reference strings numerically: chapter first, then
// verse, so "1:2" sorts before "1:10". Returns -1, 0, or 1.
func Compare(a, b string) int {
	ca, va := Split(a)
	cb, vb := Split(b)
	switch {
	case ca < cb:
		return -1
	case ca > cb:
		return 1
	case va < vb:
		return -1
	case va > vb:
		return 1
	}
	return 0
}

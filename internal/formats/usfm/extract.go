// Package usfm extracts plain verse text from USFM Bible documents.
//
// Only the chapter/verse skeleton and the running text matter here: the
// output is the "chapter:verse" to token-sequence mapping the verse
// reconciler consumes. Formatting markers are dropped, word-level
// markup (\w ...|attrs\w*) keeps the surface word, and footnotes and
// cross-references are removed entirely.
package usfm

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

// USFM parsing helpers
var (
	verseNumRegex = regexp.MustCompile(`^(\d+)(?:-(\d+))?`)
	chapterRegex  = regexp.MustCompile(`^(\d+)`)
	footnoteRegex = regexp.MustCompile(`\\f\s.*?\\f\*|\\x\s.*?\\x\*|\\fe\s.*?\\fe\*`)
	wordRegex     = regexp.MustCompile(`\\\+?w\s+([^|\\]*)(?:\|[^\\]*)?\\\+?w\*`)
	markerRegex   = regexp.MustCompile(`\\\+?[a-zA-Z0-9]+\*?`)
)

// Markers whose value is running verse text continuing the current verse.
var textMarkers = map[string]bool{
	"p": true, "m": true, "pi": true, "mi": true, "nb": true,
	"q": true, "q1": true, "q2": true, "q3": true, "qr": true,
	"qc": true, "qm": true, "li": true, "li1": true, "li2": true,
	"pc": true, "d": true,
}

// ExtractVerseText scans a USFM document and returns the token sequence
// of every verse, keyed by "chapter:verse". Verse bridges ("\v 3-4")
// register the same tokens under each verse in the bridge.
func ExtractVerseText(data []byte) (map[string][]string, error) {
	verses := make(map[string][]string)

	chapter := 0
	verseStart, verseEnd := 0, 0
	var current strings.Builder

	flush := func() {
		if chapter == 0 || verseStart == 0 {
			current.Reset()
			return
		}
		tokens := tokenize(current.String())
		current.Reset()
		if len(tokens) == 0 {
			return
		}
		for v := verseStart; v <= verseEnd; v++ {
			key := strconv.Itoa(chapter) + ":" + strconv.Itoa(v)
			verses[key] = append(verses[key], tokens...)
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "\\") {
			// Continuation of the current verse.
			current.WriteByte(' ')
			current.WriteString(line)
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		marker := strings.TrimPrefix(parts[0], "\\")
		var value string
		if len(parts) > 1 {
			value = parts[1]
		}

		switch {
		case marker == "c":
			flush()
			verseStart, verseEnd = 0, 0
			if m := chapterRegex.FindStringSubmatch(value); m != nil {
				chapter, _ = strconv.Atoi(m[1])
			}

		case marker == "v":
			flush()
			m := verseNumRegex.FindStringSubmatch(value)
			if m == nil {
				verseStart, verseEnd = 0, 0
				continue
			}
			verseStart, _ = strconv.Atoi(m[1])
			verseEnd = verseStart
			if m[2] != "" {
				if end, err := strconv.Atoi(m[2]); err == nil && end >= verseStart {
					verseEnd = end
				}
			}
			current.WriteString(strings.TrimSpace(value[len(m[0]):]))

		case textMarkers[marker]:
			if value != "" {
				current.WriteByte(' ')
				current.WriteString(value)
			}

		default:
			// Header, title, and layout markers carry no verse text.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return verses, nil
}

// tokenize strips inline markup from accumulated verse text and splits
// it into whitespace-separated tokens.
func tokenize(s string) []string {
	s = footnoteRegex.ReplaceAllString(s, " ")
	s = wordRegex.ReplaceAllString(s, "$1")
	s = markerRegex.ReplaceAllString(s, " ")
	return strings.Fields(s)
}

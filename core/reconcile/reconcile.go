// Package reconcile deduplicates merged TWL rows and orders each verse's
// rows by where their quoted text occurs in a reference translation.
package reconcile

import (
	"sort"
	"strconv"
	"strings"

	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/locate"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/table"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/text"
)

// VerseText maps "chapter:verse" to a verse's plain token sequence, as
// produced by the USFM/USX extractors. Read-only here.
type VerseText map[string][]string

// Tokens returns the token sequence for a reference, nil when the verse
// (or the whole map) is unavailable.
func (v VerseText) Tokens(reference string) []string {
	if v == nil {
		return nil
	}
	return v[text.Clean(reference)]
}

// notFound sorts a row after every located row in its verse group.
const notFound = -1

// Reconcile returns a new table in which true duplicates within each
// verse are collapsed to a single survivor and the survivors are ordered
// by the position of their quote in the verse text. When verses is nil
// or a verse is missing, that group degrades to dedupe-only: no
// reordering, original order kept. The header is unchanged.
func Reconcile(t *table.Table, verses VerseText) *table.Table {
	out := t.Clone()
	out.Rows = out.Rows[:0]

	for _, group := range groupByReference(t) {
		survivors := collapse(t, group)
		orderByVerse(t, survivors, verses)
		for _, i := range survivors {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}

// groupByReference buckets row indexes by normalized reference,
// preserving the first-seen order of references.
func groupByReference(t *table.Table) [][]int {
	index := make(map[string]int)
	var groups [][]int
	for i := range t.Rows {
		key := text.Clean(t.Rows[i].Reference)
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], i)
	}
	return groups
}

// collapse keeps exactly one row per duplicate key within a group. The
// survivor has the highest merge-status priority, then the most
// populated cells, then the earliest position. The collapse is lossy on
// purpose: the discarded rows are true duplicates of the survivor.
func collapse(t *table.Table, group []int) []int {
	type bucket struct {
		order    int
		survivor int
	}
	buckets := make(map[table.Key]*bucket)
	norder := 0
	for _, i := range group {
		k := t.Rows[i].Key()
		b, ok := buckets[k]
		if !ok {
			buckets[k] = &bucket{order: norder, survivor: i}
			norder++
			continue
		}
		if better(t, i, b.survivor) {
			b.survivor = i
		}
	}

	survivors := make([]int, 0, len(buckets))
	for _, b := range buckets {
		survivors = append(survivors, b.survivor)
	}
	// Map iteration order must not leak: restore original row order.
	sort.Ints(survivors)
	return survivors
}

// better reports whether row i beats the current survivor j.
func better(t *table.Table, i, j int) bool {
	a, b := &t.Rows[i], &t.Rows[j]
	if p, q := a.Status.Priority(), b.Status.Priority(); p != q {
		return p > q
	}
	if p, q := a.NonEmptyCells(t.Header), b.NonEmptyCells(t.Header); p != q {
		return p > q
	}
	return false // earlier row wins the tie
}

// orderByVerse sorts a group's surviving row indexes by the start
// position of each row's quote in the verse text. Rows whose quote is
// not found, and every row when the verse text is unavailable, keep
// their original relative order after all located rows.
func orderByVerse(t *table.Table, survivors []int, verses VerseText) {
	if len(survivors) < 2 {
		return
	}
	tokens := verses.Tokens(t.Rows[survivors[0]].Reference)

	pos := make(map[int]int, len(survivors))
	for _, i := range survivors {
		pos[i] = rowStart(&t.Rows[i], tokens)
	}

	sort.SliceStable(survivors, func(a, b int) bool {
		pa, pb := pos[survivors[a]], pos[survivors[b]]
		if pa == notFound || pb == notFound {
			return pb == notFound && pa != notFound
		}
		return pa < pb
	})
}

// rowStart locates the row's quote in the verse tokens, preferring the
// gateway-language quote and falling back to the original words.
func rowStart(r *table.Row, tokens []string) int {
	if len(tokens) == 0 {
		return notFound
	}
	quote, occ := r.GLQuote, r.GLOccurrence
	if strings.TrimSpace(quote) == "" {
		quote, occ = r.OrigWords, r.Occurrence
	}
	return locate.Start(tokens, quote, parseOccurrence(occ))
}

// parseOccurrence reads an occurrence cell, defaulting blank to 1.
func parseOccurrence(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return n
}

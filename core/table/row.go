// Package table defines the TWL row model and its tab-separated codec.
//
// A row is a structured record: the soft-delete marker ("DELETED " on the
// reference) and the resolved marker ("DONE " on the disambiguation cell)
// are parsed into explicit booleans, so the merge and reconcile engines
// never see the textual conventions. The codec re-applies them on
// serialization.
package table

import (
	"strings"

	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/text"
)

// Column names of the fixed TWL schema, in order.
const (
	ColReference      = "Reference"
	ColID             = "ID"
	ColTags           = "Tags"
	ColOrigWords      = "OrigWords"
	ColOccurrence     = "Occurrence"
	ColTWLink         = "TWLink"
	ColGLQuote        = "GLQuote"
	ColGLOccurrence   = "GLOccurrence"
	ColDisambiguation = "Disambiguation"
	ColContext        = "Context"
	ColMergeStatus    = "MergeStatus"
	ColAlreadyExists  = "Already Exists"
)

// In-band textual conventions, applied only at the codec boundary.
const (
	deletedPrefix = "DELETED "
	donePrefix    = "DONE "
)

// Status is a row's merge provenance.
type Status string

// Merge provenance values.
const (
	StatusNone   Status = ""
	StatusNew    Status = "NEW"
	StatusOld    Status = "OLD"
	StatusMerged Status = "MERGED"
)

// Priority ranks statuses for duplicate collapse: MERGED > NEW > OLD > none.
func (s Status) Priority() int {
	switch s {
	case StatusMerged:
		return 3
	case StatusNew:
		return 2
	case StatusOld:
		return 1
	}
	return 0
}

// Row is one TWL record with the in-band markers lifted into fields.
type Row struct {
	Reference      string // "chapter:verse", soft-delete prefix stripped
	ID             string
	Tags           string
	OrigWords      string
	Occurrence     string
	TWLink         string
	GLQuote        string
	GLOccurrence   string
	Disambiguation string // candidate list or free text, "DONE " stripped
	Context        string
	Status         Status
	AlreadyExists  bool // set by the reference-interleave merge

	// Deleted marks a soft-deleted row (kept, restorable, excluded
	// from merge matching).
	Deleted bool

	// DisambiguationResolved marks a disambiguation cell the user has
	// settled ("DONE " prefix in the serialized form).
	DisambiguationResolved bool

	// rawWidth is the cell count of the parsed record, used by schema
	// validation. Zero for rows constructed in code.
	rawWidth int

	// overflow holds cells beyond the header's width, kept so a raw
	// parse/serialize round trip loses nothing. NormalizeColumnCount
	// drops them.
	overflow []string
}

// Key is the order-independent identity used for merge matching and
// duplicate collapse.
type Key struct {
	Reference  string
	Words      string
	Occurrence string
	Link       string
}

// NormalizeLink strips the rc wiki-link prefix up to and including
// "/dict/bible/" and lower-cases the rest, so
// "rc://*/tw/dict/bible/kt/God" and "kt/god" compare equal.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if i := strings.Index(link, "/dict/bible/"); i >= 0 {
		link = link[i+len("/dict/bible/"):]
	}
	return strings.ToLower(link)
}

// LinkSuffix returns the final two path segments of a link
// ("rc://*/tw/dict/bible/kt/create" -> "kt/create").
func LinkSuffix(link string) string {
	link = NormalizeLink(link)
	parts := strings.Split(link, "/")
	if len(parts) < 2 {
		return link
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}

// Key derives the row's matching identity. When OrigWords is blank the
// gateway-language quote and occurrence stand in for it.
func (r *Row) Key() Key {
	words := text.Clean(r.OrigWords)
	occ := strings.TrimSpace(r.Occurrence)
	if words == "" {
		words = text.Clean(r.GLQuote) + "\x1f" + strings.TrimSpace(r.GLOccurrence)
	}
	return Key{
		Reference:  text.Clean(r.Reference),
		Words:      words,
		Occurrence: occ,
		Link:       NormalizeLink(r.TWLink),
	}
}

// DisambiguationOptions parses the "(opt1, opt2, ...)" candidate list.
// Returns nil for free text or an empty cell.
func (r *Row) DisambiguationOptions() []string {
	s := strings.TrimSpace(r.Disambiguation)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil
	}
	parts := strings.Split(inner, ",")
	opts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			opts = append(opts, p)
		}
	}
	return opts
}

// SetDisambiguationOptions replaces the candidate list, serializing it
// back to the parenthesized comma-joined form.
func (r *Row) SetDisambiguationOptions(opts []string) {
	if len(opts) == 0 {
		r.Disambiguation = ""
		return
	}
	r.Disambiguation = "(" + strings.Join(opts, ", ") + ")"
}

// NonEmptyCells counts populated cells under the given header, used as
// the completeness tiebreak when collapsing duplicates.
func (r *Row) NonEmptyCells(header []string) int {
	n := 0
	for _, cell := range r.Cells(header) {
		if cell != "" {
			n++
		}
	}
	return n
}

// Cells materializes the row under the given header, re-applying the
// soft-delete and resolved markers.
func (r *Row) Cells(header []string) []string {
	cells := make([]string, len(header))
	for i, name := range header {
		cells[i] = r.cell(name)
	}
	return cells
}

func (r *Row) cell(name string) string {
	switch name {
	case ColReference:
		if r.Deleted {
			return deletedPrefix + r.Reference
		}
		return r.Reference
	case ColID:
		return r.ID
	case ColTags:
		return r.Tags
	case ColOrigWords:
		return r.OrigWords
	case ColOccurrence:
		return r.Occurrence
	case ColTWLink:
		return r.TWLink
	case ColGLQuote:
		return r.GLQuote
	case ColGLOccurrence:
		return r.GLOccurrence
	case ColDisambiguation:
		if r.DisambiguationResolved && r.Disambiguation != "" {
			return donePrefix + r.Disambiguation
		}
		return r.Disambiguation
	case ColContext:
		return r.Context
	case ColMergeStatus:
		return string(r.Status)
	case ColAlreadyExists:
		if r.AlreadyExists {
			return "x"
		}
		return ""
	}
	return ""
}

func (r *Row) setCell(name, value string) {
	switch name {
	case ColReference:
		if rest, ok := strings.CutPrefix(value, deletedPrefix); ok {
			r.Deleted = true
			value = rest
		}
		r.Reference = value
	case ColID:
		r.ID = value
	case ColTags:
		r.Tags = value
	case ColOrigWords:
		r.OrigWords = value
	case ColOccurrence:
		r.Occurrence = value
	case ColTWLink:
		r.TWLink = value
	case ColGLQuote:
		r.GLQuote = value
	case ColGLOccurrence:
		r.GLOccurrence = value
	case ColDisambiguation:
		if rest, ok := strings.CutPrefix(value, donePrefix); ok {
			r.DisambiguationResolved = true
			value = rest
		}
		r.Disambiguation = value
	case ColContext:
		r.Context = value
	case ColMergeStatus:
		r.Status = Status(value)
	case ColAlreadyExists:
		r.AlreadyExists = value != ""
	}
}

package table

import (
	"strconv"
	"strings"

	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/errors"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/ref"
)

// Recognized header sets, by column count. The 9- and 11-column shapes
// append MergeStatus to the 8- and 10-column shapes; "Already Exists"
// replaces it in the interleave-merge output and is accepted wherever
// MergeStatus is.
var headerSets = map[int][]string{
	6:  {ColReference, ColID, ColTags, ColOrigWords, ColOccurrence, ColTWLink},
	8:  {ColReference, ColID, ColTags, ColOrigWords, ColOccurrence, ColTWLink, ColGLQuote, ColGLOccurrence},
	9:  {ColReference, ColID, ColTags, ColOrigWords, ColOccurrence, ColTWLink, ColGLQuote, ColGLOccurrence, ColMergeStatus},
	10: {ColReference, ColID, ColTags, ColOrigWords, ColOccurrence, ColTWLink, ColGLQuote, ColGLOccurrence, ColDisambiguation, ColContext},
	11: {ColReference, ColID, ColTags, ColOrigWords, ColOccurrence, ColTWLink, ColGLQuote, ColGLOccurrence, ColDisambiguation, ColContext, ColMergeStatus},
}

// Header returns the recognized header for a legal column count, or nil.
func Header(columns int) []string {
	h, ok := headerSets[columns]
	if !ok {
		return nil
	}
	out := make([]string, len(h))
	copy(out, h)
	return out
}

// Table is a header plus an ordered sequence of rows. Transformations
// return new tables; no table is mutated in place.
type Table struct {
	Header []string
	Rows   []Row
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Header: make([]string, len(t.Header)),
		Rows:   make([]Row, len(t.Rows)),
	}
	copy(out.Header, t.Header)
	copy(out.Rows, t.Rows)
	return out
}

// HasColumn reports whether the header contains the named column.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// WithColumn returns a copy of the table whose header includes the named
// column (appended when absent).
func (t *Table) WithColumn(name string) *Table {
	out := t.Clone()
	if !out.HasColumn(name) {
		out.Header = append(out.Header, name)
	}
	return out
}

// HasHeader reports whether the first record of text looks like a TWL
// header: its first three cells are the literal column names
// Reference, ID, Tags.
func HasHeader(text string) bool {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	cells := strings.Split(strings.TrimRight(line, "\r"), "\t")
	return len(cells) >= 3 &&
		cells[0] == ColReference && cells[1] == ColID && cells[2] == ColTags
}

// Parse parses tab-separated, newline-delimited text into a Table.
// When expectHeader is false the header is inferred from the first
// record's column count. Blank lines are skipped. Data rows whose cell
// count differs from the header's are kept as parsed; ValidateSchema
// rejects them and NormalizeColumnCount repairs them.
func Parse(text string, expectHeader bool) (*Table, error) {
	lines := splitRecords(text)
	if len(lines) == 0 {
		return nil, errors.NewParse("TSV", "", "empty input")
	}

	t := &Table{}
	start := 0
	if expectHeader {
		if !HasHeader(lines[0]) {
			return nil, &errors.SchemaError{Message: "missing TWL header row"}
		}
		t.Header = strings.Split(lines[0], "\t")
		start = 1
	} else {
		n := len(strings.Split(lines[0], "\t"))
		t.Header = Header(n)
		if t.Header == nil {
			return nil, &errors.SchemaError{Columns: n, Message: "no recognized header for column count"}
		}
	}

	for _, line := range lines[start:] {
		cells := strings.Split(line, "\t")
		var row Row
		row.rawWidth = len(cells)
		for i, name := range t.Header {
			if i < len(cells) {
				row.setCell(name, cells[i])
			}
		}
		if len(cells) > len(t.Header) {
			row.overflow = append([]string(nil), cells[len(t.Header):]...)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Serialize renders the table back to tab-separated text with a trailing
// newline. The in-band markers are re-applied by Row.Cells.
func Serialize(t *Table) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Header, "\t"))
	sb.WriteByte('\n')
	for i := range t.Rows {
		cells := t.Rows[i].Cells(t.Header)
		cells = append(cells, t.Rows[i].overflow...)
		sb.WriteString(strings.Join(cells, "\t"))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ValidateSchema checks that the header is one of the recognized TWL
// shapes, every parsed row has the header's cell count, and every
// reference cell strict-parses as chapter:verse. Used to gate
// user-pasted content before it reaches the merge engine.
func ValidateSchema(t *Table) error {
	want := Header(len(t.Header))
	if want == nil {
		return &errors.SchemaError{Columns: len(t.Header), Message: "unrecognized column count"}
	}
	for i, name := range want {
		got := t.Header[i]
		if got == name {
			continue
		}
		// The interleave merge writes "Already Exists" where the
		// keyed merge writes MergeStatus.
		if name == ColMergeStatus && got == ColAlreadyExists {
			continue
		}
		return &errors.SchemaError{
			Columns: len(t.Header),
			Message: "unexpected column " + got + " (want " + name + ")",
		}
	}
	for i := range t.Rows {
		if w := t.Rows[i].rawWidth; w != 0 && w != len(t.Header) {
			return errors.NewSchema(i+1, w, "cell count differs from header")
		}
		if _, err := ref.Parse(t.Rows[i].Reference); err != nil {
			return errors.NewSchema(i+1, len(t.Header),
				"unparseable reference "+strconv.Quote(t.Rows[i].Reference))
		}
	}
	return nil
}

// NormalizeColumnCount returns a copy of the table in which every row is
// padded or truncated to the header's width, overflow cells dropped.
// Run defensively before any column-indexed access on imported text.
func NormalizeColumnCount(t *Table) *Table {
	out := t.Clone()
	for i := range out.Rows {
		out.Rows[i].rawWidth = len(out.Header)
		out.Rows[i].overflow = nil
	}
	return out
}

// splitRecords splits text into non-blank, CR-trimmed records.
func splitRecords(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

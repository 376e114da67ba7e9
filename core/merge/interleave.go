package merge

import (
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/ref"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/table"
)

// InterleaveByReference merges existing rows that carry no link metadata
// beyond the 6-column schema into a freshly generated table. Both inputs
// must already be sorted by reference.
//
// The walk keeps two cursors. For each existing row: generated rows with
// strictly smaller references are emitted first; then the generated
// sequence is searched forward for a row whose (Reference, OrigWords,
// Occurrence) triple equals the existing row's. On a hit, generated rows
// up to and including the match are emitted, the match carrying the
// existing row's first six cells and an "Already Exists" mark. On a
// miss, the existing row itself is emitted with the mark. Soft-deleted
// existing rows are never matched, only carried through.
func InterleaveByReference(generated, existing *table.Table) *table.Table {
	out := generated.WithColumn(table.ColAlreadyExists)
	out.Rows = make([]table.Row, 0, len(generated.Rows)+len(existing.Rows))

	gen := generated.Rows
	g := 0
	for _, ex := range existing.Rows {
		for g < len(gen) && ref.Compare(gen[g].Reference, ex.Reference) < 0 {
			out.Rows = append(out.Rows, gen[g])
			g++
		}

		match := -1
		if !ex.Deleted {
			for j := g; j < len(gen); j++ {
				if gen[j].Reference == ex.Reference &&
					gen[j].OrigWords == ex.OrigWords &&
					gen[j].Occurrence == ex.Occurrence {
					match = j
					break
				}
			}
		}

		if match < 0 {
			row := ex
			row.AlreadyExists = true
			out.Rows = append(out.Rows, row)
			continue
		}

		for ; g < match; g++ {
			out.Rows = append(out.Rows, gen[g])
		}
		row := gen[match]
		copyIdentity(&row, ex)
		row.AlreadyExists = true
		out.Rows = append(out.Rows, row)
		g = match + 1
	}

	out.Rows = append(out.Rows, gen[g:]...)
	return out
}

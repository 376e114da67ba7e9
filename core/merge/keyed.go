package merge

import (
	"strings"

	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/ref"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/table"
)

// Keyed performs the three-way merge used for the standard
// disambiguated workflow. Each generated row is matched against existing
// rows sharing its (reference, words, occurrence) key: first by exact
// link, then by an existing link whose final two path segments appear in
// the generated row's disambiguation options. Matched rows keep the
// existing identity cells and become MERGED; unmatched generated rows
// become NEW; never-consumed existing rows are emitted as OLD in
// reference order, ahead of same-reference NEW/MERGED rows.
func Keyed(generated, existing *table.Table) *table.Table {
	out := generated.Clone()
	if len(generated.Rows) > 0 || len(existing.Rows) > 0 {
		out = out.WithColumn(table.ColMergeStatus)
	}

	// Bucket existing rows by partial key, preserving input order.
	// A key is not always unique, so every duplicate is kept.
	buckets := make(map[table.Key][]int)
	for i := range existing.Rows {
		if existing.Rows[i].Deleted {
			continue
		}
		k := matchKey(&existing.Rows[i])
		buckets[k] = append(buckets[k], i)
	}

	consumed := make([]bool, len(existing.Rows))
	processed := make([]table.Row, 0, len(generated.Rows))

	for _, g := range generated.Rows {
		row := g
		candidates := buckets[matchKey(&row)]

		match := pickCandidate(existing, candidates, &row)
		if match < 0 {
			row.Status = table.StatusNew
			processed = append(processed, row)
			continue
		}

		ex := existing.Rows[match]
		generatedChoice := table.LinkSuffix(row.TWLink)
		existingChoice := table.LinkSuffix(ex.TWLink)
		copyIdentity(&row, ex)
		genOpts, exOpts := g.DisambiguationOptions(), ex.DisambiguationOptions()
		if len(genOpts) > 0 || len(exOpts) > 0 {
			row.SetDisambiguationOptions(unionOptions(
				genOpts, exOpts, existingChoice, generatedChoice))
		} else if strings.TrimSpace(ex.Disambiguation) != "" {
			// Resolved free text carries over; neither side has an
			// option list to rebuild from.
			row.Disambiguation = ex.Disambiguation
		}
		if ex.DisambiguationResolved {
			row.DisambiguationResolved = true
		}
		row.Status = table.StatusMerged
		processed = append(processed, row)

		consumed[match] = true
		buckets[matchKey(&ex)] = removeIndex(buckets[matchKey(&ex)], match)
	}

	// Existing rows never consumed become OLD, in their original
	// (reference-sorted) order.
	leftovers := make([]table.Row, 0)
	for i := range existing.Rows {
		if consumed[i] {
			continue
		}
		row := existing.Rows[i]
		row.Status = table.StatusOld
		leftovers = append(leftovers, row)
	}

	// Interleave by reference; at equal references OLD rows lead.
	out.Rows = make([]table.Row, 0, len(processed)+len(leftovers))
	p, l := 0, 0
	for p < len(processed) && l < len(leftovers) {
		if ref.Compare(leftovers[l].Reference, processed[p].Reference) <= 0 {
			out.Rows = append(out.Rows, leftovers[l])
			l++
		} else {
			out.Rows = append(out.Rows, processed[p])
			p++
		}
	}
	out.Rows = append(out.Rows, processed[p:]...)
	out.Rows = append(out.Rows, leftovers[l:]...)
	return out
}

// pickCandidate chooses the existing row a generated row merges with:
// the first candidate with the exact same normalized link, else the
// first whose link suffix is one of the generated row's disambiguation
// options.
func pickCandidate(existing *table.Table, candidates []int, g *table.Row) int {
	gLink := table.NormalizeLink(g.TWLink)
	for _, i := range candidates {
		if table.NormalizeLink(existing.Rows[i].TWLink) == gLink {
			return i
		}
	}
	opts := g.DisambiguationOptions()
	if len(opts) == 0 {
		return -1
	}
	optSet := make(map[string]bool, len(opts))
	for _, o := range opts {
		optSet[table.NormalizeLink(o)] = true
	}
	for _, i := range candidates {
		if optSet[table.LinkSuffix(existing.Rows[i].TWLink)] {
			return i
		}
	}
	return -1
}

func removeIndex(s []int, v int) []int {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

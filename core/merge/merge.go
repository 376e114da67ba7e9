// Package merge reconciles a freshly generated TWL table with an
// existing one.
//
// Two named strategies exist because the domain has two existing-content
// shapes and they never unified upstream:
//
//   - InterleaveByReference handles plain 6-column existing content and
//     marks matches with an "Already Exists" column.
//   - Keyed handles disambiguated/GLQuote-bearing content and assigns
//     NEW / OLD / MERGED provenance.
//
// The strategies keep their own same-reference tie-break rules. Both are
// deterministic: bucket contents preserve input order and no map
// iteration order leaks into the output.
package merge

import (
	"strings"

	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/table"
)

// copyIdentity replaces the first six schema cells of dst with src's,
// keeping dst's gateway-language and disambiguation cells.
func copyIdentity(dst *table.Row, src table.Row) {
	dst.Reference = src.Reference
	dst.ID = src.ID
	dst.Tags = src.Tags
	dst.OrigWords = src.OrigWords
	dst.Occurrence = src.Occurrence
	dst.TWLink = src.TWLink
	dst.Deleted = src.Deleted
}

// matchKey is the partial row key used to bucket existing rows for the
// keyed strategy. The link is deliberately left out: link agreement is
// resolved per candidate, first by exact link then via the generated
// row's disambiguation options.
func matchKey(r *table.Row) table.Key {
	k := r.Key()
	k.Link = ""
	return k
}

// unionOptions merges the existing row's resolved choice and options
// into the generated row's option list. When the existing choice differs
// from the generated one it moves to the front, so the user sees the
// previously confirmed sense first.
func unionOptions(generated, existing []string, existingChoice, generatedChoice string) []string {
	out := make([]string, 0, len(generated)+len(existing)+1)
	seen := make(map[string]bool, len(generated)+len(existing)+1)
	add := func(opt string) {
		opt = strings.TrimSpace(opt)
		if opt == "" || seen[opt] {
			return
		}
		seen[opt] = true
		out = append(out, opt)
	}
	if existingChoice != "" && existingChoice != generatedChoice {
		add(existingChoice)
	}
	for _, o := range generated {
		add(o)
	}
	for _, o := range existing {
		add(o)
	}
	return out
}

// Package pipeline chains the TWL reconciliation steps: parse both
// tables, merge, deduplicate and verse-order, serialize. Each run is a
// pure function of its input; concurrent runs over different books need
// no coordination.
package pipeline

import (
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/errors"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/merge"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/reconcile"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/table"
)

// Strategy names the two merge modes.
type Strategy string

// Merge strategies.
const (
	// StrategyKeyed is the standard disambiguated workflow with
	// NEW/OLD/MERGED provenance.
	StrategyKeyed Strategy = "keyed"

	// StrategyInterleave handles plain 6-column existing content and
	// marks matches with an "Already Exists" column.
	StrategyInterleave Strategy = "interleave"
)

// Input is one reconciliation request.
type Input struct {
	// Generated is the freshly generated table, as TSV text.
	Generated string

	// Existing is the user-supplied existing table, as TSV text.
	// Empty means nothing to merge against.
	Existing string

	// Verses is the reference verse text for ordering. Nil degrades
	// reconciliation to dedupe-only; the pipeline still runs.
	Verses reconcile.VerseText

	// Strategy selects the merge mode. Defaults to StrategyKeyed.
	Strategy Strategy

	// FillIDs assigns deterministic IDs to rows that lack one.
	FillIDs bool
}

// Run executes the pipeline and returns the reconciled table.
// Validation failures in either input surface here, before any merge
// step runs.
func Run(in Input) (*table.Table, error) {
	generated, err := parseInput(in.Generated, "generated")
	if err != nil {
		return nil, err
	}

	existing := &table.Table{Header: table.Header(6)}
	if in.Existing != "" {
		existing, err = parseInput(in.Existing, "existing")
		if err != nil {
			return nil, err
		}
	}

	var merged *table.Table
	switch in.Strategy {
	case StrategyInterleave:
		merged = merge.InterleaveByReference(generated, existing)
	case StrategyKeyed, "":
		merged = merge.Keyed(generated, existing)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown merge strategy %q", in.Strategy)
	}

	if in.FillIDs {
		merged = table.FillIDs(merged)
	}
	return reconcile.Reconcile(merged, in.Verses), nil
}

// RunText executes the pipeline and serializes the result.
func RunText(in Input) (string, error) {
	t, err := Run(in)
	if err != nil {
		return "", err
	}
	return table.Serialize(t), nil
}

// parseInput parses one TSV input and gates it through schema
// validation so the engines can assume well-formed rows.
func parseInput(text, name string) (*table.Table, error) {
	t, err := table.Parse(text, table.HasHeader(text))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s table", name)
	}
	if err := table.ValidateSchema(t); err != nil {
		return nil, errors.Wrapf(err, "validating %s table", name)
	}
	return table.NormalizeColumnCount(t), nil
}

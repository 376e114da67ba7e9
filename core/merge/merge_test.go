package merge

import (
	"testing"

	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/table"
)

func genTable(rows ...table.Row) *table.Table {
	return &table.Table{Header: table.Header(10), Rows: rows}
}

func exTable(rows ...table.Row) *table.Table {
	return &table.Table{Header: table.Header(8), Rows: rows}
}

func row(reference, id, words, occ, link string) table.Row {
	return table.Row{
		Reference:  reference,
		ID:         id,
		OrigWords:  words,
		Occurrence: occ,
		TWLink:     link,
	}
}

func statusCounts(t *table.Table) map[table.Status]int {
	counts := make(map[table.Status]int)
	for i := range t.Rows {
		counts[t.Rows[i].Status]++
	}
	return counts
}

func TestKeyedIdenticalTables(t *testing.T) {
	rows := []table.Row{
		row("1:1", "aaa1", "בראשית", "1", "rc://*/tw/dict/bible/kt/beginning"),
		row("1:2", "bbb2", "רוח", "1", "rc://*/tw/dict/bible/kt/holyspirit"),
		row("2:4", "ccc3", "שמים", "1", "rc://*/tw/dict/bible/kt/heaven"),
	}
	merged := Keyed(genTable(rows...), genTable(rows...))

	counts := statusCounts(merged)
	if counts[table.StatusMerged] != 3 || counts[table.StatusNew] != 0 || counts[table.StatusOld] != 0 {
		t.Errorf("status counts = %v, want 3 MERGED", counts)
	}
	if len(merged.Rows) != 3 {
		t.Errorf("row count = %d, want 3", len(merged.Rows))
	}
}

func TestKeyedConservation(t *testing.T) {
	gen := genTable(
		row("1:1", "g1", "alpha", "1", "kt/alpha"),
		row("1:2", "g2", "beta", "1", "kt/beta"),
		row("1:5", "g3", "gamma", "1", "kt/gamma"),
	)
	existing := exTable(
		row("1:2", "e1", "beta", "1", "kt/beta"),       // matches g2
		row("1:3", "e2", "delta", "1", "kt/delta"),     // unmatched
		row("1:4", "e3", "epsilon", "2", "kt/epsilon"), // unmatched
	)

	merged := Keyed(gen, existing)

	counts := statusCounts(merged)
	if counts[table.StatusMerged] != 1 {
		t.Errorf("MERGED = %d, want 1", counts[table.StatusMerged])
	}
	if counts[table.StatusNew] != 2 {
		t.Errorf("NEW = %d, want 2", counts[table.StatusNew])
	}
	if counts[table.StatusOld] != 2 {
		t.Errorf("OLD = %d, want 2", counts[table.StatusOld])
	}
	// matched pairs + unmatched generated + unmatched existing
	if len(merged.Rows) != 1+2+2 {
		t.Errorf("row count = %d, want 5", len(merged.Rows))
	}

	// The merged row carries the existing identity cells.
	for i := range merged.Rows {
		if merged.Rows[i].Status == table.StatusMerged && merged.Rows[i].ID != "e1" {
			t.Errorf("merged row ID = %q, want e1", merged.Rows[i].ID)
		}
	}
}

func TestKeyedReferenceOrder(t *testing.T) {
	gen := genTable(
		row("1:2", "g1", "alpha", "1", "kt/alpha"),
		row("1:10", "g2", "beta", "1", "kt/beta"),
	)
	existing := exTable(
		row("1:2", "e1", "other", "1", "kt/other"),
		row("1:9", "e2", "delta", "1", "kt/delta"),
	)

	merged := Keyed(gen, existing)

	refs := make([]string, len(merged.Rows))
	for i := range merged.Rows {
		refs[i] = merged.Rows[i].Reference
	}
	want := []string{"1:2", "1:2", "1:9", "1:10"}
	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("order = %v, want %v", refs, want)
		}
	}

	// At the tied reference the OLD row leads.
	if merged.Rows[0].Status != table.StatusOld {
		t.Errorf("first 1:2 row status = %s, want OLD", merged.Rows[0].Status)
	}
	if merged.Rows[1].Status != table.StatusNew {
		t.Errorf("second 1:2 row status = %s, want NEW", merged.Rows[1].Status)
	}
}

func TestKeyedDisambiguationMatch(t *testing.T) {
	genRow := row("1:3", "g1", "ברא", "1", "rc://*/tw/dict/bible/kt/create")
	genRow.Disambiguation = "(kt/create, kt/beginning)"

	exRow := row("1:3", "e1", "ברא", "1", "rc://*/tw/dict/bible/kt/beginning")

	merged := Keyed(genTable(genRow), exTable(exRow))

	if len(merged.Rows) != 1 {
		t.Fatalf("row count = %d, want 1", len(merged.Rows))
	}
	got := merged.Rows[0]
	if got.Status != table.StatusMerged {
		t.Fatalf("status = %s, want MERGED", got.Status)
	}
	if got.TWLink != exRow.TWLink {
		t.Errorf("TWLink = %q, want existing link retained", got.TWLink)
	}
	// The existing choice moved to the front of the option list.
	opts := got.DisambiguationOptions()
	if len(opts) == 0 || opts[0] != "kt/beginning" {
		t.Errorf("options = %v, want kt/beginning first", opts)
	}
}

func TestKeyedResolvedFreeTextRetained(t *testing.T) {
	// The existing row's disambiguation was resolved to free text
	// ("DONE create" in serialized form). A merge must carry that text,
	// not rebuild an option list from nothing.
	genRow := row("1:3", "g1", "ברא", "1", "rc://*/tw/dict/bible/kt/create")
	exRow := row("1:3", "e1", "ברא", "1", "rc://*/tw/dict/bible/kt/create")
	exRow.Disambiguation = "create"
	exRow.DisambiguationResolved = true

	merged := Keyed(genTable(genRow), genTable(exRow))

	if len(merged.Rows) != 1 {
		t.Fatalf("row count = %d, want 1", len(merged.Rows))
	}
	got := merged.Rows[0]
	if got.Status != table.StatusMerged {
		t.Fatalf("status = %s, want MERGED", got.Status)
	}
	if got.Disambiguation != "create" {
		t.Errorf("Disambiguation = %q, want %q", got.Disambiguation, "create")
	}
	if !got.DisambiguationResolved {
		t.Error("DisambiguationResolved flag lost")
	}
	cells := got.Cells(merged.Header)
	if cells[8] != "DONE create" {
		t.Errorf("serialized disambiguation cell = %q, want %q", cells[8], "DONE create")
	}
}

func TestKeyedDuplicateKeysConsumeOnce(t *testing.T) {
	// Two generated rows share a key but differ by link; one existing
	// row matches the second link. A consumed row cannot match twice.
	g1 := row("1:3", "g1", "ברא", "1", "rc://*/tw/dict/bible/kt/create")
	g1.Disambiguation = "(kt/create, kt/beginning)"
	g2 := row("1:3", "g2", "ברא", "1", "rc://*/tw/dict/bible/kt/beginning")
	g2.Disambiguation = "(kt/create, kt/beginning)"

	ex := row("1:3", "e1", "ברא", "1", "rc://*/tw/dict/bible/kt/beginning")

	merged := Keyed(genTable(g1, g2), exTable(ex))

	counts := statusCounts(merged)
	if counts[table.StatusMerged] != 1 || counts[table.StatusNew] != 1 {
		t.Errorf("status counts = %v, want 1 MERGED + 1 NEW", counts)
	}
	if len(merged.Rows) != 2 {
		t.Errorf("row count = %d, want 2", len(merged.Rows))
	}
}

func TestKeyedDeletedExistingNeverMatches(t *testing.T) {
	deleted := row("1:1", "e1", "alpha", "1", "kt/alpha")
	deleted.Deleted = true

	merged := Keyed(genTable(row("1:1", "g1", "alpha", "1", "kt/alpha")), exTable(deleted))

	counts := statusCounts(merged)
	if counts[table.StatusNew] != 1 || counts[table.StatusOld] != 1 {
		t.Errorf("status counts = %v, want 1 NEW + 1 OLD", counts)
	}
	for i := range merged.Rows {
		if merged.Rows[i].Status == table.StatusOld && !merged.Rows[i].Deleted {
			t.Error("soft-deleted existing row lost its Deleted flag")
		}
	}
}

func TestKeyedEmptyInputs(t *testing.T) {
	t.Run("both empty", func(t *testing.T) {
		merged := Keyed(genTable(), exTable())
		if merged.HasColumn(table.ColMergeStatus) {
			t.Error("MergeStatus column added with no rows")
		}
	})
	t.Run("no existing", func(t *testing.T) {
		merged := Keyed(genTable(row("1:1", "g1", "w", "1", "kt/w")), exTable())
		if !merged.HasColumn(table.ColMergeStatus) {
			t.Error("MergeStatus column missing")
		}
		if merged.Rows[0].Status != table.StatusNew {
			t.Errorf("status = %s, want NEW", merged.Rows[0].Status)
		}
	})
}

func TestInterleaveSubstitution(t *testing.T) {
	gen := &table.Table{Header: table.Header(8), Rows: []table.Row{
		row("1:1", "g1", "alpha", "1", "kt/alpha"),
		row("1:2", "g2", "beta", "1", "kt/beta"),
		row("1:3", "g3", "gamma", "1", "kt/gamma"),
	}}
	existing := &table.Table{Header: table.Header(6), Rows: []table.Row{
		row("1:2", "e2", "beta", "1", "kt/beta-old"),
	}}

	merged := InterleaveByReference(gen, existing)

	if !merged.HasColumn(table.ColAlreadyExists) {
		t.Fatal("Already Exists column missing")
	}
	if len(merged.Rows) != 3 {
		t.Fatalf("row count = %d, want 3", len(merged.Rows))
	}

	match := merged.Rows[1]
	if !match.AlreadyExists {
		t.Error("matched row not marked")
	}
	if match.ID != "e2" || match.TWLink != "kt/beta-old" {
		t.Errorf("matched row did not take existing identity: %+v", match)
	}
	if merged.Rows[0].AlreadyExists || merged.Rows[2].AlreadyExists {
		t.Error("unmatched generated rows were marked")
	}
}

func TestInterleaveUnmatchedExisting(t *testing.T) {
	gen := &table.Table{Header: table.Header(8), Rows: []table.Row{
		row("1:1", "g1", "alpha", "1", "kt/alpha"),
		row("1:3", "g2", "gamma", "1", "kt/gamma"),
	}}
	existing := &table.Table{Header: table.Header(6), Rows: []table.Row{
		row("1:2", "e1", "missing", "1", "kt/missing"),
	}}

	merged := InterleaveByReference(gen, existing)

	if len(merged.Rows) != 3 {
		t.Fatalf("row count = %d, want 3", len(merged.Rows))
	}
	mid := merged.Rows[1]
	if mid.ID != "e1" || !mid.AlreadyExists {
		t.Errorf("existing row not emitted in place: %+v", mid)
	}
	if merged.Rows[0].Reference != "1:1" || merged.Rows[2].Reference != "1:3" {
		t.Errorf("generated rows out of order")
	}
}

func TestInterleaveNumericOrder(t *testing.T) {
	// "1:10" sorts after "1:9" numerically.
	gen := &table.Table{Header: table.Header(8), Rows: []table.Row{
		row("1:10", "g1", "alpha", "1", "kt/alpha"),
	}}
	existing := &table.Table{Header: table.Header(6), Rows: []table.Row{
		row("1:9", "e1", "beta", "1", "kt/beta"),
	}}

	merged := InterleaveByReference(gen, existing)
	if merged.Rows[0].Reference != "1:9" || merged.Rows[1].Reference != "1:10" {
		t.Errorf("order = %q, %q; want 1:9 then 1:10",
			merged.Rows[0].Reference, merged.Rows[1].Reference)
	}
}

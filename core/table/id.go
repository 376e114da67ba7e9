package table

import (
	"strconv"

	"github.com/zeebo/blake3"
)

// TWL row IDs are four characters: a letter followed by three letters or
// digits (e.g. "xk2p").
const (
	idLetters = "abcdefghijklmnopqrstuvwxyz"
	idAlnum   = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// DeriveID returns a deterministic four-character row ID from the seed.
// Derivation from row content keeps regenerated tables stable across
// runs, unlike the random IDs the upstream generators hand out.
func DeriveID(seed string) string {
	sum := blake3.Sum256([]byte(seed))
	id := make([]byte, 4)
	id[0] = idLetters[int(sum[0])%len(idLetters)]
	for i := 1; i < 4; i++ {
		id[i] = idAlnum[int(sum[i])%len(idAlnum)]
	}
	return string(id)
}

// FillIDs returns a copy of the table in which every row with a blank ID
// gets a deterministic one derived from its key and position. Existing
// IDs are never rewritten.
func FillIDs(t *Table) *Table {
	out := t.Clone()
	seen := make(map[string]bool, len(out.Rows))
	for i := range out.Rows {
		if out.Rows[i].ID != "" {
			seen[out.Rows[i].ID] = true
		}
	}
	for i := range out.Rows {
		if out.Rows[i].ID != "" {
			continue
		}
		k := out.Rows[i].Key()
		seed := k.Reference + "\x1f" + k.Words + "\x1f" + k.Occurrence + "\x1f" + k.Link
		id := DeriveID(seed)
		// Bump the seed on collision so IDs stay unique per table.
		for n := 0; seen[id]; n++ {
			id = DeriveID(seed + "\x1f" + strconv.Itoa(n))
		}
		seen[id] = true
		out.Rows[i].ID = id
	}
	return out
}

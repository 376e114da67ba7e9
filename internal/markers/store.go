// Package markers persists per-user unlink and soft-delete decisions.
//
// The browser front end records a marker when a user deletes or unlinks
// a row and removes it when the row is restored; on the next merge the
// markers are re-applied to the freshly generated table. The store is a
// small SQLite database keyed by the composite row identity, standing in
// for the key-value service the hosted deployment uses.
package markers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/table"
)

// Kind distinguishes the two marker flavors.
type Kind string

// Marker kinds.
const (
	KindDeleted  Kind = "deleted"
	KindUnlinked Kind = "unlinked"
)

// Marker records one user decision about one row.
type Marker struct {
	ID         string    // assigned on Put
	User       string
	Book       string
	Kind       Kind
	Reference  string
	OrigWords  string
	Occurrence string
	TWLink     string
	CreatedAt  time.Time
}

// KeyOf returns the composite identity a marker is stored under.
func KeyOf(user, book string, kind Kind, k table.Key) string {
	return user + "\x1f" + book + "\x1f" + string(kind) + "\x1f" +
		k.Reference + "\x1f" + k.Words + "\x1f" + k.Occurrence + "\x1f" + k.Link
}

const schema = `
CREATE TABLE IF NOT EXISTS markers (
	id          TEXT PRIMARY KEY,
	user        TEXT NOT NULL,
	book        TEXT NOT NULL,
	kind        TEXT NOT NULL,
	reference   TEXT NOT NULL,
	orig_words  TEXT NOT NULL,
	occurrence  TEXT NOT NULL,
	twlink      TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	UNIQUE (user, book, kind, reference, orig_words, occurrence, twlink)
);
CREATE INDEX IF NOT EXISTS markers_user_book ON markers (user, book);
`

// Store is a marker database. Safe for concurrent use; SQLite handles
// the locking.
type Store struct {
	db *sql.DB
}

// DriverType returns "purego" or "cgo" depending on the build.
func DriverType() string { return driverType }

// Open opens (creating if needed) a marker store at path. Use ":memory:"
// for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening marker store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing marker schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a marker, replacing any existing marker with the same
// composite identity. The identity fields are stored in normalized key
// form so that Put and Remove agree regardless of pointing or link
// prefixes in the caller's copy. The stored marker's ID is returned.
func (s *Store) Put(ctx context.Context, m Marker) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	k := (&table.Row{
		Reference:  m.Reference,
		OrigWords:  m.OrigWords,
		Occurrence: m.Occurrence,
		TWLink:     m.TWLink,
	}).Key()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO markers (id, user, book, kind, reference, orig_words, occurrence, twlink, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user, book, kind, reference, orig_words, occurrence, twlink)
		DO UPDATE SET id = excluded.id, created_at = excluded.created_at`,
		m.ID, m.User, m.Book, string(m.Kind), k.Reference, k.Words, k.Occurrence, k.Link, m.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("storing marker: %w", err)
	}
	return m.ID, nil
}

// Remove deletes the marker with the given composite identity. Removing
// a marker that does not exist is not an error.
func (s *Store) Remove(ctx context.Context, user, book string, kind Kind, k table.Key) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM markers
		WHERE user = ? AND book = ? AND kind = ?
		  AND reference = ? AND orig_words = ? AND occurrence = ? AND twlink = ?`,
		user, book, string(kind), k.Reference, k.Words, k.Occurrence, k.Link)
	if err != nil {
		return fmt.Errorf("removing marker: %w", err)
	}
	return nil
}

// List returns a user's markers for a book, newest first.
func (s *Store) List(ctx context.Context, user, book string) ([]Marker, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user, book, kind, reference, orig_words, occurrence, twlink, created_at
		FROM markers
		WHERE user = ? AND book = ?
		ORDER BY created_at DESC, id`,
		user, book)
	if err != nil {
		return nil, fmt.Errorf("listing markers: %w", err)
	}
	defer rows.Close()

	var out []Marker
	for rows.Next() {
		var m Marker
		var kind string
		if err := rows.Scan(&m.ID, &m.User, &m.Book, &kind, &m.Reference,
			&m.OrigWords, &m.Occurrence, &m.TWLink, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning marker: %w", err)
		}
		m.Kind = Kind(kind)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Apply returns a copy of the table with the user's markers re-applied:
// rows matching a "deleted" marker become soft-deleted, rows matching an
// "unlinked" marker lose their TWLink. Marker matching uses the
// normalized row key, so diacritics and link prefixes do not matter.
func Apply(t *table.Table, ms []Marker) *table.Table {
	deleted := make(map[table.Key]bool)
	unlinked := make(map[table.Key]bool)
	for _, m := range ms {
		row := table.Row{
			Reference:  m.Reference,
			OrigWords:  m.OrigWords,
			Occurrence: m.Occurrence,
			TWLink:     m.TWLink,
		}
		switch m.Kind {
		case KindDeleted:
			deleted[row.Key()] = true
		case KindUnlinked:
			unlinked[row.Key()] = true
		}
	}

	out := t.Clone()
	for i := range out.Rows {
		k := out.Rows[i].Key()
		if deleted[k] {
			out.Rows[i].Deleted = true
		}
		if unlinked[k] {
			out.Rows[i].TWLink = ""
		}
	}
	return out
}

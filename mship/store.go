package mship

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	ledger    TEXT NOT NULL,
	member_id TEXT NOT NULL,
	position  INTEGER NOT NULL,
	attrs     BLOB NOT NULL,
	PRIMARY KEY (ledger, member_id)
);
CREATE INDEX IF NOT EXISTS idx_ledger_position ON ledger_entries (ledger, position);
`

// Store persists ledgers in a SQLite database so long-lived managers can
// survive restarts. Ledgers are addressed by name, e.g. "gml" and "crl".
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+
		"?_pragma=journal_mode(WAL)"+
		"&_pragma=busy_timeout(5000)"+ // Wait up to 5s on lock instead of returning SQLITE_BUSY immediately
		"&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Limit connection pool - SQLite handles concurrent writes poorly
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts all entries of l under the given ledger name.
func (s *Store) Save(ctx context.Context, name string, l *Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ledger_entries (ledger, member_id, position, attrs) VALUES (?, ?, ?, ?)
		 ON CONFLICT(ledger, member_id) DO UPDATE SET position = excluded.position, attrs = excluded.attrs`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for pos, e := range l.Entries() {
		if _, err := stmt.ExecContext(ctx, name, e.ID, pos, encodeAttrs(e.Attrs)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load returns the ledger stored under name, empty if none was saved.
func (s *Store) Load(ctx context.Context, name string) (*Ledger, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member_id, attrs FROM ledger_entries WHERE ledger = ? ORDER BY position`,
		name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	l := NewLedger()
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		attrs, err := decodeAttrs(blob)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", id, err)
		}
		if err := l.Append(&Entry{ID: id, Attrs: attrs}); err != nil {
			return nil, err
		}
	}
	return l, rows.Err()
}

func encodeAttrs(attrs [][]byte) []byte {
	size := 4
	for _, a := range attrs {
		size += 4 + len(a)
	}
	out := make([]byte, 0, size)
	out = appendUint32(out, uint32(len(attrs)))
	for _, a := range attrs {
		out = appendUint32(out, uint32(len(a)))
		out = append(out, a...)
	}
	return out
}

func decodeAttrs(blob []byte) ([][]byte, error) {
	n, blob, err := takeUint32(blob)
	if err != nil {
		return nil, err
	}
	attrs := make([][]byte, 0, n)
	for i := uint32(0); i < n; i++ {
		var sz uint32
		if sz, blob, err = takeUint32(blob); err != nil {
			return nil, err
		}
		if uint32(len(blob)) < sz {
			return nil, fmt.Errorf("truncated attribute")
		}
		attrs = append(attrs, append([]byte(nil), blob[:sz]...))
		blob = blob[sz:]
	}
	if len(blob) != 0 {
		return nil, fmt.Errorf("trailing attribute bytes")
	}
	return attrs, nil
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func takeUint32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, fmt.Errorf("truncated length")
	}
	v := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return v, b[4:], nil
}

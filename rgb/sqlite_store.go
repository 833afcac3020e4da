package rgb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SQLiteStore implements Store over a single palette table.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

// NewSQLiteStore creates a Store on the default palette table.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	return NewSQLiteStoreTable(db, DefaultTable)
}

// NewSQLiteStoreTable creates a Store on the named table, ensuring its schema.
func NewSQLiteStoreTable(db *sql.DB, table string) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("rgb: db is nil")
	}
	if err := EnsureSchema(db, table); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, table: table}, nil
}

// Table returns the palette table name.
func (s *SQLiteStore) Table() string { return s.table }

// AddEntries inserts entries in one transaction, tagging them with a fresh
// scan id. Colours already present are left untouched.
func (s *SQLiteStore) AddEntries(ctx context.Context, entries []Entry) (int, error) {
	return s.AddScan(ctx, uuid.NewString(), entries)
}

// AddScan is AddEntries with a caller-supplied scan id.
func (s *SQLiteStore) AddScan(ctx context.Context, scanID string, entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT OR IGNORE INTO %s(r, g, b, label, scan_id) VALUES(?, ?, ?, ?, ?)`, s.table))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	stored := 0
	for _, e := range entries {
		if e.Label == "" {
			return 0, fmt.Errorf("rgb: entry %s has an empty label", e.Color)
		}
		res, err := stmt.ExecContext(ctx, int(e.Color.R), int(e.Color.G), int(e.Color.B), e.Label, scanID)
		if err != nil {
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil {
			stored += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return stored, nil
}

// Palette loads every row of the table.
func (s *SQLiteStore) Palette(ctx context.Context) (map[Point]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT r, g, b, label FROM %s`, s.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Point]string)
	for rows.Next() {
		var r, g, b int
		var label string
		if err := rows.Scan(&r, &g, &b, &label); err != nil {
			return nil, err
		}
		p, err := pointFromColumns(r, g, b)
		if err != nil {
			return nil, err
		}
		out[p] = label
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Label resolves the label stored for p.
func (s *SQLiteStore) Label(ctx context.Context, p Point) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var label string
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT label FROM %s WHERE r = ? AND g = ? AND b = ?`, s.table),
		int(p.R), int(p.G), int(p.B)).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return label, err
}

// Remove deletes the row for p.
func (s *SQLiteStore) Remove(ctx context.Context, p Point) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE r = ? AND g = ? AND b = ?`, s.table),
		int(p.R), int(p.G), int(p.B))
	return err
}

func pointFromColumns(r, g, b int) (Point, error) {
	for _, v := range [...]int{r, g, b} {
		if v < 0 || v > 255 {
			return Point{}, fmt.Errorf("rgb: component %d out of range [0,255]", v)
		}
	}
	return Point{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

// Ensure SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)

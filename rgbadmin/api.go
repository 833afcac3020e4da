// Package rgbadmin exposes palette maintenance through a virtual table.
//
// Usage:
//
//	CREATE VIRTUAL TABLE rgb_admin USING rgb_admin(index=kd);
//	SELECT op FROM rgb_admin WHERE op MATCH 'palette'; -- rebuild cached index
//
// A successful rebuild returns a single row with op='reindexed:<count>'.
package rgbadmin

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/viant/sqlite-mosaic/index"
	"github.com/viant/sqlite-mosaic/index/factory"
	"github.com/viant/sqlite-mosaic/index/kd"
	"github.com/viant/sqlite-mosaic/nearest"
	"modernc.org/sqlite/vtab"
)

// ModuleName is the name used in CREATE VIRTUAL TABLE ... USING.
const ModuleName = "rgb_admin"

const idxRebuild = 1

const reindexTimeout = 30 * time.Second

// Module implements vtab.Module for rgb_admin.
type Module struct{}

// Table is an rgb_admin instance carrying the index options used when
// rebuilding.
type Table struct {
	opts factory.Options
}

// Cursor holds the single result row of an admin operation.
type Cursor struct {
	table *Table
	rows  []string
	pos   int
}

var registered = struct {
	mu   sync.Mutex
	done bool
}{}

// Register registers the rgb_admin module on db, which must already be bound
// through nearest.Register and must not have opened a connection yet.
// Rebuilds read the palette through the loader given to nearest.Register.
func Register(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("rgb_admin: db is nil")
	}
	if nearest.Bound() != db {
		return fmt.Errorf("rgb_admin: register %s on this database first", nearest.ModuleName)
	}
	registered.mu.Lock()
	defer registered.mu.Unlock()
	if registered.done {
		return nil
	}
	if db.Stats().OpenConnections > 0 {
		return fmt.Errorf("rgb_admin: register %s before the database opens a connection", ModuleName)
	}
	if err := vtab.RegisterModule(db, ModuleName, &Module{}); err != nil {
		return err
	}
	registered.done = true
	return nil
}

// Create initializes a table instance.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

// Connect attaches to an existing table instance.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

func (m *Module) connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("rgb_admin: need at least 3 args")
	}
	opts, err := parseOptions(args[3:])
	if err != nil {
		return nil, err
	}
	// Single TEXT column `op` reporting results.
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(op TEXT)", args[2])); err != nil {
		return nil, err
	}
	return &Table{opts: opts}, nil
}

// parseOptions reads index=... and search=...; bare words such as the
// conventional column name "op" are ignored.
func parseOptions(args []string) (factory.Options, error) {
	opts := factory.Options{Kind: index.KindAuto}
	for _, raw := range args {
		a := strings.Trim(strings.TrimSpace(raw), `'"`)
		key, val, ok := strings.Cut(a, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "index":
			kind, err := index.ParseKind(strings.TrimSpace(val))
			if err != nil {
				return opts, err
			}
			opts.Kind = kind
		case "search":
			mode, err := kd.ParseSearchMode(strings.TrimSpace(val))
			if err != nil {
				return opts, err
			}
			opts.Search = mode
		default:
			return opts, fmt.Errorf("rgb_admin: unknown option %q", key)
		}
	}
	return opts, nil
}

// BestIndex pushes down MATCH on the op column.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		if c.Column == 0 && c.Op == vtab.OpMATCH {
			c.ArgIndex = 0
			c.Omit = true
			info.IdxNum = idxRebuild
			break
		}
	}
	return nil
}

// Open allocates a new cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect cleans up per-connection resources.
func (t *Table) Disconnect() error { return nil }

// Destroy leaves palettes and caches untouched.
func (t *Table) Destroy() error { return nil }

// Filter runs the operation named by MATCH: the palette table to reindex.
func (c *Cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	c.rows = nil
	c.pos = 0
	if idxNum != idxRebuild || len(vals) == 0 || vals[0] == nil {
		return nil
	}
	palette, ok := vals[0].(string)
	if !ok {
		return fmt.Errorf("rgb_admin: MATCH expects palette table name as TEXT")
	}
	ctx, cancel := context.WithTimeout(context.Background(), reindexTimeout)
	defer cancel()
	n, err := nearest.Reindex(ctx, palette, c.table.opts)
	if err != nil {
		return err
	}
	c.rows = []string{fmt.Sprintf("reindexed:%d", n)}
	return nil
}

// Next advances the cursor.
func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

// Eof reports end-of-rows.
func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

// Column returns the op result of the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("rgb_admin: Column out of range")
	}
	if col == 0 {
		return c.rows[c.pos], nil
	}
	return nil, nil
}

// Rowid returns the current rowid.
func (c *Cursor) Rowid() (int64, error) { return int64(c.pos + 1), nil }

// Close releases resources.
func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }

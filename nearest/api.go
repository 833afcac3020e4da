package nearest

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/viant/sqlite-mosaic/index"
	"github.com/viant/sqlite-mosaic/index/factory"
	"github.com/viant/sqlite-mosaic/index/kd"
	"github.com/viant/sqlite-mosaic/rgb"
	sqlite "modernc.org/sqlite"
	"modernc.org/sqlite/vtab"
)

// ModuleName is the name used in CREATE VIRTUAL TABLE ... USING.
const ModuleName = "rgb_nearest"

const (
	colLabel = iota
	colColor
	colDist2
	colQuery
)

const (
	idxScan = iota
	idxMatch
)

// ErrNotWarmed is returned by the virtual table when the palette has no
// cached snapshot and no loader is configured to build one.
var ErrNotWarmed = errors.New("nearest: palette not warmed")

// loadTimeout bounds a snapshot build started from inside a query.
const loadTimeout = 10 * time.Second

// Module implements vtab.Module for rgb_nearest.
type Module struct{}

// Table represents a single rgb_nearest virtual table instance.
type Table struct {
	db        *sql.DB
	loader    *sql.DB
	tableName string
	palette   string
	opts      factory.Options
}

type row struct {
	rowid int64
	label string
	color rgb.Point
	dist2 *int
}

// Cursor scans results from an rgb_nearest table.
type Cursor struct {
	table *Table
	rows  []row
	pos   int
}

// Option configures the database binding made by Register.
type Option func(*binding)

// WithLoader sets a second handle on the same database file through which
// tables build snapshots missing from the cache, for example after a palette
// trigger invalidated them. Without a loader such queries fail with
// ErrNotWarmed until the palette is warmed again.
func WithLoader(loader *sql.DB) Option {
	return func(b *binding) { b.loader = loader }
}

type binding struct {
	db     *sql.DB
	loader *sql.DB
}

// The driver installs a module only on the first connection opened after it
// is registered, so the module serves exactly one database per process.
var bound = struct {
	mu sync.RWMutex
	binding
}{}

var registerFunctionsOnce sync.Once

// RegisterFunctions registers rgb_invalidate(table TEXT) -> INT with the
// driver. Call it before opening connections that write to palette tables
// carrying triggers from InstallTriggers.
func RegisterFunctions() {
	registerFunctionsOnce.Do(func() {
		_ = sqlite.RegisterDeterministicScalarFunction("rgb_invalidate", 1, invalidateFunc)
	})
}

// Register registers the rgb_nearest module and binds it to db. It must run
// before db opens its first connection and before any other database in the
// process opens a new one, as that connection is the one receiving the
// module. db is pinned to that single connection. Registering again with the
// same db only applies opts; a different db is rejected.
func Register(db *sql.DB, opts ...Option) error {
	if db == nil {
		return fmt.Errorf("nearest: db is nil")
	}
	bound.mu.Lock()
	defer bound.mu.Unlock()
	next := bound.binding
	if next.db == nil {
		next.db = db
	}
	for _, opt := range opts {
		opt(&next)
	}
	if next.loader == db {
		return fmt.Errorf("nearest: loader must be a separate handle from the registered database")
	}
	if bound.db != nil {
		if bound.db != db {
			return fmt.Errorf("nearest: %s is already bound to another database", ModuleName)
		}
		bound.binding = next
		return nil
	}
	if db.Stats().OpenConnections > 0 {
		return fmt.Errorf("nearest: register %s before the database opens a connection", ModuleName)
	}
	RegisterFunctions()
	if err := vtab.RegisterModule(db, ModuleName, &Module{}); err != nil {
		return err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	bound.binding = next
	return nil
}

// Bound returns the database the module is bound to, or nil.
func Bound() *sql.DB {
	bound.mu.RLock()
	defer bound.mu.RUnlock()
	return bound.db
}

func currentBinding() binding {
	bound.mu.RLock()
	defer bound.mu.RUnlock()
	return bound.binding
}

// Reindex drops the cached snapshots of palette and rebuilds the one served
// by the bound database, reading rows through the loader. It is safe to call
// from inside a query on the bound database.
func Reindex(ctx context.Context, palette string, opts factory.Options) (int, error) {
	b := currentBinding()
	if b.db == nil {
		return 0, fmt.Errorf("nearest: %s is not registered", ModuleName)
	}
	if b.loader == nil {
		return 0, fmt.Errorf("nearest: reindex %s: no loader configured", palette)
	}
	Invalidate(palette)
	snap, err := load(ctx, b.db, b.loader, palette, opts)
	if err != nil {
		return 0, err
	}
	return snap.Index.Len(), nil
}

// invalidateFunc implements SQL scalar rgb_invalidate(table TEXT) -> INT.
func invalidateFunc(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return int64(0), nil
	}
	table, err := asString(args[0])
	if err != nil {
		return int64(0), nil
	}
	return int64(Invalidate(table)), nil
}

// InstallTriggers makes every write to the palette table drop the cached
// snapshots built from it.
func InstallTriggers(db *sql.DB, palette string) error {
	if err := rgb.EnsureSchema(db, palette); err != nil {
		return err
	}
	base := sanitizeName("trg_rgb_" + palette)
	inv := `SELECT rgb_invalidate(` + quoteLiteral(palette) + `);`
	for _, trig := range []struct{ suffix, event string }{
		{"ins", "INSERT"},
		{"upd", "UPDATE"},
		{"del", "DELETE"},
	} {
		stmt := fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_%s AFTER %s ON %s BEGIN %s END;`, base, trig.suffix, trig.event, palette, inv)
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
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
		return nil, fmt.Errorf("nearest: expects at least 3 args, got %d", len(args))
	}
	t, err := parseTableArgs(args[3:])
	if err != nil {
		return nil, err
	}
	b := currentBinding()
	t.db, t.loader = b.db, b.loader
	t.tableName = args[2]
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(label TEXT, color TEXT, dist2 INTEGER, query HIDDEN)", args[2])); err != nil {
		return nil, err
	}
	return t, nil
}

// parseTableArgs reads USING rgb_nearest(palette, index=..., search=...).
func parseTableArgs(args []string) (*Table, error) {
	t := &Table{palette: rgb.DefaultTable, opts: factory.Options{Kind: index.KindAuto}}
	for i, raw := range args {
		a := strings.Trim(strings.TrimSpace(raw), `'"`)
		if a == "" {
			continue
		}
		parts := strings.SplitN(a, "=", 2)
		if len(parts) != 2 {
			if i != 0 {
				return nil, fmt.Errorf("nearest: unexpected argument %q", raw)
			}
			t.palette = a
			continue
		}
		key := strings.ToLower(strings.TrimSpace(parts[0]))
		val := strings.TrimSpace(parts[1])
		switch key {
		case "palette", "table":
			t.palette = val
		case "index":
			kind, err := index.ParseKind(val)
			if err != nil {
				return nil, err
			}
			t.opts.Kind = kind
		case "search":
			mode, err := kd.ParseSearchMode(val)
			if err != nil {
				return nil, err
			}
			t.opts.Search = mode
		default:
			return nil, fmt.Errorf("nearest: unknown option %q", key)
		}
	}
	if err := rgb.ValidateTable(t.palette); err != nil {
		return nil, err
	}
	return t, nil
}

// BestIndex pushes down MATCH on the hidden query column.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	info.IdxNum = idxScan
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		if c.Column == colQuery && c.Op == vtab.OpMATCH {
			c.ArgIndex = 0
			c.Omit = true
			info.IdxNum = idxMatch
			break
		}
	}
	return nil
}

// Open allocates a new cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect cleans up per-connection resources.
func (t *Table) Disconnect() error { return nil }

// Destroy leaves the palette table and cache untouched.
func (t *Table) Destroy() error { return nil }

// Filter computes the result set based on idxNum/vals.
func (c *Cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	_ = idxStr
	c.rows = nil
	c.pos = 0
	if c.table == nil || c.table.db == nil {
		return nil
	}
	snap, err := c.table.snapshot()
	if err != nil {
		return err
	}
	switch idxNum {
	case idxScan:
		for i, p := range rgb.Keys(snap.Labels) {
			c.rows = append(c.rows, row{rowid: int64(i + 1), label: snap.Labels[p], color: p})
		}
		return nil
	case idxMatch:
		if len(vals) == 0 || vals[0] == nil {
			return fmt.Errorf("nearest: MATCH argument is required")
		}
		q, err := decodeMatchArg(vals[0])
		if err != nil {
			return err
		}
		m, err := snap.Nearest(q)
		if err != nil {
			return err
		}
		d := m.Dist2
		c.rows = []row{{rowid: 1, label: m.Label, color: m.Color, dist2: &d}}
		return nil
	default:
		return fmt.Errorf("nearest: unsupported query plan %d", idxNum)
	}
}

// snapshot serves the cached palette. A miss is built through the loader,
// never through the table's own database whose only connection is busy
// running this query.
func (t *Table) snapshot() (*Snapshot, error) {
	if s := cached(t.db, t.palette, t.opts); s != nil {
		return s, nil
	}
	if t.loader == nil {
		return nil, fmt.Errorf("%w: %s (call nearest.Warm)", ErrNotWarmed, t.palette)
	}
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	return load(ctx, t.db, t.loader, t.palette, t.opts)
}

func decodeMatchArg(v vtab.Value) (rgb.Point, error) {
	switch val := v.(type) {
	case []byte:
		return rgb.DecodePoint(val)
	case string:
		return rgb.ParseColor(val)
	default:
		return rgb.Point{}, fmt.Errorf("nearest: expected MATCH arg as BLOB or string, got %T", v)
	}
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

// Column returns the value of a column in the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("nearest: Column out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	r := c.rows[c.pos]
	switch col {
	case colLabel:
		return r.label, nil
	case colColor:
		return r.color.String(), nil
	case colDist2:
		if r.dist2 == nil {
			return nil, nil
		}
		return int64(*r.dist2), nil
	case colQuery:
		return nil, nil
	}
	return nil, fmt.Errorf("nearest: unsupported column %d", col)
}

// Rowid returns the current rowid.
func (c *Cursor) Rowid() (int64, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return 0, fmt.Errorf("nearest: Rowid out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	return c.rows[c.pos].rowid, nil
}

// Close releases resources.
func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }

func asString(v driver.Value) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case nil:
		return "", fmt.Errorf("nearest: value is nil")
	default:
		return "", fmt.Errorf("nearest: unsupported value type %T", v)
	}
}

// sanitizeName converts a qualified name into a safe identifier for triggers.
func sanitizeName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
}

// quoteLiteral returns a SQL string literal with single quotes escaped.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

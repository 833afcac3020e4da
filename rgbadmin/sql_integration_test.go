package rgbadmin

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/sqlite-mosaic/engine"
	"github.com/viant/sqlite-mosaic/index"
	"github.com/viant/sqlite-mosaic/index/factory"
	"github.com/viant/sqlite-mosaic/nearest"
	"github.com/viant/sqlite-mosaic/rgb"
)

func TestAdminReindex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rgb_admin.sqlite")
	db, err := engine.Open(path)
	require.NoError(t, err)
	defer db.Close()
	loader, err := engine.Open(path)
	require.NoError(t, err)
	defer loader.Close()

	// Both modules must be registered before the first connection opens.
	require.NoError(t, nearest.Register(db, nearest.WithLoader(loader)))
	require.NoError(t, Register(db))
	require.NoError(t, db.Ping())
	require.NoError(t, Register(db))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := rgb.NewSQLiteStoreTable(db, "tiles")
	require.NoError(t, err)
	_, err = store.AddEntries(ctx, []rgb.Entry{
		{Color: rgb.New(0, 0, 0), Label: "a.png"},
		{Color: rgb.New(200, 10, 10), Label: "b.png"},
	})
	require.NoError(t, err)

	opts := factory.Options{Kind: index.KindKD}
	n, err := nearest.Warm(ctx, db, "tiles", opts)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.AddEntries(ctx, []rgb.Entry{{Color: rgb.New(10, 200, 10), Label: "c.png"}})
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `CREATE VIRTUAL TABLE rgb_admin USING rgb_admin(index=kd)`)
	require.NoError(t, err)

	var op string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT op FROM rgb_admin WHERE op MATCH 'tiles'`).Scan(&op))
	assert.Equal(t, "reindexed:3", op)

	m, err := nearest.Query(ctx, db, "tiles", rgb.New(0, 255, 0), opts)
	require.NoError(t, err)
	assert.Equal(t, "c.png", m.Label)

	err = db.QueryRowContext(ctx, `SELECT op FROM rgb_admin WHERE op MATCH 'no such palette'`).Scan(&op)
	assert.Error(t, err)
}

func TestRegister_RequiresBoundDatabase(t *testing.T) {
	other, err := engine.Open(filepath.Join(t.TempDir(), "other.sqlite"))
	require.NoError(t, err)
	defer other.Close()
	assert.Error(t, Register(other))
	assert.Error(t, Register(nil))
}

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"op", "index=brute"})
	require.NoError(t, err)
	assert.Equal(t, index.KindBrute, opts.Kind)

	_, err = parseOptions([]string{"search=sideways"})
	assert.Error(t, err)
}

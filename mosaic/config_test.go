package mosaic

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/sqlite-mosaic/index"
	"github.com/viant/sqlite-mosaic/index/factory"
	"github.com/viant/sqlite-mosaic/index/kd"
)

func TestConfigOrDefault(t *testing.T) {
	var nilCfg *Config
	def := nilCfg.OrDefault()
	assert.Equal(t, DefaultTileSize, def.TileSize)
	assert.Equal(t, runtime.GOMAXPROCS(0), def.Workers)
	assert.Equal(t, "auto", def.Index)
	assert.Equal(t, "recursive", def.Search)
	assert.Equal(t, "palette", def.Palette)
	assert.NotNil(t, def.Logger)

	cfg := (&Config{TileSize: 8, Index: "brute"}).OrDefault()
	assert.Equal(t, 8, cfg.TileSize)
	assert.Equal(t, "brute", cfg.Index)
	assert.Positive(t, cfg.Workers)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mosaic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tileSize: 16
workers: 2
index: kd
search: stack
palette: tiles
database: /tmp/palette.sqlite
thumbDir: thumbs
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.TileSize)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "tiles", cfg.Palette)
	assert.Equal(t, "/tmp/palette.sqlite", cfg.Database)
	assert.Equal(t, "thumbs", cfg.ThumbDir)

	opts, err := cfg.IndexOptions()
	require.NoError(t, err)
	assert.Equal(t, factory.Options{Kind: index.KindKD, Search: kd.SearchStack}, opts)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("index: cover\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("tileSize: [1\n"), 0o644))
	_, err = LoadConfig(broken)
	assert.Error(t, err)
}

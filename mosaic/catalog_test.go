package mosaic

import (
	"bytes"
	"context"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/sqlite-mosaic/rgb"
)

func TestCatalog(t *testing.T) {
	dir := t.TempDir()
	red := writePNG(t, dir, "a_red.png", solid(3, 3, color.RGBA{R: 255, A: 255}))
	writePNG(t, dir, "b_red.png", solid(5, 2, color.RGBA{R: 255, A: 255}))
	blue := writePNG(t, dir, "c_blue.png", solid(2, 2, color.RGBA{B: 200, A: 255}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	var logs bytes.Buffer
	cfg := &Config{Workers: 2, Logger: NewLogger(slog.NewTextHandler(&logs, nil))}
	palette, err := Catalog(context.Background(), dir, cfg)
	require.NoError(t, err)
	assert.Equal(t, map[rgb.Point]string{
		rgb.New(255, 0, 0): red,
		rgb.New(0, 0, 200): blue,
	}, palette)
	assert.Contains(t, logs.String(), "thumbnail skipped")
	assert.Contains(t, logs.String(), "skipped=1")

	entries := Entries(palette)
	require.Len(t, entries, 2)
	assert.Equal(t, rgb.Entry{Color: rgb.New(0, 0, 200), Label: blue}, entries[0])
}

func TestCatalog_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := Catalog(context.Background(), dir, nil)
	assert.ErrorIs(t, err, ErrNoThumbnails)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.png"), []byte("garbage"), 0o644))
	_, err = Catalog(context.Background(), dir, nil)
	assert.ErrorIs(t, err, ErrNoThumbnails)

	_, err = Catalog(context.Background(), filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	writePNG(t, dir, "y.png", solid(1, 1, color.White))
	_, err = Catalog(ctx, dir, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSolid(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestRun_CatalogNearestTile(t *testing.T) {
	root := t.TempDir()
	thumbs := filepath.Join(root, "thumbs")
	require.NoError(t, os.Mkdir(thumbs, 0o755))
	writeSolid(t, filepath.Join(thumbs, "black.png"), 4, 4, color.Black)
	writeSolid(t, filepath.Join(thumbs, "white.png"), 4, 4, color.White)
	dbPath := filepath.Join(root, "palette.sqlite")
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"catalog", "-db", dbPath, "-dir", thumbs}, &out))
	assert.Contains(t, out.String(), "stored 2 of 2 colours in palette")

	out.Reset()
	require.NoError(t, run(ctx, []string{"nearest", "-db", dbPath, "-index", "kd", "#101010", "250,250,250"}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "#101010\t#000000\t"+filepath.Join(thumbs, "black.png")+"\t768", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "#fafafa\t#ffffff\t"))

	target := filepath.Join(root, "target.png")
	writeSolid(t, target, 3, 2, color.Gray{Y: 20})
	result := filepath.Join(root, "mosaic.png")
	out.Reset()
	require.NoError(t, run(ctx, []string{"tile", "-db", dbPath, "-in", target, "-out", result, "-tile", "4"}, &out))
	assert.Contains(t, out.String(), "(12x8,")

	f, err := os.Open(result)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestRun_Config(t *testing.T) {
	root := t.TempDir()
	thumbs := filepath.Join(root, "thumbs")
	require.NoError(t, os.Mkdir(thumbs, 0o755))
	writeSolid(t, filepath.Join(thumbs, "red.png"), 2, 2, color.RGBA{R: 255, A: 255})
	configPath := filepath.Join(root, "mosaic.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"database: "+filepath.Join(root, "cfg.sqlite")+"\npalette: tiles\nthumbDir: "+thumbs+"\nsearch: stack\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"catalog", "-config", configPath}, &out))
	assert.Contains(t, out.String(), "in tiles")

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"nearest", "-config", configPath, "#fe0000"}, &out))
	assert.Contains(t, out.String(), "red.png\t1")
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	assert.Error(t, run(ctx, nil, &out))
	assert.Error(t, run(ctx, []string{"paint"}, &out))
	assert.Error(t, run(ctx, []string{"nearest", "#000000"}, &out))
	assert.Error(t, run(ctx, []string{"nearest", "-db", filepath.Join(t.TempDir(), "x.sqlite"), "-index", "cover", "#000000"}, &out))
	assert.Error(t, run(ctx, []string{"tile", "-db", filepath.Join(t.TempDir(), "x.sqlite")}, &out))
	assert.Error(t, run(ctx, []string{"catalog", "-db", filepath.Join(t.TempDir(), "x.sqlite")}, &out))
}

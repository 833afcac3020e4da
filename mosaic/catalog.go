package mosaic

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/viant/sqlite-mosaic/rgb"
)

// ErrNoThumbnails is returned when a directory yields no usable thumbnail.
var ErrNoThumbnails = errors.New("mosaic: no thumbnails")

type scanned struct {
	path  string
	color rgb.Point
	err   error
}

// Catalog maps the mean colour of every decodable image in dir to its path.
// Files are visited in name order and the first file wins when two share a
// mean colour. Files that cannot be decoded are logged and skipped.
func Catalog(ctx context.Context, dir string, cfg *Config) (map[rgb.Point]string, error) {
	cfg = cfg.OrDefault()
	entries, err := os.ReadDir(dir)
	if err != nil {
		cfg.Logger.LogCatalog(ctx, dir, 0, 0, 0, err)
		return nil, fmt.Errorf("mosaic: read %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}

	results := make([]scanned, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := meanOfFile(path)
			results[i] = scanned{path: path, color: c, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cfg.Logger.LogCatalog(ctx, dir, len(paths), 0, 0, err)
		return nil, err
	}

	palette := make(map[rgb.Point]string, len(results))
	skipped := 0
	for _, r := range results {
		if r.err != nil {
			skipped++
			cfg.Logger.LogSkip(ctx, r.path, r.err)
			continue
		}
		if _, ok := palette[r.color]; !ok {
			palette[r.color] = r.path
		}
	}
	if len(palette) == 0 {
		err := fmt.Errorf("%w in %s", ErrNoThumbnails, dir)
		cfg.Logger.LogCatalog(ctx, dir, len(paths), 0, skipped, err)
		return nil, err
	}
	cfg.Logger.LogCatalog(ctx, dir, len(paths), len(palette), skipped, nil)
	return palette, nil
}

// Entries lists the palette as store rows in colour order.
func Entries(palette map[rgb.Point]string) []rgb.Entry {
	out := make([]rgb.Entry, 0, len(palette))
	for _, p := range rgb.Keys(palette) {
		out = append(out, rgb.Entry{Color: p, Label: palette[p]})
	}
	return out
}

func meanOfFile(path string) (rgb.Point, error) {
	img, err := decodeFile(path)
	if err != nil {
		return rgb.Point{}, err
	}
	return MeanColor(img)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("mosaic: decode %s: %w", path, err)
	}
	return img, nil
}

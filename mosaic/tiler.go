package mosaic

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/viant/sqlite-mosaic/index"
	"github.com/viant/sqlite-mosaic/index/factory"
	"github.com/viant/sqlite-mosaic/rgb"
)

// Tiler assembles mosaics from a built index and the palette it was built
// from. It is safe for concurrent use.
type Tiler struct {
	index   index.Index
	palette map[rgb.Point]string
	cfg     *Config

	loads  singleflight.Group
	mu     sync.RWMutex
	thumbs map[string]image.Image
}

// NewTiler returns a Tiler querying idx and resolving results through
// palette.
func NewTiler(idx index.Index, palette map[rgb.Point]string, cfg *Config) (*Tiler, error) {
	if idx == nil || idx.Len() == 0 || len(palette) == 0 {
		return nil, fmt.Errorf("mosaic: tiler: %w", index.ErrEmpty)
	}
	return &Tiler{
		index:   idx,
		palette: palette,
		cfg:     cfg.OrDefault(),
		thumbs:  make(map[string]image.Image),
	}, nil
}

// NewTilerFromPalette builds the index configured by cfg over palette.
func NewTilerFromPalette(palette map[rgb.Point]string, cfg *Config) (*Tiler, error) {
	cfg = cfg.OrDefault()
	opts, err := cfg.IndexOptions()
	if err != nil {
		return nil, err
	}
	idx, err := factory.FromPalette(palette, opts)
	if err != nil {
		return nil, fmt.Errorf("mosaic: %w", err)
	}
	return NewTiler(idx, palette, cfg)
}

// Tile replaces every pixel of target with the thumbnail whose mean colour
// is nearest to it. The result is TileSize times larger in each dimension.
func (t *Tiler) Tile(ctx context.Context, target image.Image) (*image.RGBA, error) {
	started := time.Now()
	ts := t.cfg.TileSize
	bounds := target.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w*ts, h*ts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.cfg.Workers)
	for y := 0; y < h; y++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return t.tileRow(out, target, bounds.Min.Y+y, y)
		})
	}
	err := g.Wait()
	t.cfg.Logger.LogTile(ctx, out.Bounds().Dx(), out.Bounds().Dy(), w*h, time.Since(started), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// tileRow fills output row y; rows touch disjoint pixels of out.
func (t *Tiler) tileRow(out *image.RGBA, target image.Image, srcY, y int) error {
	ts := t.cfg.TileSize
	bounds := target.Bounds()
	for x := 0; x < bounds.Dx(); x++ {
		query := rgb.FromColor(target.At(bounds.Min.X+x, srcY))
		nearest, err := t.index.Nearest(query)
		if err != nil {
			return err
		}
		path, ok := t.palette[nearest]
		if !ok {
			return fmt.Errorf("mosaic: colour %s has no thumbnail: %w", nearest, rgb.ErrNotFound)
		}
		thumb, err := t.thumbnail(path)
		if err != nil {
			return err
		}
		cell := image.Rect(x*ts, y*ts, (x+1)*ts, (y+1)*ts)
		draw.Draw(out, cell, thumb, thumb.Bounds().Min, draw.Src)
	}
	return nil
}

// thumbnail returns the decoded thumbnail at path scaled to the tile size.
// Concurrent requests for the same path share one decode.
func (t *Tiler) thumbnail(path string) (image.Image, error) {
	t.mu.RLock()
	img, ok := t.thumbs[path]
	t.mu.RUnlock()
	if ok {
		return img, nil
	}
	v, err, _ := t.loads.Do(path, func() (interface{}, error) {
		src, err := decodeFile(path)
		if err != nil {
			return nil, err
		}
		scaled := scale(src, t.cfg.TileSize)
		t.mu.Lock()
		t.thumbs[path] = scaled
		t.mu.Unlock()
		return scaled, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

func scale(src image.Image, size int) image.Image {
	b := src.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

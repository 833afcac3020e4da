// Package factory selects and builds a nearest-colour index implementation
// for a palette.
package factory

import (
	"fmt"

	"github.com/viant/sqlite-mosaic/index"
	"github.com/viant/sqlite-mosaic/index/bruteforce"
	"github.com/viant/sqlite-mosaic/index/kd"
	"github.com/viant/sqlite-mosaic/rgb"
)

// Options selects the implementation.
type Options struct {
	Kind   index.Kind
	Search kd.SearchMode
}

// New returns an unbuilt index for a palette of n points.
func New(opts Options, n int) index.Index {
	switch opts.Kind.Resolve(n) {
	case index.KindBrute:
		return &bruteforce.Index{}
	default:
		return kd.New(kd.WithSearch(opts.Search))
	}
}

// FromPalette builds an index over the palette's colour keys.
func FromPalette[T any](palette map[rgb.Point]T, opts Options) (index.Index, error) {
	idx := New(opts, len(palette))
	if err := index.Build(idx, palette); err != nil {
		return nil, fmt.Errorf("factory: build %s index: %w", opts.Kind.Resolve(len(palette)), err)
	}
	return idx, nil
}

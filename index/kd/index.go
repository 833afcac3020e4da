package kd

import (
	"errors"
	"fmt"

	"github.com/viant/sqlite-mosaic/index"
	"github.com/viant/sqlite-mosaic/internal/kd/tree"
	"github.com/viant/sqlite-mosaic/rgb"
)

// Index implements index.Index with an implicit k-d tree.
type Index struct {
	mode SearchMode
	tree *tree.Tree
}

// New creates an unbuilt index.
func New(opts ...Option) *Index {
	i := &Index{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Build lays out points as a balanced k-d tree. It must complete before any
// query and must not run concurrently with queries on the same Index.
func (i *Index) Build(points []rgb.Point) error {
	t, err := tree.Build(points, i.mode)
	if err != nil {
		return wrap(err)
	}
	i.tree = t
	return nil
}

// Nearest returns the closest stored point.
func (i *Index) Nearest(query rgb.Point) (rgb.Point, error) {
	p, err := i.tree.Nearest(query)
	return p, wrap(err)
}

// Search returns the closest stored point with its squared distance and the
// number of nodes evaluated.
func (i *Index) Search(query rgb.Point) (tree.Result, error) {
	r, err := i.tree.Search(query)
	return r, wrap(err)
}

// Len returns the number of stored points.
func (i *Index) Len() int { return i.tree.Len() }

// Mode returns the configured search mode.
func (i *Index) Mode() SearchMode { return i.mode }

// Check verifies the tree's partition invariant.
func (i *Index) Check() error { return wrap(i.tree.Check()) }

func wrap(err error) error {
	if errors.Is(err, tree.ErrEmpty) {
		return fmt.Errorf("%w: %v", index.ErrEmpty, err)
	}
	return err
}

var _ index.Index = (*Index)(nil)

package tree

import (
	"errors"
	"fmt"

	"github.com/viant/sqlite-mosaic/rgb"
)

// ErrEmpty is returned when building from, or querying, an empty point set.
var ErrEmpty = errors.New("kd: empty point set")

// SearchMode selects how the far side of a split is explored.
type SearchMode int

const (
	// SearchRecursive descends the near side in a loop and recurses into the
	// far side only when pruning cannot exclude it.
	SearchRecursive SearchMode = iota
	// SearchStack runs the same traversal from an explicit work stack, so
	// degenerate trees cannot exhaust the goroutine stack.
	SearchStack
)

// String returns the mode name.
func (m SearchMode) String() string {
	switch m {
	case SearchRecursive:
		return "recursive"
	case SearchStack:
		return "stack"
	default:
		return fmt.Sprintf("SearchMode(%d)", int(m))
	}
}

// Tree is a built, read-only k-d tree. It is safe for concurrent queries.
type Tree struct {
	points []rgb.Point
	mode   SearchMode
}

// Build copies points into a new tree and lays them out. The input slice is
// not modified.
func Build(points []rgb.Point, mode SearchMode) (*Tree, error) {
	if len(points) == 0 {
		return nil, ErrEmpty
	}
	owned := make([]rgb.Point, len(points))
	copy(owned, points)
	build(owned, 0, len(owned)-1, 0)
	return &Tree{points: owned, mode: mode}, nil
}

// FromMap builds a tree from the keys of a colour-keyed mapping. Labels are
// ignored; callers resolve them through their own mapping.
func FromMap[T any](m map[rgb.Point]T, mode SearchMode) (*Tree, error) {
	return Build(rgb.Keys(m), mode)
}

// Len returns the number of stored points.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.points)
}

// Mode returns the search mode.
func (t *Tree) Mode() SearchMode { return t.mode }

// Points returns a copy of the stored points in tree order.
func (t *Tree) Points() []rgb.Point {
	if t == nil {
		return nil
	}
	out := make([]rgb.Point, len(t.points))
	copy(out, t.points)
	return out
}

// Check verifies the partition invariant of every sub-range the build
// processed and returns the first violation.
func (t *Tree) Check() error {
	if t == nil || len(t.points) == 0 {
		return ErrEmpty
	}
	return check(t.points, 0, len(t.points)-1, 0)
}

func check(pts []rgb.Point, start, end, level int) error {
	if start >= end {
		return nil
	}
	axis := level % rgb.Axes
	median := (start + end) / 2
	m := pts[median]
	for i := start; i < median; i++ {
		if rgb.AxisLess(m, pts[i], axis) {
			return fmt.Errorf("kd: %s at %d sorts after median %s at %d on axis %d", pts[i], i, m, median, axis)
		}
	}
	for i := median + 1; i <= end; i++ {
		if rgb.AxisLess(pts[i], m, axis) {
			return fmt.Errorf("kd: %s at %d sorts before median %s at %d on axis %d", pts[i], i, m, median, axis)
		}
	}
	if err := check(pts, start, median-1, level+1); err != nil {
		return err
	}
	return check(pts, median+1, end, level+1)
}

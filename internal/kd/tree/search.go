package tree

import "github.com/viant/sqlite-mosaic/rgb"

// Result describes the outcome of a nearest-neighbour query.
type Result struct {
	Point   rgb.Point
	Dist2   int
	Visited int
}

type candidate struct {
	point   rgb.Point
	dist    int
	visited int
}

// visit records node; ties go to the node visited last.
func (c *candidate) visit(node rgb.Point, dist int) {
	c.visited++
	if dist <= c.dist {
		c.dist = dist
		c.point = node
	}
}

// Nearest returns the stored point closest to query.
func (t *Tree) Nearest(query rgb.Point) (rgb.Point, error) {
	r, err := t.Search(query)
	return r.Point, err
}

// Search returns the nearest point with its squared distance and the number
// of nodes evaluated.
func (t *Tree) Search(query rgb.Point) (Result, error) {
	if t == nil || len(t.points) == 0 {
		return Result{}, ErrEmpty
	}
	// Seeded above MaxDist2 so the first node always becomes the candidate.
	best := candidate{dist: rgb.MaxDist2 + 1}
	if t.mode == SearchStack {
		best = t.descendStack(query, best)
	} else {
		best = t.descend(query, 0, len(t.points)-1, 0, best)
	}
	return Result{Point: best.point, Dist2: best.dist, Visited: best.visited}, nil
}

// descend walks the near side of each split in a loop and recurses into the
// far side only when the splitting plane is within the best distance.
func (t *Tree) descend(q rgb.Point, start, end, level int, best candidate) candidate {
	for start <= end {
		median := (start + end) / 2
		node := t.points[median]
		best.visit(node, rgb.Dist2(q, node))
		axis := level % rgb.Axes
		planar := rgb.DistToSplit(q, node, axis)
		if rgb.AxisLess(q, node, axis) {
			if best.dist >= planar {
				best = t.descend(q, median+1, end, level+1, best)
			}
			end = median - 1
		} else {
			if best.dist >= planar {
				best = t.descend(q, start, median-1, level+1, best)
			}
			start = median + 1
		}
		level++
	}
	return best
}

type frame struct {
	start, end, level int
}

// descendStack is descend with the far-side recursion replaced by a work
// stack. The far frame is pushed above the near continuation, which keeps the
// visiting order, and therefore tie-breaking, identical to descend.
func (t *Tree) descendStack(q rgb.Point, best candidate) candidate {
	stack := make([]frame, 1, 64)
	stack[0] = frame{start: 0, end: len(t.points) - 1}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for f.start <= f.end {
			median := (f.start + f.end) / 2
			node := t.points[median]
			best.visit(node, rgb.Dist2(q, node))
			axis := f.level % rgb.Axes
			left := frame{start: f.start, end: median - 1, level: f.level + 1}
			right := frame{start: median + 1, end: f.end, level: f.level + 1}
			near, far := right, left
			if rgb.AxisLess(q, node, axis) {
				near, far = left, right
			}
			if best.dist >= rgb.DistToSplit(q, node, axis) {
				stack = append(stack, near, far)
				break
			}
			f = near
		}
	}
	return best
}

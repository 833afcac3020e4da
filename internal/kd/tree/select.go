package tree

import "github.com/viant/sqlite-mosaic/rgb"

// partition splits pts[lo..hi] around pts[lo] on axis and returns the final
// index of the pivot. Elements strictly smaller than the pivot end up before
// it, the rest after it.
func partition(pts []rgb.Point, lo, hi, axis int) int {
	p := lo
	for i := lo + 1; i <= hi; i++ {
		if rgb.AxisLess(pts[i], pts[lo], axis) {
			p++
			pts[p], pts[i] = pts[i], pts[p]
		}
	}
	pts[lo], pts[p] = pts[p], pts[lo]
	return p
}

// selectRank rearranges pts[lo..hi] so that index k holds the element it
// would hold if the range were sorted by rgb.AxisLess on axis. The pivot is
// always the first element of the current range, so axis-sorted input
// degrades to quadratic time.
func selectRank(pts []rgb.Point, lo, hi, k, axis int) {
	for lo < hi {
		p := partition(pts, lo, hi, axis)
		switch {
		case k < p:
			hi = p - 1
		case k > p:
			lo = p + 1
		default:
			return
		}
	}
}

// build establishes the tree layout over pts[start..end].
func build(pts []rgb.Point, start, end, level int) {
	if start >= end {
		return
	}
	median := (start + end) / 2
	selectRank(pts, start, end, median, level%rgb.Axes)
	build(pts, start, median-1, level+1)
	build(pts, median+1, end, level+1)
}

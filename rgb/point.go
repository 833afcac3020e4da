package rgb

import (
	"fmt"
	"image/color"
	"sort"
)

// Axes is the number of coordinates of a Point.
const Axes = 3

// Point is an immutable RGB colour. Axis 0 is red, 1 green, 2 blue.
type Point struct {
	R, G, B uint8
}

// New constructs a point from its three components.
func New(r, g, b uint8) Point {
	return Point{R: r, G: g, B: b}
}

// Axis returns the coordinate for axis 0, 1 or 2.
func (p Point) Axis(axis int) int {
	switch axis {
	case 0:
		return int(p.R)
	case 1:
		return int(p.G)
	default:
		return int(p.B)
	}
}

// Compare orders points lexicographically across axes 0, 1, 2. It returns
// -1, 0 or +1.
func (p Point) Compare(o Point) int {
	for axis := 0; axis < Axes; axis++ {
		a, b := p.Axis(axis), o.Axis(axis)
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	}
	return 0
}

// Less reports whether p precedes o in the total order.
func (p Point) Less(o Point) bool {
	return p.Compare(o) < 0
}

// AxisLess orders a and b by the given axis, breaking ties with the total
// order. Both tree construction and search must use this comparator.
func AxisLess(a, b Point, axis int) bool {
	av, bv := a.Axis(axis), b.Axis(axis)
	if av == bv {
		return a.Less(b)
	}
	return av < bv
}

// String renders the point as #rrggbb.
func (p Point) String() string {
	return fmt.Sprintf("#%02x%02x%02x", p.R, p.G, p.B)
}

// RGBA returns the opaque image colour for the point.
func (p Point) RGBA() color.RGBA {
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff}
}

// FromColor converts any image colour to a Point, dropping alpha.
func FromColor(c color.Color) Point {
	n := color.RGBAModel.Convert(c).(color.RGBA)
	return Point{R: n.R, G: n.G, B: n.B}
}

// Keys extracts the points of a colour-keyed mapping in total order.
func Keys[T any](m map[Point]T) []Point {
	out := make([]Point, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

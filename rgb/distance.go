package rgb

// MaxDist2 is the largest squared distance between two points (3 * 255^2).
const MaxDist2 = Axes * 255 * 255

// Dist2 returns the squared Euclidean distance between a and b.
func Dist2(a, b Point) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// DistToSplit returns the squared distance from q to the splitting plane
// through node on the given axis. No point on the far side of the plane can
// be closer to q than this.
func DistToSplit(q, node Point, axis int) int {
	d := q.Axis(axis) - node.Axis(axis)
	return d * d
}

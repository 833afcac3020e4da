package bruteforce

import (
	"github.com/viant/sqlite-mosaic/index"
	"github.com/viant/sqlite-mosaic/rgb"
)

// Index is a linear-scan nearest-colour index.
type Index struct {
	points []rgb.Point
}

// Build copies the points.
func (i *Index) Build(points []rgb.Point) error {
	if len(points) == 0 {
		return index.ErrEmpty
	}
	i.points = append([]rgb.Point(nil), points...)
	return nil
}

// Nearest scans all points. Among equally distant points the last one in
// build order wins, mirroring the k-d search's tie rule.
func (i *Index) Nearest(query rgb.Point) (rgb.Point, error) {
	p, _, err := i.Search(query)
	return p, err
}

// Search returns the nearest point and its squared distance.
func (i *Index) Search(query rgb.Point) (rgb.Point, int, error) {
	if len(i.points) == 0 {
		return rgb.Point{}, 0, index.ErrEmpty
	}
	best := rgb.MaxDist2 + 1
	var nearest rgb.Point
	for _, p := range i.points {
		if d := rgb.Dist2(query, p); d <= best {
			best = d
			nearest = p
		}
	}
	return nearest, best, nil
}

// Len returns the number of stored points.
func (i *Index) Len() int { return len(i.points) }

var _ index.Index = (*Index)(nil)

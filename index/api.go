package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/viant/sqlite-mosaic/rgb"
)

// ErrEmpty is returned when building from an empty point set or querying an
// index that holds no points.
var ErrEmpty = errors.New("index: empty point set")

// Index defines an exact nearest-colour index. It is built once and then only
// queried; implementations are safe for concurrent queries after Build
// returns.
type Index interface {
	// Build constructs the index from a non-empty set of distinct points.
	Build(points []rgb.Point) error

	// Nearest returns the stored point with the smallest squared distance to
	// query.
	Nearest(query rgb.Point) (rgb.Point, error)

	// Len returns the number of stored points.
	Len() int
}

// Build builds idx from the keys of a colour-keyed mapping. Labels stay with
// the caller, who resolves query results through the same mapping.
func Build[T any](idx Index, palette map[rgb.Point]T) error {
	if len(palette) == 0 {
		return ErrEmpty
	}
	return idx.Build(rgb.Keys(palette))
}

// Kind names an index implementation.
type Kind string

const (
	KindAuto  Kind = "auto"
	KindKD    Kind = "kd"
	KindBrute Kind = "brute"
)

// AutoKDMinPoints is the palette size from which KindAuto selects the k-d
// tree over a linear scan.
const AutoKDMinPoints = 32

// ParseKind parses an index kind name; the empty string means KindAuto.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAuto, nil
	case KindAuto, KindKD, KindBrute:
		return k, nil
	case "bruteforce", "linear":
		return KindBrute, nil
	default:
		return "", fmt.Errorf("index: unknown kind %q", s)
	}
}

// Resolve maps KindAuto to a concrete kind for a palette of n points.
func (k Kind) Resolve(n int) Kind {
	switch k {
	case KindKD, KindBrute:
		return k
	}
	if n >= AutoKDMinPoints {
		return KindKD
	}
	return KindBrute
}

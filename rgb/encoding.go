package rgb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// EncodePoint encodes a point as a 3-byte R,G,B BLOB for storage in SQLite.
func EncodePoint(p Point) []byte {
	return []byte{p.R, p.G, p.B}
}

// DecodePoint decodes a BLOB produced by EncodePoint.
func DecodePoint(b []byte) (Point, error) {
	if len(b) != Axes {
		return Point{}, fmt.Errorf("rgb: invalid colour blob length %d (want %d)", len(b), Axes)
	}
	return Point{R: b[0], G: b[1], B: b[2]}, nil
}

// ParseHex parses #rrggbb or #rgb notation.
func ParseHex(s string) (Point, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Point{}, fmt.Errorf("rgb: invalid hex colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Point{R: r, G: g, B: b}, nil
}

// ParseColor accepts hex notation or a comma separated r,g,b triple.
func ParseColor(s string) (Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Point{}, fmt.Errorf("rgb: colour string is empty")
	}
	if !strings.Contains(s, ",") {
		return ParseHex(s)
	}
	parts := strings.Split(s, ",")
	if len(parts) != Axes {
		return Point{}, fmt.Errorf("rgb: expected %d components in %q, got %d", Axes, s, len(parts))
	}
	var v [Axes]uint8
	for i, part := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return Point{}, fmt.Errorf("rgb: invalid component %q: %w", part, err)
		}
		v[i] = uint8(n)
	}
	return Point{R: v[0], G: v[1], B: v[2]}, nil
}

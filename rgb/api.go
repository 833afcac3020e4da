package rgb

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a colour has no palette entry.
var ErrNotFound = errors.New("rgb: colour not in palette")

// Entry is one palette row: a colour key and the opaque label (for the
// mosaic, a thumbnail path) that the caller associates with it.
type Entry struct {
	Color Point
	Label string
}

// Store defines the durable colour -> label palette. The k-d index is built
// from the palette keys and never persisted itself.
type Store interface {
	// AddEntries inserts entries and returns how many were stored. A colour
	// that is already present keeps its existing label.
	AddEntries(ctx context.Context, entries []Entry) (int, error)

	// Palette loads the full colour -> label mapping.
	Palette(ctx context.Context) (map[Point]string, error)

	// Label resolves the label of a stored colour, or ErrNotFound.
	Label(ctx context.Context, p Point) (string, error)

	// Remove deletes the entry for the given colour.
	Remove(ctx context.Context, p Point) error
}

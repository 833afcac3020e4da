package kd

import (
	"fmt"
	"strings"

	"github.com/viant/sqlite-mosaic/internal/kd/tree"
)

// SearchMode selects how the far side of a split is explored.
type SearchMode = tree.SearchMode

const (
	SearchRecursive = tree.SearchRecursive
	SearchStack     = tree.SearchStack
)

// Option configures an Index.
type Option func(*Index)

// WithSearch selects the search traversal.
func WithSearch(mode SearchMode) Option {
	return func(i *Index) { i.mode = mode }
}

// ParseSearchMode parses "recursive" or "stack"; empty means recursive.
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recursive", "rec":
		return SearchRecursive, nil
	case "stack", "iterative":
		return SearchStack, nil
	default:
		return SearchRecursive, fmt.Errorf("kd: unknown search mode %q", s)
	}
}

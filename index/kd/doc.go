// Package kd provides the public k-d tree index over RGB points. It adapts the
// implicit tree in internal/kd/tree to the index.Index interface.
package kd

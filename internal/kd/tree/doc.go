// Package tree implements an implicit, pointer-free k-d tree over RGB points.
//
// The tree is a single slice whose order encodes the structure: for a
// sub-range [start, end] at depth level the root is the element at
// (start+end)/2, the left subtree is [start, median-1], the right subtree is
// [median+1, end] and the split axis is level%3. Construction places each
// median with an in-place quick-select; search is an exact branch-and-bound
// nearest-neighbour traversal.
package tree

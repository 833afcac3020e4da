// Package index defines a minimal abstraction for exact nearest-colour indexes
// that are built once from a palette's colour keys and then queried.
// Implementations in this module are a k-d tree (index/kd) and a brute-force
// baseline (index/bruteforce).
package index

// Package bruteforce provides a nearest-colour index that answers queries by
// scanning every stored point. It is the reference the k-d tree is tested
// against and the cheaper choice for very small palettes.
package bruteforce

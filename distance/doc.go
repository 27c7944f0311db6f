// Package distance provides vector distance and similarity calculations
// for coordinate vectors.
//
// All functions are pure and operate on float32 slices of equal length.
// Callers are responsible for dimension agreement; the package does not
// validate lengths on the hot path.
//
// # Usage
//
//	d := distance.L2(a, b)
//	h := distance.Harmony(v, distance.Anchor())
package distance

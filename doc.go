// Package ljpw provides an embedded similarity engine for the LJPW
// semantic coordinate system, which positions concepts in a
// 4-dimensional space spanned by the Love, Justice, Power and Wisdom
// axes.
//
// # Quick Start
//
//	space, _ := ljpw.Open("milestone.json")
//
//	// Nearest neighbors of a stored concept
//	results, _ := space.Nearest("love", 5)
//
//	// Nearest neighbors of an arbitrary point
//	results, _ := space.NearestNeighbors([]float32{0.9, 0.6, 0.5, 0.7}, 5)
//
//	// Harmony: alignment with the ideal anchor (1,1,1,1)
//	h, _ := space.Harmony("love")
//
//	// Seeded k-means over the whole dataset
//	clustering, _ := space.Cluster(4, func(o *ljpw.ClusterOptions) { o.Seed = 42 })
//
// A Space wraps an immutable dataset.Dataset: once loaded, nothing
// mutates, so all query methods are safe for concurrent use without
// locking.
//
// # Failure Semantics
//
// The only recoverable failure is malformed input at load time, which
// surfaces as a *dataset.ParseError naming the offending record. Query
// methods fail only on caller errors: an unknown concept name
// (ErrNotFound), a k outside [1, Len] (ErrInvalidK), or a query vector
// that is not 4-dimensional (*ErrDimensionMismatch).
package ljpw

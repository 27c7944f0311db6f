// Package dataset defines the LJPW concept dataset: an immutable,
// versioned collection of named points in the 4-dimensional
// Love/Justice/Power/Wisdom coordinate space.
//
// Datasets are produced by Load (or LoadFile) from the milestone JSON
// schema and are never mutated afterwards. Each expansion of the corpus
// is a new file and therefore a new Dataset value; callers keep
// whichever snapshot they loaded.
package dataset

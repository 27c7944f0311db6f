// Package kmeans implements seeded Lloyd's k-means clustering over
// flattened float32 vectors.
package kmeans

package distance

import "math"

// Dimension is the fixed dimensionality of the coordinate space:
// Love, Justice, Power, Wisdom.
const Dimension = 4

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
// Prefer this over L2 for ranking: it preserves order and skips the sqrt.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// L2 calculates the L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func L2(a, b []float32) float32 {
	return float32(math.Sqrt(float64(SquaredL2(a, b))))
}

// Anchor returns the ideal reference point (1,1,1,1) used for harmony
// calculations. A fresh slice is returned on every call so callers can
// mutate it freely.
func Anchor() []float32 {
	return []float32{1, 1, 1, 1}
}

// Harmony calculates the harmony score of v against the given anchor:
//
//	1 / (1 + L2(v, anchor))
//
// The result is in (0, 1] for finite inputs and equals 1.0 exactly when
// v == anchor.
func Harmony(v, anchor []float32) float32 {
	return 1 / (1 + L2(v, anchor))
}

package kmeans

import (
	"math"
	"math/rand"

	"github.com/hupe1980/ljpw/distance"
)

// Options controls a clustering run.
type Options struct {
	// Seed feeds the local RNG used for centroid initialization and
	// empty-cluster reseeding. The same seed over the same input yields
	// identical assignments.
	Seed int64

	// MaxIterations bounds the Lloyd's loop.
	MaxIterations int

	// Tolerance stops the loop early once the maximum squared centroid
	// movement of an update step falls below it.
	Tolerance float32
}

// DefaultOptions are the options used when a zero value is supplied.
var DefaultOptions = Options{
	Seed:          1,
	MaxIterations: 100,
	Tolerance:     1e-6,
}

// Result holds the outcome of a clustering run.
type Result struct {
	// Centroids are the flattened cluster centers (k * dim).
	Centroids []float32

	// Assignments maps each input vector index to its cluster index.
	Assignments []int

	// Iterations is the number of Lloyd's iterations executed.
	Iterations int

	// Converged reports whether the run stopped on the tolerance or
	// stable-assignment condition rather than the iteration cap.
	Converged bool
}

// Train clusters the flattened vectors (n * dim) into k clusters using
// Lloyd's algorithm. Centroids are initialized from a seeded random
// permutation of the input, so fixed options give deterministic output.
// The caller must guarantee 1 <= k <= n.
func Train(vectors []float32, dim, k int, opts Options) *Result {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions.MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultOptions.Tolerance
	}

	n := len(vectors) / dim
	rng := rand.New(rand.NewSource(opts.Seed))

	centroids := make([]float32, k*dim)

	// Initialize centroids from k distinct data points.
	perm := rng.Perm(n)
	for i := 0; i < k; i++ {
		copy(centroids[i*dim:(i+1)*dim], vectors[perm[i]*dim:(perm[i]+1)*dim])
	}

	assignments := make([]int, n)
	counts := make([]int, k)
	sums := make([]float32, k*dim)
	prev := make([]float32, dim)

	res := &Result{
		Centroids:   centroids,
		Assignments: assignments,
	}

	for iter := 0; iter < opts.MaxIterations; iter++ {
		res.Iterations = iter + 1
		changed := false

		// Assignment step
		for i := 0; i < n; i++ {
			vec := vectors[i*dim : (i+1)*dim]
			bestCluster := -1
			minDist := float32(math.MaxFloat32)

			for j := 0; j < k; j++ {
				center := centroids[j*dim : (j+1)*dim]
				d := distance.SquaredL2(vec, center)
				if d < minDist {
					minDist = d
					bestCluster = j
				}
			}

			if assignments[i] != bestCluster {
				assignments[i] = bestCluster
				changed = true
			}
		}

		if !changed && iter > 0 {
			res.Converged = true
			break
		}

		// Update step
		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}

		for i := 0; i < n; i++ {
			cluster := assignments[i]
			vec := vectors[i*dim : (i+1)*dim]
			for d := 0; d < dim; d++ {
				sums[cluster*dim+d] += vec[d]
			}
			counts[cluster]++
		}

		var maxMove float32
		for j := 0; j < k; j++ {
			center := centroids[j*dim : (j+1)*dim]
			copy(prev, center)

			if counts[j] > 0 {
				scale := 1.0 / float32(counts[j])
				for d := 0; d < dim; d++ {
					center[d] = sums[j*dim+d] * scale
				}
			} else {
				// Re-seed empty cluster with a random point
				// (simple heuristic to avoid empty clusters).
				idx := rng.Intn(n)
				copy(center, vectors[idx*dim:(idx+1)*dim])
			}

			if move := distance.SquaredL2(prev, center); move > maxMove {
				maxMove = move
			}
		}

		if maxMove < opts.Tolerance {
			res.Converged = true
			break
		}
	}

	return res
}

// Assign finds the closest centroid for a vector.
func Assign(vec []float32, centroids []float32, dim int) int {
	k := len(centroids) / dim

	bestCluster := -1
	minDist := float32(math.MaxFloat32)

	for j := 0; j < k; j++ {
		center := centroids[j*dim : (j+1)*dim]
		d := distance.SquaredL2(vec, center)
		if d < minDist {
			minDist = d
			bestCluster = j
		}
	}

	return bestCluster
}

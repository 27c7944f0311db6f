package ljpw

import (
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/ljpw/dataset"
	"github.com/hupe1980/ljpw/distance"
	"github.com/hupe1980/ljpw/internal/kmeans"
)

// parallelScanThreshold is the dataset size above which brute-force
// scans are chunked across goroutines (when parallelism > 1).
const parallelScanThreshold = 4096

// Space answers proximity queries over an immutable dataset.
//
// All methods are safe for concurrent use: the dataset never changes
// after construction and queries share no mutable state.
type Space struct {
	ds          *dataset.Dataset
	logger      *Logger
	metrics     MetricsCollector
	parallelism int
}

// New creates a Space over an already-loaded dataset.
func New(ds *dataset.Dataset, optFns ...Option) *Space {
	opts := options{
		logger:           NewLogger(nil),
		metricsCollector: NoopMetricsCollector{},
		parallelism:      runtime.GOMAXPROCS(0),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.logger == nil {
		opts.logger = NewLogger(nil)
	}
	if opts.metricsCollector == nil {
		opts.metricsCollector = NoopMetricsCollector{}
	}

	return &Space{
		ds:          ds,
		logger:      opts.logger,
		metrics:     opts.metricsCollector,
		parallelism: opts.parallelism,
	}
}

// Open loads a dataset file and wraps it in a Space.
func Open(path string, optFns ...Option) (*Space, error) {
	opts := options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	loadOpts := []func(*dataset.LoadOptions){}
	if opts.codec != nil {
		loadOpts = append(loadOpts, dataset.WithCodec(opts.codec))
	}
	if opts.logger != nil {
		loadOpts = append(loadOpts, dataset.WithLogger(opts.logger.Logger))
	}

	ds, err := dataset.LoadFile(path, loadOpts...)
	if err != nil {
		return nil, err
	}

	return New(ds, optFns...), nil
}

// Dataset returns the underlying dataset.
func (s *Space) Dataset() *dataset.Dataset { return s.ds }

// Len returns the number of concepts in the space.
func (s *Space) Len() int { return s.ds.Len() }

// Lookup returns the concept with the given name, or ErrNotFound.
func (s *Space) Lookup(name string) (dataset.Concept, error) {
	c, ok := s.ds.Get(name)
	if !ok {
		return dataset.Concept{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c, nil
}

// DistanceBetween returns the Euclidean distance between two named
// concepts.
func (s *Space) DistanceBetween(a, b string) (float32, error) {
	ca, err := s.Lookup(a)
	if err != nil {
		return 0, err
	}
	cb, err := s.Lookup(b)
	if err != nil {
		return 0, err
	}
	return distance.L2(ca.Vector(), cb.Vector()), nil
}

// HarmonyScore returns the harmony of an arbitrary point: its alignment
// with the ideal anchor (1,1,1,1), 1/(1+distance).
func (s *Space) HarmonyScore(v []float32) (float32, error) {
	if err := checkVector(v); err != nil {
		return 0, err
	}
	return distance.Harmony(v, distance.Anchor()), nil
}

// Harmony returns the harmony score of a named concept.
func (s *Space) Harmony(name string) (float32, error) {
	c, err := s.Lookup(name)
	if err != nil {
		return 0, err
	}
	return distance.Harmony(c.Vector(), distance.Anchor()), nil
}

// ConceptHarmony pairs a concept with its harmony score.
type ConceptHarmony struct {
	Concept dataset.Concept `json:"concept"`
	Score   float32         `json:"score"`
}

// Harmonies returns every concept ranked by harmony score, highest
// first. Ties keep dataset order.
func (s *Space) Harmonies() []ConceptHarmony {
	anchor := distance.Anchor()

	out := make([]ConceptHarmony, 0, s.ds.Len())
	for _, c := range s.ds.Concepts() {
		out = append(out, ConceptHarmony{Concept: c, Score: distance.Harmony(c.Vector(), anchor)})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	return out
}

// SearchResult represents a nearest-neighbor search result.
type SearchResult struct {
	Concept dataset.Concept `json:"concept"`

	// Distance is the Euclidean distance to the query point.
	Distance float32 `json:"distance"`
}

// SearchOptions contains configuration options for nearest-neighbor
// queries.
type SearchOptions struct {
	// Domains restricts candidates to the given domain labels.
	// Empty means all concepts.
	Domains []string

	// exclude is a concept ordinal removed from the candidate set,
	// used by Nearest to drop the query concept itself.
	exclude int
}

// NearestNeighbors returns the k concepts closest to the query point by
// Euclidean distance, ascending; ties are broken by dataset order.
//
// k must be in [1, Len]; out-of-range k fails with ErrInvalidK rather
// than clamping. When a domain filter narrows the candidate set below
// k, all matching concepts are returned.
func (s *Space) NearestNeighbors(query []float32, k int, optFns ...func(*SearchOptions)) ([]SearchResult, error) {
	opts := SearchOptions{exclude: -1}
	for _, fn := range optFns {
		fn(&opts)
	}

	start := time.Now()
	results, err := s.nearest(query, k, &opts)
	duration := time.Since(start)

	s.metrics.RecordSearch(k, duration, err)
	s.logger.LogSearch(k, len(results), duration, err)

	return results, err
}

// Nearest returns the k concepts closest to a stored concept, excluding
// the concept itself. k must be in [1, Len-1].
func (s *Space) Nearest(name string, k int, optFns ...func(*SearchOptions)) ([]SearchResult, error) {
	ord, ok := s.ds.Ordinal(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	opts := SearchOptions{exclude: ord}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.exclude = ord

	start := time.Now()
	results, err := s.nearestExcluding(s.ds.At(ord).Vector(), k, s.ds.Len()-1, &opts)
	duration := time.Since(start)

	s.metrics.RecordSearch(k, duration, err)
	s.logger.WithConcept(name).LogSearch(k, len(results), duration, err)

	return results, err
}

func (s *Space) nearest(query []float32, k int, opts *SearchOptions) ([]SearchResult, error) {
	return s.nearestExcluding(query, k, s.ds.Len(), opts)
}

func (s *Space) nearestExcluding(query []float32, k, size int, opts *SearchOptions) ([]SearchResult, error) {
	if err := checkVector(query); err != nil {
		return nil, err
	}
	if err := checkK(k, size); err != nil {
		return nil, err
	}

	dists := s.scan(query)

	candidates := s.candidates(opts)
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if dists[a] != dists[b] {
			return dists[a] < dists[b]
		}
		return a < b // dataset order breaks ties
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	results := make([]SearchResult, 0, k)
	for _, ord := range candidates[:k] {
		results = append(results, SearchResult{
			Concept:  s.ds.At(ord),
			Distance: dists[ord],
		})
	}

	return results, nil
}

// candidates resolves the search options to a list of concept ordinals
// in dataset order.
func (s *Space) candidates(opts *SearchOptions) []int {
	n := s.ds.Len()

	if len(opts.Domains) > 0 {
		rb := s.ds.DomainSet().Bitmap(opts.Domains...)
		out := make([]int, 0, rb.GetCardinality())
		it := rb.Iterator()
		for it.HasNext() {
			ord := int(it.Next())
			if ord != opts.exclude {
				out = append(out, ord)
			}
		}
		return out
	}

	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != opts.exclude {
			out = append(out, i)
		}
	}
	return out
}

// scan computes the Euclidean distance from query to every concept,
// chunking across goroutines for large datasets.
func (s *Space) scan(query []float32) []float32 {
	n := s.ds.Len()
	flat := s.ds.Vectors()
	dists := make([]float32, n)

	if n < parallelScanThreshold || s.parallelism <= 1 {
		for i := 0; i < n; i++ {
			dists[i] = distance.L2(query, flat[i*dataset.Dimension:(i+1)*dataset.Dimension])
		}
		return dists
	}

	chunk := (n + s.parallelism - 1) / s.parallelism

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				dists[i] = distance.L2(query, flat[i*dataset.Dimension:(i+1)*dataset.Dimension])
			}
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	return dists
}

// ClusterOptions contains configuration options for k-means clustering.
type ClusterOptions struct {
	// Seed makes runs reproducible; the same seed, k and dataset yield
	// identical assignments. Defaults to 1.
	Seed int64

	// MaxIterations bounds the Lloyd's loop. Defaults to 100.
	MaxIterations int

	// Tolerance stops iteration once centroids move less than this
	// (squared). Defaults to 1e-6.
	Tolerance float32
}

// ClusterSummary describes one cluster of a clustering run.
type ClusterSummary struct {
	Index    int                        `json:"index"`
	Size     int                        `json:"size"`
	Centroid [dataset.Dimension]float32 `json:"centroid"`

	// Exemplar is the member concept nearest the centroid.
	Exemplar string `json:"exemplar"`
}

// Clustering is the outcome of a k-means run.
type Clustering struct {
	K int `json:"k"`

	// Assignments maps each concept ordinal (dataset order) to a
	// cluster index in [0, K).
	Assignments []int `json:"assignments"`

	Iterations int              `json:"iterations"`
	Converged  bool             `json:"converged"`
	Clusters   []ClusterSummary `json:"clusters"`
}

// Cluster partitions the dataset into k clusters using seeded Lloyd's
// k-means. k must be in [1, Len]; out-of-range k fails with ErrInvalidK.
func (s *Space) Cluster(k int, optFns ...func(*ClusterOptions)) (*Clustering, error) {
	opts := ClusterOptions{
		Seed:          kmeans.DefaultOptions.Seed,
		MaxIterations: kmeans.DefaultOptions.MaxIterations,
		Tolerance:     kmeans.DefaultOptions.Tolerance,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	start := time.Now()
	clustering, err := s.cluster(k, &opts)
	duration := time.Since(start)

	iterations := 0
	if clustering != nil {
		iterations = clustering.Iterations
	}
	s.metrics.RecordCluster(k, iterations, duration, err)
	if err != nil {
		s.logger.LogCluster(k, 0, false, duration, err)
	} else {
		s.logger.LogCluster(k, clustering.Iterations, clustering.Converged, duration, nil)
	}

	return clustering, err
}

func (s *Space) cluster(k int, opts *ClusterOptions) (*Clustering, error) {
	if err := checkK(k, s.ds.Len()); err != nil {
		return nil, err
	}

	res := kmeans.Train(s.ds.Vectors(), dataset.Dimension, k, kmeans.Options{
		Seed:          opts.Seed,
		MaxIterations: opts.MaxIterations,
		Tolerance:     opts.Tolerance,
	})

	clustering := &Clustering{
		K:           k,
		Assignments: res.Assignments,
		Iterations:  res.Iterations,
		Converged:   res.Converged,
		Clusters:    make([]ClusterSummary, k),
	}

	exemplarDist := make([]float32, k)
	for j := 0; j < k; j++ {
		clustering.Clusters[j].Index = j
		copy(clustering.Clusters[j].Centroid[:], res.Centroids[j*dataset.Dimension:(j+1)*dataset.Dimension])
		exemplarDist[j] = -1
	}

	for ord, j := range res.Assignments {
		summary := &clustering.Clusters[j]
		summary.Size++

		d := distance.SquaredL2(s.ds.At(ord).Vector(), summary.Centroid[:])
		if exemplarDist[j] < 0 || d < exemplarDist[j] {
			exemplarDist[j] = d
			summary.Exemplar = s.ds.At(ord).Name
		}
	}

	return clustering, nil
}

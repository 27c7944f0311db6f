package ljpw

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ljpw/dataset"
)

func testSpace(t *testing.T) *Space {
	t.Helper()

	ds, err := dataset.New(dataset.Metadata{Version: "test"}, []dataset.Concept{
		{Name: "love", Coordinates: [4]float32{0.95, 0.60, 0.50, 0.70}, Definition: "deep affection", Domain: "emotions"},
		{Name: "hate", Coordinates: [4]float32{0.15, 0.20, 0.82, 0.35}, Definition: "intense hostility", Domain: "emotions"},
		{Name: "justice", Coordinates: [4]float32{0.60, 0.95, 0.55, 0.75}, Definition: "fairness", Domain: "virtues"},
		{Name: "wisdom", Coordinates: [4]float32{0.65, 0.70, 0.45, 0.95}, Definition: "sound judgment", Domain: "virtues"},
		{Name: "power", Coordinates: [4]float32{0.40, 0.45, 0.95, 0.50}, Definition: "capacity to act", Domain: "virtues"},
	})
	require.NoError(t, err)

	return New(ds, WithLogger(NoopLogger()))
}

func TestLookup(t *testing.T) {
	s := testSpace(t)

	c, err := s.Lookup("love")
	require.NoError(t, err)
	assert.Equal(t, "emotions", c.Domain)

	_, err = s.Lookup("entropy")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "entropy")
}

func TestDistanceBetween(t *testing.T) {
	s := testSpace(t)

	d, err := s.DistanceBetween("love", "hate")
	require.NoError(t, err)
	// sqrt(0.8^2 + 0.4^2 + 0.32^2 + 0.35^2)
	assert.InDelta(t, 1.01237, d, 1e-4)

	// Symmetry
	rev, err := s.DistanceBetween("hate", "love")
	require.NoError(t, err)
	assert.Equal(t, d, rev)

	// Identity
	self, err := s.DistanceBetween("love", "love")
	require.NoError(t, err)
	assert.Equal(t, float32(0), self)

	_, err = s.DistanceBetween("love", "entropy")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHarmony(t *testing.T) {
	s := testSpace(t)

	t.Run("AnchorExactlyOne", func(t *testing.T) {
		h, err := s.HarmonyScore([]float32{1, 1, 1, 1})
		require.NoError(t, err)
		assert.Equal(t, float32(1.0), h)
	})

	t.Run("Origin", func(t *testing.T) {
		h, err := s.HarmonyScore([]float32{0, 0, 0, 0})
		require.NoError(t, err)
		assert.InDelta(t, 1.0/3.0, h, 1e-6)
	})

	t.Run("NamedConcept", func(t *testing.T) {
		h, err := s.Harmony("love")
		require.NoError(t, err)
		assert.Greater(t, h, float32(0))
		assert.Less(t, h, float32(1))

		_, err = s.Harmony("entropy")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := s.HarmonyScore([]float32{1, 1})
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 4, dm.Expected)
		assert.Equal(t, 2, dm.Actual)
	})
}

func TestHarmonies(t *testing.T) {
	s := testSpace(t)

	ranked := s.Harmonies()
	require.Len(t, ranked, 5)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	// Justice (0.60,0.95,0.55,0.75) is the closest to the anchor here.
	assert.Equal(t, "justice", ranked[0].Concept.Name)
	assert.Equal(t, "hate", ranked[len(ranked)-1].Concept.Name)
}

func TestNearestNeighbors(t *testing.T) {
	s := testSpace(t)

	t.Run("TopOne", func(t *testing.T) {
		results, err := s.NearestNeighbors([]float32{0.9, 0.6, 0.5, 0.7}, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "love", results[0].Concept.Name)
		assert.InDelta(t, 0.05, results[0].Distance, 1e-4)
	})

	t.Run("SelfInclusion", func(t *testing.T) {
		love, _ := s.Lookup("love")
		results, err := s.NearestNeighbors(love.Vector(), 3)
		require.NoError(t, err)
		assert.Equal(t, "love", results[0].Concept.Name)
		assert.Equal(t, float32(0), results[0].Distance)
	})

	t.Run("Ordered", func(t *testing.T) {
		results, err := s.NearestNeighbors([]float32{0.5, 0.5, 0.5, 0.5}, 5)
		require.NoError(t, err)
		require.Len(t, results, 5)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
		}
	})

	t.Run("InvalidK", func(t *testing.T) {
		for _, k := range []int{0, -1, 6} {
			_, err := s.NearestNeighbors([]float32{0.5, 0.5, 0.5, 0.5}, k)
			assert.ErrorIs(t, err, ErrInvalidK, "k=%d", k)
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := s.NearestNeighbors([]float32{0.5, 0.5, 0.5}, 1)
		var dm *ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)
	})

	t.Run("DomainFilter", func(t *testing.T) {
		results, err := s.NearestNeighbors([]float32{0.9, 0.6, 0.5, 0.7}, 2, func(o *SearchOptions) {
			o.Domains = []string{"virtues"}
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Equal(t, "virtues", r.Concept.Domain)
		}
	})

	t.Run("FilterNarrowerThanK", func(t *testing.T) {
		results, err := s.NearestNeighbors([]float32{0.5, 0.5, 0.5, 0.5}, 5, func(o *SearchOptions) {
			o.Domains = []string{"emotions"}
		})
		require.NoError(t, err)
		assert.Len(t, results, 2) // all matches, not an error
	})
}

func TestNearestNeighbors_TieBreak(t *testing.T) {
	// Two concepts at the same point: dataset order decides.
	ds, err := dataset.New(dataset.Metadata{}, []dataset.Concept{
		{Name: "first", Coordinates: [4]float32{0.4, 0.4, 0.4, 0.4}, Definition: "a", Domain: "d"},
		{Name: "second", Coordinates: [4]float32{0.4, 0.4, 0.4, 0.4}, Definition: "b", Domain: "d"},
		{Name: "far", Coordinates: [4]float32{0.9, 0.9, 0.9, 0.9}, Definition: "c", Domain: "d"},
	})
	require.NoError(t, err)
	s := New(ds, WithLogger(NoopLogger()))

	results, err := s.NearestNeighbors([]float32{0.4, 0.4, 0.4, 0.4}, 2)
	require.NoError(t, err)
	assert.Equal(t, "first", results[0].Concept.Name)
	assert.Equal(t, "second", results[1].Concept.Name)
	assert.Equal(t, results[0].Distance, results[1].Distance)
}

func TestNearest(t *testing.T) {
	s := testSpace(t)

	results, err := s.Nearest("love", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "love", r.Concept.Name)
	}

	t.Run("UnknownName", func(t *testing.T) {
		_, err := s.Nearest("entropy", 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("InvalidK", func(t *testing.T) {
		// Only 4 neighbors exist once the query concept is excluded.
		_, err := s.Nearest("love", 5)
		assert.ErrorIs(t, err, ErrInvalidK)
	})
}

func TestCluster(t *testing.T) {
	s := testSpace(t)

	clustering, err := s.Cluster(2, func(o *ClusterOptions) { o.Seed = 42 })
	require.NoError(t, err)
	require.Len(t, clustering.Assignments, 5)
	require.Len(t, clustering.Clusters, 2)
	assert.True(t, clustering.Converged)

	total := 0
	for _, c := range clustering.Clusters {
		total += c.Size
		if c.Size > 0 {
			assert.NotEmpty(t, c.Exemplar)
		}
	}
	assert.Equal(t, 5, total)

	t.Run("Deterministic", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			again, err := s.Cluster(2, func(o *ClusterOptions) { o.Seed = 42 })
			require.NoError(t, err)
			assert.Equal(t, clustering.Assignments, again.Assignments)
			assert.Equal(t, clustering.Clusters, again.Clusters)
		}
	})

	t.Run("InvalidK", func(t *testing.T) {
		for _, k := range []int{0, -3, 6} {
			_, err := s.Cluster(k)
			assert.ErrorIs(t, err, ErrInvalidK, "k=%d", k)
		}
	})

	t.Run("SingleCluster", func(t *testing.T) {
		clustering, err := s.Cluster(1)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 0, 0, 0, 0}, clustering.Assignments)
		assert.Equal(t, 5, clustering.Clusters[0].Size)
	})
}

func TestParallelScanMatchesSerial(t *testing.T) {
	// Enough concepts to cross the parallel threshold.
	n := parallelScanThreshold + 100
	concepts := make([]dataset.Concept, 0, n)
	x := float32(0.37)
	for i := 0; i < n; i++ {
		var coords [4]float32
		for d := range coords {
			x = x*3.9*(1-x) + 0.0001
			coords[d] = x
		}
		concepts = append(concepts, dataset.Concept{
			Name:        fmt.Sprintf("concept-%05d", i),
			Coordinates: coords,
			Definition:  "generated",
			Domain:      fmt.Sprintf("batch-%d", i%7),
		})
	}
	ds, err := dataset.New(dataset.Metadata{Version: "synthetic"}, concepts)
	require.NoError(t, err)

	serial := New(ds, WithLogger(NoopLogger()), WithParallelism(1))
	parallel := New(ds, WithLogger(NoopLogger()), WithParallelism(4))

	query := []float32{0.5, 0.5, 0.5, 0.5}
	want, err := serial.NearestNeighbors(query, 25)
	require.NoError(t, err)
	got, err := parallel.NearestNeighbors(query, 25)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestMetricsCollection(t *testing.T) {
	collector := &BasicMetricsCollector{}
	ds := testSpace(t).Dataset()
	s := New(ds, WithLogger(NoopLogger()), WithMetricsCollector(collector))

	_, _ = s.NearestNeighbors([]float32{0.5, 0.5, 0.5, 0.5}, 2)
	_, _ = s.NearestNeighbors([]float32{0.5, 0.5, 0.5, 0.5}, 0) // error
	_, _ = s.Cluster(2)

	stats := collector.GetStats()
	assert.Equal(t, int64(2), stats.SearchCount)
	assert.Equal(t, int64(1), stats.SearchErrors)
	assert.Equal(t, int64(1), stats.ClusterCount)
	assert.Equal(t, int64(0), stats.ClusterErrors)
	assert.Greater(t, stats.ClusterIterations, int64(0))
}

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConcepts() []Concept {
	return []Concept{
		{Name: "love", Coordinates: [4]float32{0.95, 0.60, 0.50, 0.70}, Definition: "deep affection", Domain: "emotions"},
		{Name: "hate", Coordinates: [4]float32{0.15, 0.20, 0.82, 0.35}, Definition: "intense hostility", Domain: "emotions"},
		{Name: "justice", Coordinates: [4]float32{0.60, 0.95, 0.55, 0.75}, Definition: "fairness", Domain: "virtues"},
		{Name: "wisdom", Coordinates: [4]float32{0.65, 0.70, 0.45, 0.95}, Definition: "sound judgment", Domain: "virtues"},
	}
}

func TestNew(t *testing.T) {
	ds, err := New(Metadata{Version: "3.0"}, testConcepts())
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, "3.0", ds.Meta().Version)
	// Totals are recomputed, whatever the caller claims.
	assert.Equal(t, 4, ds.Meta().TotalConcepts)
	assert.Equal(t, 2, ds.Meta().TotalDomains)

	c, ok := ds.Get("love")
	require.True(t, ok)
	assert.Equal(t, "emotions", c.Domain)
	assert.Equal(t, []float32{0.95, 0.60, 0.50, 0.70}, c.Vector())

	_, ok = ds.Get("nonexistent")
	assert.False(t, ok)

	ord, ok := ds.Ordinal("hate")
	require.True(t, ok)
	assert.Equal(t, 1, ord)
	assert.Equal(t, "hate", ds.At(1).Name)
}

func TestNew_DuplicateName(t *testing.T) {
	concepts := testConcepts()
	concepts = append(concepts, Concept{Name: "love", Definition: "again", Domain: "emotions"})

	_, err := New(Metadata{}, concepts)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "love", pe.Key)
}

func TestVectors(t *testing.T) {
	ds, err := New(Metadata{}, testConcepts())
	require.NoError(t, err)

	flat := ds.Vectors()
	require.Len(t, flat, 4*Dimension)
	assert.Equal(t, float32(0.95), flat[0])
	assert.Equal(t, float32(0.15), flat[4])
}

func TestConceptsIteration(t *testing.T) {
	ds, err := New(Metadata{}, testConcepts())
	require.NoError(t, err)

	var names []string
	for _, c := range ds.Concepts() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"love", "hate", "justice", "wisdom"}, names)
}

func TestDomainSet(t *testing.T) {
	ds, err := New(Metadata{}, testConcepts())
	require.NoError(t, err)

	set := ds.DomainSet()
	assert.Equal(t, []string{"emotions", "virtues"}, set.Domains())
	assert.Equal(t, uint64(2), set.Count("emotions"))
	assert.Equal(t, uint64(0), set.Count("unknown"))

	assert.True(t, set.Contains("emotions", 0))
	assert.False(t, set.Contains("virtues", 0))

	rb := set.Bitmap("virtues")
	assert.Equal(t, uint64(2), rb.GetCardinality())
	assert.True(t, rb.Contains(2))
	assert.True(t, rb.Contains(3))

	both := set.Bitmap("emotions", "virtues")
	assert.Equal(t, uint64(4), both.GetCardinality())

	var ords []uint32
	for ord := range set.Iterate("emotions") {
		ords = append(ords, ord)
	}
	assert.Equal(t, []uint32{0, 1}, ords)
}

func TestStats(t *testing.T) {
	ds, err := New(Metadata{}, testConcepts())
	require.NoError(t, err)

	stats := ds.Stats()
	require.Len(t, stats, 2)

	assert.Equal(t, "emotions", stats[0].Domain)
	assert.Equal(t, 2, stats[0].Count)
	assert.InDelta(t, 0.55, stats[0].Mean[0], 1e-6) // (0.95+0.15)/2
	assert.InDelta(t, 0.40, stats[0].Mean[1], 1e-6)

	assert.Equal(t, "virtues", stats[1].Domain)
	assert.Equal(t, 2, stats[1].Count)
	assert.InDelta(t, 0.85, stats[1].Mean[3], 1e-6) // (0.75+0.95)/2
}

func TestAxisString(t *testing.T) {
	assert.Equal(t, "Love", AxisLove.String())
	assert.Equal(t, "Justice", AxisJustice.String())
	assert.Equal(t, "Power", AxisPower.String())
	assert.Equal(t, "Wisdom", AxisWisdom.String())
	assert.Equal(t, "Unknown(9)", Axis(9).String())
	assert.Len(t, Axes(), Dimension)
}

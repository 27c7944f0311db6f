package dataset

import (
	"fmt"
	"iter"
	"sort"

	"github.com/hupe1980/ljpw/distance"
)

// Dimension is the fixed dimensionality of concept coordinates.
const Dimension = distance.Dimension

// Axis identifies one of the four coordinate axes.
type Axis int

const (
	AxisLove Axis = iota
	AxisJustice
	AxisPower
	AxisWisdom
)

func (a Axis) String() string {
	switch a {
	case AxisLove:
		return "Love"
	case AxisJustice:
		return "Justice"
	case AxisPower:
		return "Power"
	case AxisWisdom:
		return "Wisdom"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// Axes lists all axes in coordinate order.
func Axes() []Axis {
	return []Axis{AxisLove, AxisJustice, AxisPower, AxisWisdom}
}

// Concept is a named point in the coordinate space.
type Concept struct {
	// Name uniquely identifies the concept within its dataset.
	Name string `json:"name"`

	// Coordinates position the concept on the Love, Justice, Power and
	// Wisdom axes. Values are nominally in [0,1]; the range is advisory
	// and several corpus files step outside it.
	Coordinates [Dimension]float32 `json:"coordinates"`

	// Definition is a free-text description. Not used computationally.
	Definition string `json:"definition"`

	// Domain is the categorical label the concept belongs to.
	Domain string `json:"domain"`
}

// Vector returns the coordinates as a slice for use with the distance
// package. The returned slice must not be mutated.
func (c Concept) Vector() []float32 {
	return c.Coordinates[:]
}

// Metadata summarizes a dataset.
type Metadata struct {
	Version       string `json:"version"`
	TotalConcepts int    `json:"total_concepts"`
	TotalDomains  int    `json:"total_domains"`
}

// DomainStat reports per-domain aggregates.
type DomainStat struct {
	Domain string             `json:"domain"`
	Count  int                `json:"count"`
	Mean   [Dimension]float32 `json:"mean"`
}

// Dataset is an immutable collection of concepts plus metadata.
//
// Iteration order is the dataset order: the order concepts were handed
// to New, which for loaded files is sorted by (domain key, concept key).
// Ties in similarity queries are broken by this order.
type Dataset struct {
	meta     Metadata
	concepts []Concept
	flat     []float32 // flattened coordinates, len(concepts)*Dimension
	byName   map[string]int
	domains  *DomainSet

	// displayNames maps a domain label to the human-readable name the
	// source file carried for it, when one was present.
	displayNames map[string]string
}

// New builds a dataset from concepts in the given order. The version
// and display names come from meta; concept and domain totals are
// recomputed from the input. Duplicate concept names are rejected.
func New(meta Metadata, concepts []Concept) (*Dataset, error) {
	ds := &Dataset{
		meta:         meta,
		concepts:     concepts,
		flat:         make([]float32, 0, len(concepts)*Dimension),
		byName:       make(map[string]int, len(concepts)),
		domains:      newDomainSet(),
		displayNames: make(map[string]string),
	}

	for i, c := range concepts {
		if _, ok := ds.byName[c.Name]; ok {
			return nil, &ParseError{Key: c.Name, Reason: "duplicate concept name"}
		}
		ds.byName[c.Name] = i
		ds.domains.add(c.Domain, uint32(i))
		ds.flat = append(ds.flat, c.Coordinates[:]...)
	}

	ds.meta.TotalConcepts = len(concepts)
	ds.meta.TotalDomains = len(ds.domains.order)

	return ds, nil
}

// Meta returns the dataset metadata.
func (ds *Dataset) Meta() Metadata { return ds.meta }

// Len returns the number of concepts.
func (ds *Dataset) Len() int { return len(ds.concepts) }

// At returns the concept at the given ordinal (dataset order).
func (ds *Dataset) At(i int) Concept { return ds.concepts[i] }

// Get returns the concept with the given name.
func (ds *Dataset) Get(name string) (Concept, bool) {
	i, ok := ds.byName[name]
	if !ok {
		return Concept{}, false
	}
	return ds.concepts[i], true
}

// Ordinal returns the dataset-order position of the named concept.
func (ds *Dataset) Ordinal(name string) (int, bool) {
	i, ok := ds.byName[name]
	return i, ok
}

// Concepts iterates concepts in dataset order together with their ordinals.
func (ds *Dataset) Concepts() iter.Seq2[int, Concept] {
	return func(yield func(int, Concept) bool) {
		for i, c := range ds.concepts {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Vectors returns the flattened coordinate matrix (Len()*Dimension).
// The returned slice must not be mutated.
func (ds *Dataset) Vectors() []float32 { return ds.flat }

// Domains returns all domain labels in sorted order.
func (ds *Dataset) Domains() []string { return ds.domains.Domains() }

// DomainSet returns the bitmap index over domains.
func (ds *Dataset) DomainSet() *DomainSet { return ds.domains }

// DomainName returns the display name for a domain label, falling back
// to the label itself.
func (ds *Dataset) DomainName(domain string) string {
	if name, ok := ds.displayNames[domain]; ok && name != "" {
		return name
	}
	return domain
}

// Stats computes per-domain concept counts and mean coordinates,
// sorted by domain label.
func (ds *Dataset) Stats() []DomainStat {
	labels := ds.domains.Domains()
	stats := make([]DomainStat, 0, len(labels))

	for _, label := range labels {
		st := DomainStat{Domain: label}
		for ord := range ds.domains.Iterate(label) {
			c := ds.concepts[ord]
			for d := 0; d < Dimension; d++ {
				st.Mean[d] += c.Coordinates[d]
			}
			st.Count++
		}
		if st.Count > 0 {
			for d := 0; d < Dimension; d++ {
				st.Mean[d] /= float32(st.Count)
			}
		}
		stats = append(stats, st)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Domain < stats[j].Domain })

	return stats
}

package dataset

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/klauspost/compress/gzip"

	"github.com/hupe1980/ljpw/codec"
)

// Wire schema of a milestone dataset file:
//
//	{
//	  "metadata": {"version": ..., "total_concepts": ..., "total_domains": ...},
//	  "domains": {
//	    "<domain_key>": {
//	      "name": ...,
//	      "concepts": {
//	        "<concept_name>": {"coordinates": [..4..], "definition": ..., "domain": ...}
//	      }
//	    }
//	  }
//	}
type fileRoot struct {
	Metadata Metadata              `json:"metadata"`
	Domains  map[string]fileDomain `json:"domains"`
}

type fileDomain struct {
	Name     string                 `json:"name"`
	Concepts map[string]fileConcept `json:"concepts"`
}

// Coordinates decodes as []any so that non-numeric elements can be
// reported precisely instead of surfacing as a codec type error.
// Pointer fields distinguish absent from empty.
type fileConcept struct {
	Coordinates []any   `json:"coordinates"`
	Definition  *string `json:"definition"`
	Domain      *string `json:"domain"`
}

// LoadOptions contains configuration options for dataset loading.
type LoadOptions struct {
	// Codec decodes the raw bytes. Defaults to codec.Default.
	Codec codec.Codec

	// Logger receives load diagnostics (range warnings, summary).
	// Defaults to slog.Default.
	Logger *slog.Logger

	// StrictRange upgrades out-of-range coordinates (outside [0,1]) from
	// a logged warning to a ParseError. Off by default: the corpus
	// contains synthetically generated values outside the nominal range.
	StrictRange bool
}

// WithCodec configures the codec used for decoding.
func WithCodec(c codec.Codec) func(*LoadOptions) {
	return func(o *LoadOptions) {
		if c != nil {
			o.Codec = c
		}
	}
}

// WithLogger configures the logger used for load diagnostics.
func WithLogger(l *slog.Logger) func(*LoadOptions) {
	return func(o *LoadOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithStrictRange makes out-of-range coordinates a ParseError.
func WithStrictRange() func(*LoadOptions) {
	return func(o *LoadOptions) {
		o.StrictRange = true
	}
}

// Load parses a serialized dataset from r.
//
// Records lacking coordinates, definition or domain, or whose
// coordinates are not exactly 4 numeric elements, fail with a
// *ParseError naming the offending concept key. The first error aborts
// the load; partial datasets are never returned.
//
// Dataset order is sorted by (domain key, concept key), which fixes the
// tie-break order for similarity queries and makes loads reproducible
// even though JSON objects are unordered.
func Load(r io.Reader, optFns ...func(*LoadOptions)) (*Dataset, error) {
	opts := LoadOptions{
		Codec:  codec.Default,
		Logger: slog.Default(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var root fileRoot
	if err := opts.Codec.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Reason: "invalid JSON", cause: err}
	}
	if root.Domains == nil {
		return nil, &ParseError{Reason: "missing domains section"}
	}

	domainKeys := make([]string, 0, len(root.Domains))
	for key := range root.Domains {
		domainKeys = append(domainKeys, key)
	}
	sort.Strings(domainKeys)

	var (
		concepts     []Concept
		outOfRange   int
		displayNames = make(map[string]string)
	)

	for _, domainKey := range domainKeys {
		fd := root.Domains[domainKey]
		if fd.Name != "" {
			displayNames[domainKey] = fd.Name
		}

		conceptKeys := make([]string, 0, len(fd.Concepts))
		for key := range fd.Concepts {
			conceptKeys = append(conceptKeys, key)
		}
		sort.Strings(conceptKeys)

		for _, name := range conceptKeys {
			c, n, err := parseConcept(name, fd.Concepts[name], opts.StrictRange)
			if err != nil {
				return nil, err
			}
			outOfRange += n
			concepts = append(concepts, c)
		}
	}

	ds, err := New(root.Metadata, concepts)
	if err != nil {
		return nil, err
	}
	ds.displayNames = displayNames

	if outOfRange > 0 {
		opts.Logger.Warn("coordinates outside nominal [0,1] range",
			"count", outOfRange,
			"version", ds.meta.Version,
		)
	}
	if want := root.Metadata.TotalConcepts; want != 0 && want != ds.Len() {
		opts.Logger.Warn("metadata concept count disagrees with records",
			"declared", want,
			"actual", ds.Len(),
		)
	}
	opts.Logger.Debug("dataset loaded",
		"version", ds.meta.Version,
		"concepts", ds.Len(),
		"domains", len(ds.domains.order),
	)

	return ds, nil
}

func parseConcept(name string, fc fileConcept, strictRange bool) (Concept, int, error) {
	if fc.Coordinates == nil {
		return Concept{}, 0, &ParseError{Key: name, Reason: "missing coordinates"}
	}
	if len(fc.Coordinates) != Dimension {
		return Concept{}, 0, &ParseError{
			Key:    name,
			Reason: fmt.Sprintf("coordinates must have exactly %d elements, got %d", Dimension, len(fc.Coordinates)),
		}
	}
	if fc.Definition == nil {
		return Concept{}, 0, &ParseError{Key: name, Reason: "missing definition"}
	}
	if fc.Domain == nil {
		return Concept{}, 0, &ParseError{Key: name, Reason: "missing domain"}
	}

	c := Concept{
		Name:       name,
		Definition: *fc.Definition,
		Domain:     *fc.Domain,
	}

	outOfRange := 0
	for i, raw := range fc.Coordinates {
		v, ok := raw.(float64)
		if !ok {
			return Concept{}, 0, &ParseError{
				Key:    name,
				Reason: fmt.Sprintf("non-numeric coordinate at index %d (%T)", i, raw),
			}
		}
		if v < 0 || v > 1 {
			if strictRange {
				return Concept{}, 0, &ParseError{
					Key:    name,
					Reason: fmt.Sprintf("coordinate %d out of range [0,1]: %v", i, v),
				}
			}
			outOfRange++
		}
		c.Coordinates[i] = float32(v)
	}

	return c, outOfRange, nil
}

// LoadFile loads a dataset from a file, transparently decompressing
// gzip content (detected by magic bytes, so both plain .json and
// compressed .json.gz milestone files work).
func LoadFile(path string, optFns ...func(*LoadOptions)) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)

	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip dataset: %w", err)
		}
		defer gz.Close()

		return Load(gz, optFns...)
	}

	return Load(br, optFns...)
}

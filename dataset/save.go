package dataset

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/hupe1980/ljpw/codec"
)

type wireConcept struct {
	Coordinates []float32 `json:"coordinates"`
	Definition  string    `json:"definition"`
	Domain      string    `json:"domain"`
}

type wireDomain struct {
	Name     string                 `json:"name"`
	Concepts map[string]wireConcept `json:"concepts"`
}

type wireRoot struct {
	Metadata Metadata              `json:"metadata"`
	Domains  map[string]wireDomain `json:"domains"`
}

// SaveOptions contains configuration options for dataset serialization.
type SaveOptions struct {
	// Codec encodes the dataset. Defaults to codec.Default.
	Codec codec.Codec

	// Logger receives save diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

// WithSaveCodec configures the codec used for encoding.
func WithSaveCodec(c codec.Codec) func(*SaveOptions) {
	return func(o *SaveOptions) {
		if c != nil {
			o.Codec = c
		}
	}
}

// Save serializes the dataset back to the milestone wire schema.
// Loading the output again yields an identical in-memory dataset.
func (ds *Dataset) Save(w io.Writer, optFns ...func(*SaveOptions)) error {
	opts := SaveOptions{
		Codec:  codec.Default,
		Logger: slog.Default(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	root := wireRoot{
		Metadata: ds.meta,
		Domains:  make(map[string]wireDomain, len(ds.domains.order)),
	}

	for _, c := range ds.concepts {
		wd, ok := root.Domains[c.Domain]
		if !ok {
			wd = wireDomain{
				Name:     ds.DomainName(c.Domain),
				Concepts: make(map[string]wireConcept),
			}
		}
		wd.Concepts[c.Name] = wireConcept{
			Coordinates: c.Coordinates[:],
			Definition:  c.Definition,
			Domain:      c.Domain,
		}
		root.Domains[c.Domain] = wd
	}

	data, err := opts.Codec.Marshal(root)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	opts.Logger.Debug("dataset saved",
		"version", ds.meta.Version,
		"concepts", ds.Len(),
		"bytes", len(data),
	)

	return nil
}

// SaveFile writes the dataset to a file, gzip-compressing when the path
// ends in ".gz".
func (ds *Dataset) SaveFile(path string, optFns ...func(*SaveOptions)) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if err := ds.Save(w, optFns...); err != nil {
		f.Close()
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return fmt.Errorf("flush gzip dataset: %w", err)
		}
	}

	return f.Close()
}

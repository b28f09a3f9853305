package vectorindex

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// persistedIndex is the on-disk artifact. Embedding is the expensive step,
// so the vectors are stored alongside the chunk metadata and the
// configuration the index was built with.
type persistedIndex struct {
	Metric  Metric
	Dim     int
	Entries []Entry
}

// Save writes the index atomically: encode to a temp file in the target
// directory, then rename over the destination.
func (ix *Index) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "index-*.gob")
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := gob.NewEncoder(tmp)
	if err := enc.Encode(persistedIndex{Metric: ix.metric, Dim: ix.dim, Entries: ix.entries}); err != nil {
		tmp.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index file: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}

// Load reads a persisted index and rebuilds the in-memory structure.
// It fails fast when the artifact was built with a different embedding
// dimensionality or similarity metric than the running configuration.
func Load(path string, wantDim int) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index artifact: %w", err)
	}
	defer f.Close()

	var stored persistedIndex
	if err := gob.NewDecoder(f).Decode(&stored); err != nil {
		return nil, fmt.Errorf("decode index artifact: %w", err)
	}

	if stored.Metric != MetricCosine {
		return nil, fmt.Errorf("%w: artifact uses %q", ErrMetricMismatch, stored.Metric)
	}
	if stored.Dim != wantDim {
		return nil, fmt.Errorf("%w: artifact has %d, configuration wants %d",
			ErrDimensionMismatch, stored.Dim, wantDim)
	}

	return Build(stored.Dim, stored.Entries)
}

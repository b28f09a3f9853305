package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/examassist/waecrag/internal/domain/ragModel"
)

type Metric string

const MetricCosine Metric = "cosine"

var (
	// ErrDimensionMismatch is fatal: a persisted index built with a
	// different embedding dimensionality must not serve queries.
	ErrDimensionMismatch = errors.New("index dimension mismatch")
	ErrMetricMismatch    = errors.New("index metric mismatch")
)

// Entry is one indexed chunk together with the metadata needed for
// filtered retrieval and deterministic tie-breaking.
type Entry struct {
	DocumentId string
	Ordinal    int
	Text       string
	Subject    string
	Year       int
	Vector     []float32
}

// Index is a flat exact nearest-neighbour structure over the corpus
// embeddings. It is built once per ingestion run and is read-only
// afterwards, so any number of concurrent searches are safe.
type Index struct {
	metric  Metric
	dim     int
	entries []Entry
	norms   []float32
}

// Build validates and orders the entries and precomputes vector norms.
// Entries are sorted by (DocumentId, Ordinal) so that an identical corpus
// always yields an identical index.
func Build(dim int, entries []Entry) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("vectorindex: invalid dimension %d", dim)
	}
	for _, e := range entries {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("%w: chunk %s has %d, index wants %d",
				ErrDimensionMismatch, ragModel.ChunkId(e.DocumentId, e.Ordinal), len(e.Vector), dim)
		}
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].DocumentId != sorted[j].DocumentId {
			return sorted[i].DocumentId < sorted[j].DocumentId
		}
		return sorted[i].Ordinal < sorted[j].Ordinal
	})

	norms := make([]float32, len(sorted))
	for i, e := range sorted {
		norms[i] = norm(e.Vector)
	}

	return &Index{
		metric:  MetricCosine,
		dim:     dim,
		entries: sorted,
		norms:   norms,
	}, nil
}

func (ix *Index) Dimension() int { return ix.dim }
func (ix *Index) Len() int       { return len(ix.entries) }

// Search returns the k nearest entries by cosine similarity, most similar
// first. Ties are broken by lower ordinal, then lower document id. A nil
// filter matches everything.
func (ix *Index) Search(query []float32, k int, filter func(Entry) bool) ([]ragModel.RetrievalResult, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d, index wants %d", ErrDimensionMismatch, len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	queryNorm := norm(query)

	type scored struct {
		idx   int
		score float32
	}
	candidates := make([]scored, 0, len(ix.entries))
	for i := range ix.entries {
		if filter != nil && !filter(ix.entries[i]) {
			continue
		}
		candidates = append(candidates, scored{
			idx:   i,
			score: cosine(query, queryNorm, ix.entries[i].Vector, ix.norms[i]),
		})
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		ea, eb := ix.entries[candidates[a].idx], ix.entries[candidates[b].idx]
		if ea.Ordinal != eb.Ordinal {
			return ea.Ordinal < eb.Ordinal
		}
		return ea.DocumentId < eb.DocumentId
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	results := make([]ragModel.RetrievalResult, 0, k)
	for _, c := range candidates[:k] {
		e := ix.entries[c.idx]
		results = append(results, ragModel.RetrievalResult{
			ChunkId:    ragModel.ChunkId(e.DocumentId, e.Ordinal),
			DocumentId: e.DocumentId,
			Ordinal:    e.Ordinal,
			Score:      c.score,
			Text:       e.Text,
		})
	}
	return results, nil
}

func cosine(q []float32, qNorm float32, v []float32, vNorm float32) float32 {
	if qNorm == 0 || vNorm == 0 {
		return 0
	}
	var dot float32
	for i := range q {
		dot += q[i] * v[i]
	}
	return dot / (qNorm * vNorm)
}

func norm(v []float32) float32 {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	return float32(math.Sqrt(float64(sum)))
}

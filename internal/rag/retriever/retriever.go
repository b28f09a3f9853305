package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/examassist/waecrag/internal/domain/ragModel"
	"github.com/examassist/waecrag/internal/metrics"
	"github.com/examassist/waecrag/internal/rag/embedding"
	"github.com/examassist/waecrag/internal/rag/vectorindex"
	"github.com/examassist/waecrag/pkg/logz"
)

// ErrRetrievalUnavailable surfaces when the embedding service or the index
// cannot serve a query. The caller decides whether to proceed without
// context or abort.
var ErrRetrievalUnavailable = errors.New("retrieval unavailable")

// Searcher is what the retriever needs from the vector index.
type Searcher interface {
	Search(query []float32, k int, filter func(vectorindex.Entry) bool) ([]ragModel.RetrievalResult, error)
}

// Filter narrows retrieval to chunks from matching documents. Zero values
// match everything.
type Filter struct {
	Subject string
	Year    int
}

type Retriever struct {
	embedder embedding.Embedder
	index    Searcher
	logger   *logz.Logger
}

func New(embedder embedding.Embedder, index Searcher) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		logger:   logz.NewLogger("Retriever"),
	}
}

// Retrieve embeds the query, searches the index and drops results scoring
// below minScore. The remainder comes back score-descending, possibly empty.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, minScore float32, filter Filter) ([]ragModel.RetrievalResult, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()

	queryVector, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		r.logger.Error("Query embedding failed", "error", err)
		return nil, fmt.Errorf("%w: embed query: %v", ErrRetrievalUnavailable, err)
	}

	results, err := r.index.Search(queryVector, k, filter.predicate())
	if err != nil {
		r.logger.Error("Index search failed", "error", err)
		return nil, fmt.Errorf("%w: search index: %v", ErrRetrievalUnavailable, err)
	}

	kept := results[:0]
	for _, res := range results {
		if res.Score >= minScore {
			kept = append(kept, res)
		}
	}

	r.logger.Debug("Retrieval done", "candidates", len(results), "kept", len(kept))
	return kept, nil
}

func (f Filter) predicate() func(vectorindex.Entry) bool {
	if f.Subject == "" && f.Year == 0 {
		return nil
	}
	subject := strings.ToLower(f.Subject)
	return func(e vectorindex.Entry) bool {
		if subject != "" && !strings.Contains(strings.ToLower(e.Subject), subject) {
			return false
		}
		if f.Year != 0 && e.Year != f.Year {
			return false
		}
		return true
	}
}

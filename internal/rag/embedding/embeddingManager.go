package embedding

import (
	"context"
)

// Embedder maps text to fixed-length vectors through an external model
// service. The dimension is fixed for the lifetime of an index.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	Dimension() int
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/examassist/waecrag/internal/config"
	"github.com/examassist/waecrag/internal/domain/ragModel"
	"github.com/examassist/waecrag/internal/metrics"
	"github.com/examassist/waecrag/internal/rag/chunker"
	"github.com/examassist/waecrag/internal/rag/embedding"
	"github.com/examassist/waecrag/internal/rag/vectorindex"
	"github.com/examassist/waecrag/pkg/logz"
)

var logger = logz.NewLogger("Document Ingestion ")

const embedBatchSize = 100

// maxParallelDocs bounds how many documents are chunked and embedded at
// once so a large corpus cannot exhaust the embedding backend.
const maxParallelDocs = 4

// SkippedDocument records a document dropped from the build and why.
type SkippedDocument struct {
	DocumentId string
	Reason     string
}

// Report summarises one index build.
type Report struct {
	DocumentsIndexed int
	ChunksIndexed    int
	Skipped          []SkippedDocument
}

type docResult struct {
	documentId string
	entries    []vectorindex.Entry
	skipReason string
	err        error
}

// Run builds the vector index from every document in the store and writes
// it to indexPath. A document whose text cannot be decoded is skipped and
// reported, not fatal; embedding-service failures abort the build so a
// half-embedded index never reaches disk.
func Run(ctx context.Context, store ragModel.DocumentStore, embedder embedding.Embedder, indexPath string) (Report, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_ingestion", time.Since(start)) }()

	docs, err := store.ListDocuments(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list documents: %w", err)
	}
	logger.Info("Starting index build", "documents", len(docs))

	results := make([]docResult, len(docs))
	sem := make(chan struct{}, maxParallelDocs)
	var wg sync.WaitGroup

	for i, doc := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, doc ragModel.Document) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = processDocument(ctx, doc, embedder)
		}(i, doc)
	}
	wg.Wait()

	var report Report
	var entries []vectorindex.Entry
	for _, res := range results {
		if res.err != nil {
			return Report{}, res.err
		}
		if res.skipReason != "" {
			logger.Warn("Skipping document", "documentId", res.documentId, "reason", res.skipReason)
			report.Skipped = append(report.Skipped, SkippedDocument{DocumentId: res.documentId, Reason: res.skipReason})
			continue
		}
		report.DocumentsIndexed++
		report.ChunksIndexed += len(res.entries)
		entries = append(entries, res.entries...)
	}
	sort.Slice(report.Skipped, func(i, j int) bool {
		return report.Skipped[i].DocumentId < report.Skipped[j].DocumentId
	})

	index, err := vectorindex.Build(embedder.Dimension(), entries)
	if err != nil {
		return Report{}, fmt.Errorf("build index: %w", err)
	}
	if err := index.Save(indexPath); err != nil {
		return Report{}, fmt.Errorf("save index: %w", err)
	}

	logger.Info("Index build complete",
		"documents", report.DocumentsIndexed,
		"chunks", report.ChunksIndexed,
		"skipped", len(report.Skipped),
		"path", indexPath)
	return report, nil
}

func processDocument(ctx context.Context, doc ragModel.Document, embedder embedding.Embedder) docResult {
	res := docResult{documentId: doc.Id}

	chunks, err := chunker.Split(doc, config.MaxChunkLen())
	if err != nil {
		if errors.Is(err, chunker.ErrDecode) {
			res.skipReason = err.Error()
			return res
		}
		res.err = fmt.Errorf("chunk document %s: %w", doc.Id, err)
		return res
	}
	if len(chunks) == 0 {
		res.skipReason = "document is empty"
		return res
	}

	vectors, err := embedChunks(ctx, embedder, chunks)
	if err != nil {
		res.err = fmt.Errorf("embed document %s: %w", doc.Id, err)
		return res
	}

	res.entries = make([]vectorindex.Entry, 0, len(chunks))
	for i, chunk := range chunks {
		res.entries = append(res.entries, vectorindex.Entry{
			DocumentId: chunk.DocumentId,
			Ordinal:    chunk.Ordinal,
			Text:       chunk.Text,
			Subject:    doc.Metadata.Subject,
			Year:       doc.Metadata.Year,
			Vector:     vectors[i],
		})
	}
	return res
}

func embedChunks(ctx context.Context, embedder embedding.Embedder, chunks []ragModel.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for i := 0; i < len(chunks); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		currentBatch := chunks[i:end]

		texts := make([]string, 0, len(currentBatch))
		for _, c := range currentBatch {
			texts = append(texts, c.Text)
		}

		logger.Debug("Starting embedding call", "batch length", len(currentBatch))
		batchVectors, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(batchVectors) != len(texts) {
			return nil, fmt.Errorf("embedding batch returned %d vectors for %d texts", len(batchVectors), len(texts))
		}
		vectors = append(vectors, batchVectors...)
	}
	return vectors, nil
}

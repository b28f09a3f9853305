package main

import (
	"context"
	"flag"
	"os"

	"github.com/examassist/waecrag/internal/config"
	"github.com/examassist/waecrag/internal/data/store"
	"github.com/examassist/waecrag/internal/domain/ragModel"
	"github.com/examassist/waecrag/internal/rag"
	"github.com/examassist/waecrag/internal/rag/ingest"
	"github.com/examassist/waecrag/pkg/logz"
)

var (
	collectDir string
	indexPath  string
)

func main() {

	logz.Init()
	var logger = logz.NewLogger("ingest")

	flag.StringVar(&collectDir, "collect", "", "directory of source documents to collect before indexing")
	flag.StringVar(&indexPath, "index", config.IndexPath(), "path to write the index artifact")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	var documentStore ragModel.DocumentStore
	redisDocumentStore := store.GetRedisDocumentStore(serviceContext, config.RedisDocumentStore)
	if redisDocumentStore == nil {
		logger.Error("Redis store is offline, using in-memory document store")
		documentStore = store.InitInMemoryDocumentStore()
		if collectDir == "" {
			logger.Error("In-memory store is empty and no -collect directory given. Nothing to index.")
			os.Exit(1)
		}
	} else {
		documentStore = redisDocumentStore
	}

	if collectDir != "" {
		collected, err := ingest.CollectDirectory(serviceContext, collectDir, documentStore)
		if err != nil {
			logger.Error("Collection failed", "dir", collectDir, "error", err)
			os.Exit(1)
		}
		logger.Info("Collection complete", "dir", collectDir, "documents", collected)
	}

	embedder, err := rag.NewEmbedder(serviceContext)
	if err != nil {
		logger.Error("Embedding service failed to initialize", "error", err)
		os.Exit(1)
	}

	report, err := ingest.Run(serviceContext, documentStore, embedder, indexPath)
	if err != nil {
		logger.Error("Index build failed", "error", err)
		os.Exit(1)
	}

	for _, skipped := range report.Skipped {
		logger.Warn("Document skipped", "documentId", skipped.DocumentId, "reason", skipped.Reason)
	}
	logger.Info("Ingestion finished",
		"documents", report.DocumentsIndexed,
		"chunks", report.ChunksIndexed,
		"skipped", len(report.Skipped),
		"index", indexPath)
}

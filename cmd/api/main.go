package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/examassist/waecrag/internal/config"
	"github.com/examassist/waecrag/internal/handlers"
	"github.com/examassist/waecrag/internal/metrics"
	"github.com/examassist/waecrag/internal/rag"
	"github.com/examassist/waecrag/internal/rag/retriever"
	"github.com/examassist/waecrag/internal/rag/vectorindex"
	"github.com/examassist/waecrag/internal/server"
	"github.com/examassist/waecrag/pkg/logz"
)

var (
	listenAddr string
	indexPath  string
)

func main() {

	logz.Init()
	var logger = logz.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.StringVar(&indexPath, "index", config.IndexPath(), "path to the index artifact")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	embedder, err := rag.NewEmbedder(serviceContext)
	if err != nil {
		logger.Error("Embedding service failed to initialize. Shutting down.", "error", err)
		return
	}

	llmProvider, err := rag.NewLLMProvider(serviceContext)
	if err != nil {
		logger.Error("LLM provider failed to initialize. Shutting down.", "error", err)
		return
	}

	// The index must match the embedder before the server takes traffic;
	// a dimension mismatch would silently return garbage rankings.
	index, err := vectorindex.Load(indexPath, embedder.Dimension())
	if err != nil {
		logger.Error("Could not load index. Shutting down.", "path", indexPath, "error", err)
		return
	}
	metrics.SetIndexEntries(index.Len())
	logger.Info("Index loaded", "path", indexPath, "entries", index.Len())

	ragService := rag.NewService(retriever.New(embedder, index), llmProvider)
	handlers.InitAskHandler(ragService)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

package rag

import (
	"context"
	"fmt"

	"github.com/examassist/waecrag/internal/config"
	"github.com/examassist/waecrag/internal/rag/embedding"
	"github.com/examassist/waecrag/internal/rag/embedding/googleEmbedding"
	"github.com/examassist/waecrag/internal/rag/embedding/ollamaEmbedding"
	"github.com/examassist/waecrag/internal/rag/llm"
	"github.com/examassist/waecrag/internal/rag/llm/gemini"
	"github.com/examassist/waecrag/internal/rag/llm/ollamaLLM"
	"github.com/examassist/waecrag/internal/rag/llm/openaiLLM"
)

// NewEmbedder picks the embedding backend from EMBED_PROVIDER.
func NewEmbedder(ctx context.Context) (embedding.Embedder, error) {
	switch provider := config.EmbedProvider(); provider {
	case "ollama":
		return ollamaEmbedding.GetOllamaEmbeddingClient(config.EmbedAddr(), config.EmbedModel(), config.EmbedDimension()), nil

	case "google":
		client := googleEmbedding.GetGoogleEmbeddingClient(ctx, config.EmbedModel(), config.GoogleAPIKey(), config.EmbedDimension())
		if client == nil {
			return nil, fmt.Errorf("google embedding client failed to initialise")
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// NewLLMProvider picks the generation backend from LLM_PROVIDER.
func NewLLMProvider(ctx context.Context) (llm.Provider, error) {
	switch provider := config.LLMProvider(); provider {
	case "ollama":
		return ollamaLLM.GetOllamaClient(config.ModelAddr(), config.LLMModel()), nil

	case "gemini":
		client := gemini.GetGeminiClient(ctx, config.LLMModel(), config.GoogleAPIKey())
		if client == nil {
			return nil, fmt.Errorf("gemini client failed to initialise")
		}
		return client, nil

	case "openai":
		apikey := config.OpenAIAPIKey()
		if apikey == "" {
			return nil, fmt.Errorf("openai: API key is required")
		}
		return openaiLLM.GetOpenAIClient(apikey, config.LLMModel()), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

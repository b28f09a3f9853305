package ollamaEmbedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/examassist/waecrag/internal/config"
	"github.com/examassist/waecrag/internal/customHttpClient"
	"github.com/examassist/waecrag/internal/rag/embedding"
	"github.com/examassist/waecrag/pkg/logz"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	dimension  int
	logger     *logz.Logger
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func GetOllamaEmbeddingClient(baseURL string, model string, dimension int) embedding.Embedder {
	return &client{
		httpClient: customHttpClient.GetPooledClient(),
		baseURL:    baseURL,
		model:      model,
		dimension:  dimension,
		logger:     logz.NewLogger("ollama_embedding"),
	}
}

func (c *client) Dimension() int {
	return c.dimension
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.EmbedCallTimeout)
	defer cancel()

	jsonBody, err := json.Marshal(embedRequest{Model: c.model, Prompt: query})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost,
		c.baseURL+"/api/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding service call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding service status %d: %s", resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}

	vector := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}

// BatchEmbedding calls the single-text endpoint per chunk. Ollama has no
// native batch API.
func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vector, err := c.GetEmbedding(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

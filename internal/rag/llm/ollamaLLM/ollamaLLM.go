package ollamaLLM

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/examassist/waecrag/internal/config"
	"github.com/examassist/waecrag/internal/customHttpClient"
	"github.com/examassist/waecrag/internal/rag/llm"
	"github.com/examassist/waecrag/pkg/logz"
)

type llmClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

var logger *logz.Logger
var ollamaClient *llmClient
var once sync.Once

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	System  string   `json:"system,omitempty"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumCtx      int     `json:"num_ctx,omitempty"`
}

// generateResponse is one NDJSON line of a streamed /api/generate reply.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func GetOllamaClient(baseURL string, model string) llm.Provider {
	once.Do(func() {
		logger = logz.NewLogger("llm_ollama")
		ollamaClient = &llmClient{
			httpClient: customHttpClient.GetPooledClient(),
			baseURL:    baseURL,
			model:      model,
		}
		logger.Info("Ollama LLM client created", "baseURL", baseURL, "model", model)
	})
	return ollamaClient
}

// GenerateStream POSTs /api/generate with stream=true and forwards every
// NDJSON line's response field as a fragment. The stream ends cleanly only
// on a line with done=true; any earlier error, decode failure, or EOF
// becomes a terminal error fragment.
func (c *llmClient) GenerateStream(ctx context.Context, prompt string) (<-chan llm.Fragment, error) {
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: config.SystemInstruction,
		Stream: true,
		Options: &options{
			Temperature: float64(config.ModelTemperature),
			NumCtx:      config.ModelContextSize,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Ollama request failed", "error", err)
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	out := make(chan llm.Fragment)
	go c.decodeStream(ctx, resp.Body, out)
	return out, nil
}

func (c *llmClient) decodeStream(ctx context.Context, body io.ReadCloser, out chan<- llm.Fragment) {
	defer close(out)
	defer body.Close()

	decoder := json.NewDecoder(body)
	for {
		var line generateResponse
		if err := decoder.Decode(&line); err != nil {
			// io.EOF before done=true means the model stopped mid-answer.
			logger.Error("Ollama stream ended early", "error", err)
			sendFragment(ctx, out, llm.Fragment{Err: fmt.Errorf("%w: %v", llm.ErrGenerationInterrupted, err)})
			return
		}
		if line.Error != "" {
			logger.Error("Ollama stream error", "error", line.Error)
			sendFragment(ctx, out, llm.Fragment{Err: fmt.Errorf("%w: %s", llm.ErrGenerationInterrupted, line.Error)})
			return
		}
		if line.Response != "" {
			if !sendFragment(ctx, out, llm.Fragment{Text: line.Response}) {
				return
			}
		}
		if line.Done {
			return
		}
	}
}

func sendFragment(ctx context.Context, out chan<- llm.Fragment, f llm.Fragment) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

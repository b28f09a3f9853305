package gemini

import (
	"context"
	"fmt"
	"sync"

	"github.com/examassist/waecrag/internal/config"
	"github.com/examassist/waecrag/internal/rag/llm"
	"github.com/examassist/waecrag/pkg/logz"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logz.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logz.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return geminiClient
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created", "model", modelName)
	}
}

// GenerateStream forwards each model chunk as its own fragment. A mid-stream
// API error becomes a terminal error fragment so the consumer can tell an
// interrupted answer apart from a finished one.
func (c *llmClient) GenerateStream(ctx context.Context, prompt string) (<-chan llm.Fragment, error) {
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: config.SystemInstruction}},
		},
		Temperature: genai.Ptr[float32](config.ModelTemperature),
	}

	out := make(chan llm.Fragment)
	go func() {
		defer close(out)
		for result, err := range c.client.Models.GenerateContentStream(ctx, c.modelName, genai.Text(prompt), contentConfig) {
			if err != nil {
				logger.Error("Gemini stream failed", "error", err)
				sendFragment(ctx, out, llm.Fragment{Err: fmt.Errorf("%w: %v", llm.ErrGenerationInterrupted, err)})
				return
			}
			if text := result.Text(); text != "" {
				if !sendFragment(ctx, out, llm.Fragment{Text: text}) {
					return
				}
			}
		}
	}()
	return out, nil
}

func sendFragment(ctx context.Context, out chan<- llm.Fragment, f llm.Fragment) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

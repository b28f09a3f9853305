package openaiLLM

import (
	"context"
	"fmt"
	"sync"

	"github.com/examassist/waecrag/internal/config"
	"github.com/examassist/waecrag/internal/rag/llm"
	"github.com/examassist/waecrag/pkg/logz"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	client openai.Client
	model  string
}

var logger *logz.Logger
var openaiClient *llmClient
var once sync.Once

func GetOpenAIClient(apikey string, model string) llm.Provider {
	once.Do(func() {
		logger = logz.NewLogger("llm_openai")
		openaiClient = &llmClient{
			client: openai.NewClient(option.WithAPIKey(apikey)),
			model:  model,
		}
		logger.Info("OpenAI client created", "model", model)
	})
	return openaiClient
}

// GenerateStream forwards chat completion deltas as fragments. stream.Err
// is checked after the loop so a transport drop mid-answer surfaces as a
// terminal error fragment instead of a silently short answer.
func (c *llmClient) GenerateStream(ctx context.Context, prompt string) (<-chan llm.Fragment, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(config.SystemInstruction),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(float64(config.ModelTemperature)),
	})

	out := make(chan llm.Fragment)
	go func() {
		defer close(out)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			if !sendFragment(ctx, out, llm.Fragment{Text: delta}) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			logger.Error("OpenAI stream failed", "error", err)
			sendFragment(ctx, out, llm.Fragment{Err: fmt.Errorf("%w: %v", llm.ErrGenerationInterrupted, err)})
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

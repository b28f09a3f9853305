package rag_test

import (
	"context"

	"github.com/examassist/waecrag/internal/domain/ragModel"
	"github.com/examassist/waecrag/internal/rag/llm"
	"github.com/examassist/waecrag/internal/rag/retriever"
)

// MockRetriever implements rag.Retriever
type MockRetriever struct {
	OnRetrieve func(ctx context.Context, query string, k int, minScore float32, filter retriever.Filter) ([]ragModel.RetrievalResult, error)
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string, k int, minScore float32, filter retriever.Filter) ([]ragModel.RetrievalResult, error) {
	if m.OnRetrieve != nil {
		return m.OnRetrieve(ctx, query, k, minScore, filter)
	}
	return []ragModel.RetrievalResult{{ChunkId: "doc#0", Text: "default context", Score: 0.9}}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerateStream func(ctx context.Context, prompt string) (<-chan llm.Fragment, error)
}

func (m *MockLLM) GenerateStream(ctx context.Context, prompt string) (<-chan llm.Fragment, error) {
	if m.OnGenerateStream != nil {
		return m.OnGenerateStream(ctx, prompt)
	}
	return fragmentStream("mocked ", "llm ", "response"), nil
}

// fragmentStream builds a closed channel preloaded with text fragments.
func fragmentStream(texts ...string) <-chan llm.Fragment {
	out := make(chan llm.Fragment, len(texts))
	for _, txt := range texts {
		out <- llm.Fragment{Text: txt}
	}
	close(out)
	return out
}

func collect(fragments <-chan llm.Fragment) (string, error) {
	var text string
	for f := range fragments {
		if f.Err != nil {
			return text, f.Err
		}
		text += f.Text
	}
	return text, nil
}

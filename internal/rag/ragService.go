package rag

import (
	"context"
	"errors"

	"github.com/examassist/waecrag/internal/config"
	"github.com/examassist/waecrag/internal/domain/ragModel"
	"github.com/examassist/waecrag/internal/rag/llm"
	"github.com/examassist/waecrag/internal/rag/prompt"
	"github.com/examassist/waecrag/internal/rag/retriever"
	"github.com/examassist/waecrag/pkg/logz"
)

// AnswerRequest carries a user question plus optional filters narrowing
// retrieval to one subject or exam year.
type AnswerRequest struct {
	Question string
	Subject  string
	Year     int
}

// Service is the one entry point handlers and the chat client call. It hides
// the retriever, the prompt assembly and the model provider behind a single
// streamed operation.
type Service interface {
	StreamAnswer(ctx context.Context, req AnswerRequest) (<-chan llm.Fragment, error)
}

type service struct {
	retriever   Retriever
	llmProvider llm.Provider
	logger      *logz.Logger
}

// Retriever is the slice of the retrieval package the service needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int, minScore float32, filter retriever.Filter) ([]ragModel.RetrievalResult, error)
}

// NewService constructor
func NewService(ret Retriever, provider llm.Provider) Service {
	return &service{
		retriever:   ret,
		llmProvider: provider,
		logger:      logz.NewLogger("RAG Service :"),
	}
}

// StreamAnswer retrieves context, assembles the prompt and opens the model
// stream. A retrieval outage degrades to a context-free prompt rather than
// failing the question; only a model-open failure returns an error here.
// Errors after the stream opens arrive as a terminal error fragment.
func (s *service) StreamAnswer(ctx context.Context, req AnswerRequest) (<-chan llm.Fragment, error) {
	inMethodLogger := s.logger
	if traceId, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		inMethodLogger = s.logger.With("traceId", traceId)
	}

	matches, err := s.executeRetrievalStep(ctx, req)
	if err != nil {
		if !errors.Is(err, retriever.ErrRetrievalUnavailable) {
			return nil, err
		}
		inMethodLogger.Warn("Retrieval unavailable, answering without context", "error", err)
		matches = nil
	}

	assembled := prompt.Assemble(req.Question, matches, config.PromptBudget())
	inMethodLogger.Debug("Prompt assembled", "passages", len(matches), "promptLength", len(assembled))

	// modelCtx inherits the request context, so a client disconnect aborts
	// the upstream call; the timeout caps a stalled model.
	modelCtx, cancel := context.WithTimeout(ctx, config.ModelCallTimeout)
	upstream, err := s.executeLLMStep(modelCtx, assembled)
	if err != nil {
		cancel()
		inMethodLogger.Error("LLM_GENERATION_FAILURE", "error", err)
		return nil, err
	}

	// One buffered slot: the terminal error fragment must land even when
	// the consumer is between receives at the moment the model call dies.
	out := make(chan llm.Fragment, 1)
	go s.pipeFragments(ctx, modelCtx, cancel, upstream, out)
	return out, nil
}

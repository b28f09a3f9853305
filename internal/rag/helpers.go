package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/examassist/waecrag/internal/config"
	"github.com/examassist/waecrag/internal/domain/ragModel"
	"github.com/examassist/waecrag/internal/metrics"
	"github.com/examassist/waecrag/internal/rag/llm"
	"github.com/examassist/waecrag/internal/rag/retriever"
)

func (s *service) executeRetrievalStep(ctx context.Context, req AnswerRequest) ([]ragModel.RetrievalResult, error) {
	filter := retriever.Filter{Subject: req.Subject, Year: req.Year}
	return s.retriever.Retrieve(ctx, req.Question, config.RetrieveK(), config.MinSimilarity(), filter)
}

func (s *service) executeLLMStep(ctx context.Context, assembledPrompt string) (<-chan llm.Fragment, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.GenerateStream(ctx, assembledPrompt)
}

// pipeFragments forwards the model stream to the caller and releases the
// model-call timeout once the upstream channel closes. If the model context
// dies before the model finishes, the consumer still gets a terminal error
// fragment so a cut-off answer never looks complete.
func (s *service) pipeFragments(reqCtx context.Context, modelCtx context.Context, cancel context.CancelFunc, upstream <-chan llm.Fragment, out chan<- llm.Fragment) {
	defer close(out)
	defer cancel()

	for fragment := range upstream {
		select {
		case out <- fragment:
		case <-modelCtx.Done():
			s.notifyInterrupted(reqCtx, modelCtx, out)
			return
		}
		if fragment.Err != nil {
			return
		}
	}

	if modelCtx.Err() != nil {
		s.notifyInterrupted(reqCtx, modelCtx, out)
	}
}

// notifyInterrupted blocks until the error fragment is accepted: a live
// consumer may be mid-render and come back for it later. The send is
// abandoned only when the request context itself is dead, meaning the
// client disconnected and nobody is left to tell.
func (s *service) notifyInterrupted(reqCtx context.Context, modelCtx context.Context, out chan<- llm.Fragment) {
	terminal := llm.Fragment{Err: fmt.Errorf("%w: %v", llm.ErrGenerationInterrupted, modelCtx.Err())}
	select {
	case out <- terminal:
	case <-reqCtx.Done():
	}
}

package rag_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/examassist/waecrag/internal/domain/ragModel"
	"github.com/examassist/waecrag/internal/rag"
	"github.com/examassist/waecrag/internal/rag/llm"
	"github.com/examassist/waecrag/internal/rag/retriever"
)

func TestStreamAnswer_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(r *MockRetriever, l *MockLLM)
		wantText    string
		wantErrFrag bool
		wantOpenErr bool
	}{
		{
			name:       "Success_Full_Flow",
			setupMocks: func(r *MockRetriever, l *MockLLM) {},
			wantText:   "mocked llm response",
		},
		{
			name: "Retrieval_Outage_Degrades_To_No_Context",
			setupMocks: func(r *MockRetriever, l *MockLLM) {
				r.OnRetrieve = func(ctx context.Context, q string, k int, min float32, f retriever.Filter) ([]ragModel.RetrievalResult, error) {
					return nil, fmt.Errorf("%w: embed query", retriever.ErrRetrievalUnavailable)
				}
				l.OnGenerateStream = func(ctx context.Context, prompt string) (<-chan llm.Fragment, error) {
					if !strings.Contains(prompt, "No specific relevant questions were found") {
						t.Errorf("degraded prompt expected, got:\n%s", prompt)
					}
					return fragmentStream("degraded answer"), nil
				}
			},
			wantText: "degraded answer",
		},
		{
			name: "Model_Open_Failure",
			setupMocks: func(r *MockRetriever, l *MockLLM) {
				l.OnGenerateStream = func(ctx context.Context, prompt string) (<-chan llm.Fragment, error) {
					return nil, errors.New("provider down")
				}
			},
			wantOpenErr: true,
		},
		{
			name: "Mid_Stream_Interruption_Is_Terminal_Fragment",
			setupMocks: func(r *MockRetriever, l *MockLLM) {
				l.OnGenerateStream = func(ctx context.Context, prompt string) (<-chan llm.Fragment, error) {
					out := make(chan llm.Fragment, 2)
					out <- llm.Fragment{Text: "partial "}
					out <- llm.Fragment{Err: fmt.Errorf("%w: connection reset", llm.ErrGenerationInterrupted)}
					close(out)
					return out, nil
				}
			},
			wantText:    "partial ",
			wantErrFrag: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRet := &MockRetriever{}
			mLLM := &MockLLM{}
			tt.setupMocks(mRet, mLLM)

			s := rag.NewService(mRet, mLLM)

			fragments, err := s.StreamAnswer(context.Background(), rag.AnswerRequest{Question: "test question"})
			if tt.wantOpenErr {
				if err == nil {
					t.Fatal("expected error opening stream")
				}
				return
			}
			if err != nil {
				t.Fatalf("StreamAnswer returned error: %v", err)
			}

			text, fragErr := collect(fragments)
			if text != tt.wantText {
				t.Errorf("text got %q, want %q", text, tt.wantText)
			}
			if tt.wantErrFrag && !errors.Is(fragErr, llm.ErrGenerationInterrupted) {
				t.Errorf("got %v, want ErrGenerationInterrupted", fragErr)
			}
			if !tt.wantErrFrag && fragErr != nil {
				t.Errorf("unexpected terminal error: %v", fragErr)
			}
		})
	}
}

func TestStreamAnswer_PromptCarriesRetrievedPassages(t *testing.T) {
	mRet := &MockRetriever{}
	mLLM := &MockLLM{
		OnGenerateStream: func(ctx context.Context, prompt string) (<-chan llm.Fragment, error) {
			if !strings.Contains(prompt, "default context") {
				t.Errorf("retrieved passage missing from prompt:\n%s", prompt)
			}
			if !strings.Contains(prompt, "Question: test question") {
				t.Errorf("question missing from prompt:\n%s", prompt)
			}
			return fragmentStream("ok"), nil
		},
	}

	s := rag.NewService(mRet, mLLM)
	fragments, err := s.StreamAnswer(context.Background(), rag.AnswerRequest{Question: "test question"})
	if err != nil {
		t.Fatalf("StreamAnswer returned error: %v", err)
	}
	if _, err := collect(fragments); err != nil {
		t.Fatalf("collect returned error: %v", err)
	}
}

func TestStreamAnswer_FiltersReachRetriever(t *testing.T) {
	var gotFilter retriever.Filter
	mRet := &MockRetriever{
		OnRetrieve: func(ctx context.Context, q string, k int, min float32, f retriever.Filter) ([]ragModel.RetrievalResult, error) {
			gotFilter = f
			return nil, nil
		},
	}

	s := rag.NewService(mRet, &MockLLM{})
	fragments, err := s.StreamAnswer(context.Background(), rag.AnswerRequest{
		Question: "cells",
		Subject:  "biology",
		Year:     2012,
	})
	if err != nil {
		t.Fatalf("StreamAnswer returned error: %v", err)
	}
	collect(fragments)

	if gotFilter.Subject != "biology" || gotFilter.Year != 2012 {
		t.Errorf("filter got %+v, want biology/2012", gotFilter)
	}
}

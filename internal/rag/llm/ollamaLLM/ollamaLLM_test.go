package ollamaLLM

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/examassist/waecrag/internal/rag/llm"
	"github.com/examassist/waecrag/pkg/logz"
)

func newTestClient(baseURL string) *llmClient {
	if logger == nil {
		logger = logz.NewLogger("llm_ollama")
	}
	return &llmClient{
		httpClient: http.DefaultClient,
		baseURL:    baseURL,
		model:      "test-model",
	}
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

func TestGenerateStream_CleanCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path got %q", r.URL.Path)
		}
		w.Write([]byte(`{"response":"Hello ","done":false}` + "\n"))
		w.Write([]byte(`{"response":"world","done":true}` + "\n"))
	}))
	defer srv.Close()

	fragments, err := newTestClient(srv.URL).GenerateStream(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GenerateStream returned error: %v", err)
	}

	text, fragErr := collect(fragments)
	if fragErr != nil {
		t.Fatalf("unexpected terminal error: %v", fragErr)
	}
	if text != "Hello world" {
		t.Errorf("text got %q, want %q", text, "Hello world")
	}
}

func TestGenerateStream_MidStreamErrorLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"partial ","done":false}` + "\n"))
		w.Write([]byte(`{"error":"model crashed"}` + "\n"))
	}))
	defer srv.Close()

	fragments, err := newTestClient(srv.URL).GenerateStream(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GenerateStream returned error: %v", err)
	}

	text, fragErr := collect(fragments)
	if text != "partial " {
		t.Errorf("text before failure got %q", text)
	}
	if !errors.Is(fragErr, llm.ErrGenerationInterrupted) {
		t.Errorf("got %v, want ErrGenerationInterrupted", fragErr)
	}
}

// A body that ends before a done=true line is an interruption, never a
// clean completion.
func TestGenerateStream_TruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"partial ","done":false}` + "\n"))
	}))
	defer srv.Close()

	fragments, err := newTestClient(srv.URL).GenerateStream(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GenerateStream returned error: %v", err)
	}

	text, fragErr := collect(fragments)
	if text != "partial " {
		t.Errorf("text before failure got %q", text)
	}
	if !errors.Is(fragErr, llm.ErrGenerationInterrupted) {
		t.Errorf("got %v, want ErrGenerationInterrupted", fragErr)
	}
}

func TestGenerateStream_ServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateStream(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error for rejected request")
	}
}

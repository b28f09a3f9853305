package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/examassist/waecrag/internal/api"
)

func drain(t *testing.T, events <-chan Event) ([]Event, bool) {
	t.Helper()
	var got []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return got, true
			}
			got = append(got, ev)
		case <-timeout:
			return got, false
		}
	}
}

func TestAsk_DecodesFragmentEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: Hello \n\ndata: world\n\n"))
	}))
	defer srv.Close()

	events, err := New(srv.URL).Ask(context.Background(), api.AskRequest{Question: "q"})
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}

	got, closed := drain(t, events)
	if !closed {
		t.Fatal("event channel never closed")
	}
	if len(got) != 2 || got[0].Text != "Hello " || got[1].Text != "world" {
		t.Errorf("events got %+v", got)
	}
	for _, ev := range got {
		if ev.Err != nil {
			t.Errorf("unexpected error event: %v", ev.Err)
		}
	}
}

// Several data lines inside one event are a single fragment whose text
// contained newlines. Rejoining them must reproduce it exactly.
func TestAsk_RejoinsMultiLineFragment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: line one\ndata: line two\n\n"))
	}))
	defer srv.Close()

	events, err := New(srv.URL).Ask(context.Background(), api.AskRequest{Question: "q"})
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}

	got, _ := drain(t, events)
	if len(got) != 1 || got[0].Text != "line one\nline two" {
		t.Errorf("events got %+v, want one event %q", got, "line one\nline two")
	}
}

func TestAsk_ErrorEventIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: partial\n\ndata: " + api.ErrorPrefix + "model connection reset\n\n"))
	}))
	defer srv.Close()

	events, err := New(srv.URL).Ask(context.Background(), api.AskRequest{Question: "q"})
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}

	got, closed := drain(t, events)
	if !closed {
		t.Fatal("event channel never closed")
	}
	if len(got) != 2 {
		t.Fatalf("events got %+v, want partial then error", got)
	}
	if got[0].Text != "partial" {
		t.Errorf("first event got %+v", got[0])
	}
	if got[1].Err == nil || got[1].Err.Error() != "model connection reset" {
		t.Errorf("terminal event got %+v", got[1])
	}
}

func TestAsk_RejectionSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":400,"message":"question is required"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Ask(context.Background(), api.AskRequest{})
	if err == nil {
		t.Fatal("expected error for rejected request")
	}
	if !strings.Contains(err.Error(), "question is required") {
		t.Errorf("error should carry the server message, got %v", err)
	}
}

// An abrupt mid-stream disconnect, as opposed to a clean end of body, must
// surface as an error event so the caller never mistakes a truncated answer
// for a complete one.
func TestAsk_DisconnectBecomesConnectionLost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: partial\n\n"))
		w.(http.Flusher).Flush()

		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack failed: %v", err)
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	events, err := New(srv.URL).Ask(context.Background(), api.AskRequest{Question: "q"})
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}

	got, closed := drain(t, events)
	if !closed {
		t.Fatal("event channel never closed")
	}
	if len(got) == 0 || got[0].Text != "partial" {
		t.Fatalf("events got %+v, want the delivered fragment first", got)
	}
	last := got[len(got)-1]
	if last.Err == nil || !strings.Contains(last.Err.Error(), "connection lost") {
		t.Errorf("last event got %+v, want a connection lost error", last)
	}
}

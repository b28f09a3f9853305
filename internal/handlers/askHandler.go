package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/examassist/waecrag/internal/api"
	"github.com/examassist/waecrag/internal/metrics"
	"github.com/examassist/waecrag/internal/rag"
	"github.com/examassist/waecrag/internal/rag/llm"
	"github.com/examassist/waecrag/pkg/logz"
)

var (
	handlerInstance *AskHandler //private singleton
	once            sync.Once
	logAH           *logz.Logger
	logRH           *logz.Logger
)

type AskHandler struct {
	service rag.Service
}

func InitAskHandler(ragService rag.Service) {
	once.Do(func() {
		handlerInstance = &AskHandler{service: ragService}

		logAH = logz.NewLogger("AskHandler")
		logRH = logz.NewLogger("RequestHandler")
		logAH.Info("Starting ask handler")
	})
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AskQuestionHandler answers one question as a stream of answer fragments.
// Request problems are rejected with a JSON error before any fragment is
// written; once streaming starts, failures arrive in-band as error events.
func AskQuestionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remoteAddr", r.RemoteAddr)
		return
	}

	var requestData api.AskRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the Ask handler reader :", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Question) == "" {
		logRH.Warn("Bad Ask Request: ", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}

	fragments, err := handlerInstance.service.StreamAnswer(r.Context(), rag.AnswerRequest{
		Question: requestData.Question,
		Subject:  requestData.Subject,
		Year:     requestData.Year,
	})
	if err != nil {
		logAH.Error("Could not open answer stream", "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, "answer service unavailable")
		return
	}

	handlerInstance.streamAnswer(w, r, fragments)
}

func (h *AskHandler) streamAnswer(w http.ResponseWriter, r *http.Request, fragments <-chan llm.Fragment) {
	start := time.Now()
	status := "complete"
	defer func() { metrics.CaptureAnswerMetrics(status, time.Since(start)) }()

	flusher, ok := w.(http.Flusher)
	if !ok {
		logAH.Error("Response writer does not support streaming")
		WriteErrorResponse(w, http.StatusInternalServerError, "streaming unsupported")
		status = "unsupported"
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for fragment := range fragments {
		if fragment.Err != nil {
			logAH.Error("Stream interrupted", "error", fragment.Err)
			if writeErr := writeErrorEvent(w, fragment.Err.Error()); writeErr != nil {
				logAH.Warn("Client gone before error event", "error", writeErr)
			}
			flusher.Flush()
			status = "interrupted"
			return
		}

		if err := writeFragmentEvent(w, fragment.Text); err != nil {
			// Client disconnected; the request context cancel stops upstream.
			logAH.Debug("Client disconnected mid-stream", "error", err)
			status = "client_gone"
			return
		}
		flusher.Flush()
		metrics.IncrementStreamedFragments()
	}

	if r.Context().Err() != nil {
		status = "cancelled"
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/examassist/waecrag/internal/api"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, api.ErrorResponse{Code: httpCode, Message: message})
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

// writeFragmentEvent frames one fragment as a single stream event. A
// fragment containing newlines becomes multiple data lines in the same
// event, so the client can rejoin them and reproduce the text exactly.
func writeFragmentEvent(w http.ResponseWriter, text string) error {
	for _, line := range strings.Split(text, "\n") {
		if _, err := w.Write([]byte(api.EventPrefix + line + "\n")); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("\n"))
	return err
}

func writeErrorEvent(w http.ResponseWriter, message string) error {
	return writeFragmentEvent(w, api.ErrorPrefix+message)
}

package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/examassist/waecrag/internal/api"
	"github.com/examassist/waecrag/internal/customHttpClient"
	"github.com/examassist/waecrag/pkg/logz"
)

// Event is one decoded stream event. Err is terminal: either the server
// reported a generation failure in-band or the connection dropped.
type Event struct {
	Text string
	Err  error
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logz.Logger
}

func New(baseURL string) *Client {
	return &Client{
		httpClient: customHttpClient.GetPooledClient(),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logz.NewLogger("client"),
	}
}

// Ask posts a question and decodes the event stream. Events carrying a
// fragment that contained newlines arrive as several data lines and are
// rejoined here, so the text round-trips the transport byte for byte.
func (c *Client) Ask(ctx context.Context, askReq api.AskRequest) (<-chan Event, error) {
	jsonBody, err := json.Marshal(askReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var errResp api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			return nil, fmt.Errorf("server rejected question (status %d): %s", resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("server rejected question (status %d)", resp.StatusCode)
	}

	events := make(chan Event)
	go c.decodeEvents(resp.Body, events)
	return events, nil
}

func (c *Client) decodeEvents(body io.ReadCloser, events chan<- Event) {
	defer close(events)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var dataLines []string
	sawTerminalError := false

	flush := func() {
		if dataLines == nil {
			return
		}
		text := strings.Join(dataLines, "\n")
		dataLines = nil

		if strings.HasPrefix(text, api.ErrorPrefix) {
			sawTerminalError = true
			events <- Event{Err: errors.New(strings.TrimPrefix(text, api.ErrorPrefix))}
			return
		}
		events <- Event{Text: text}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			flush()
			continue
		}
		if payload, ok := strings.CutPrefix(line, api.EventPrefix); ok {
			dataLines = append(dataLines, payload)
		}
	}
	flush()

	if sawTerminalError {
		return
	}
	if err := scanner.Err(); err != nil {
		c.logger.Warn("Stream connection lost", "error", err)
		events <- Event{Err: fmt.Errorf("connection lost: %w", err)}
	}
}

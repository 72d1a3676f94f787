// Package llmtest fakes an OpenAI-compatible endpoint at the transport level.
package llmtest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/openai/openai-go/v3/option"
)

// Request is a captured outgoing call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   map[string]any
}

// Transport answers every request with Status and Body and remembers what it saw.
type Transport struct {
	Status int
	Body   string
	// Err, when set, is returned instead of a response.
	Err error

	mu       sync.Mutex
	requests []Request
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	captured := Request{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
	}

	if req.Body != nil {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		_ = req.Body.Close()

		if len(bytes.TrimSpace(raw)) > 0 {
			if err = json.Unmarshal(raw, &captured.Body); err != nil {
				return nil, errors.Join(errors.New("decode request body"), err)
			}
		}
	}

	t.mu.Lock()
	t.requests = append(t.requests, captured)
	t.mu.Unlock()

	if t.Err != nil {
		return nil, t.Err
	}

	status := t.Status
	if status == 0 {
		status = http.StatusOK
	}

	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(t.Body)),
		Request:    req,
	}, nil
}

func (t *Transport) Requests() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]Request(nil), t.requests...)
}

// Option routes a client through t.
func (t *Transport) Option() option.RequestOption {
	return option.WithHTTPClient(&http.Client{Transport: t})
}

// ChatCompletionJSON renders a chat completion response with one choice per content.
func ChatCompletionJSON(contents ...string) string {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type choice struct {
		Index        int     `json:"index"`
		FinishReason string  `json:"finish_reason"`
		Message      message `json:"message"`
	}

	choices := make([]choice, 0, len(contents))
	for i, content := range contents {
		choices = append(choices, choice{
			Index:        i,
			FinishReason: "stop",
			Message:      message{Role: "assistant", Content: content},
		})
	}

	raw, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1735725600,
		"model":   "test-model",
		"choices": choices,
	})

	return string(raw)
}

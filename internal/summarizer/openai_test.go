package summarizer

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"tweetdigest/internal/llm"
	"tweetdigest/internal/llm/llmtest"

	"github.com/openai/openai-go/v3/option"
)

func TestNewOpenAISummarizerAppliesDefaults(t *testing.T) {
	s, err := NewOpenAISummarizer(context.Background(), OpenAIConfig{APIKey: "sk-test"}, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Model() != llm.DefaultModel {
		t.Fatalf("expected default model, got %q", s.Model())
	}
	if s.BaseURL() != llm.DefaultBaseURL {
		t.Fatalf("expected default base URL, got %q", s.BaseURL())
	}
}

func TestNewOpenAISummarizerAllowsMissingAPIKey(t *testing.T) {
	if _, err := NewOpenAISummarizer(context.Background(), OpenAIConfig{}, slog.Default()); err != nil {
		t.Fatalf("expected missing API key to be tolerated, got %v", err)
	}
}

func TestNewOpenAISummarizerRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  OpenAIConfig
	}{
		{name: "base URL without scheme", cfg: OpenAIConfig{APIKey: "sk-test", BaseURL: "openrouter.ai/api/v1"}},
		{name: "unsupported scheme", cfg: OpenAIConfig{APIKey: "sk-test", BaseURL: "ws://localhost/v1"}},
		{name: "model with spaces", cfg: OpenAIConfig{APIKey: "sk-test", Model: "deepseek chat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewOpenAISummarizer(context.Background(), tt.cfg, slog.Default()); err == nil {
				t.Fatalf("expected error for %+v", tt.cfg)
			}
		})
	}
}

func newTestSummarizer(t *testing.T, transport *llmtest.Transport) *OpenAISummarizer {
	t.Helper()

	s, err := NewOpenAISummarizer(context.Background(), OpenAIConfig{
		APIKey:         "sk-test",
		Model:          "deepseek-chat",
		BaseURL:        "https://api.deepseek.com/v1",
		RequestOptions: []option.RequestOption{transport.Option()},
	}, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return s
}

func TestOpenAISummarizerSummarize(t *testing.T) {
	transport := &llmtest.Transport{Body: llmtest.ChatCompletionJSON("  Fed holds rates at 5.25%.  ")}
	s := newTestSummarizer(t, transport)

	summary, err := s.Summarize(context.Background(), Input{
		Text:      " The Fed kept rates unchanged today at 5.25%. ",
		Author:    " @federalreserve ",
		SourceURL: "https://x.com/example/status/1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "Fed holds rates at 5.25%." {
		t.Fatalf("unexpected summary: %q", summary)
	}

	reqs := transport.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if !strings.HasPrefix(reqs[0].URL, "https://api.deepseek.com/v1/chat/completions") {
		t.Fatalf("unexpected request URL: %s", reqs[0].URL)
	}
	if got := reqs[0].Header.Get("X-Title"); got != "" {
		t.Fatalf("expected no OpenRouter headers, got X-Title %q", got)
	}

	messages, _ := reqs[0].Body["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(messages))
	}
	user, _ := messages[1].(map[string]any)
	content, _ := user["content"].(string)
	if !strings.Contains(content, "Source:\nhttps://x.com/example/status/1") {
		t.Fatalf("expected source URL in prompt, got %q", content)
	}
	if !strings.HasPrefix(content, "Author: @federalreserve\n") {
		t.Fatalf("expected normalized author in prompt, got %q", content)
	}
}

func TestOpenAISummarizerSummarizeErrors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		transport := &llmtest.Transport{Body: llmtest.ChatCompletionJSON("unused")}
		s := newTestSummarizer(t, transport)

		if _, err := s.Summarize(context.Background(), Input{Text: "   "}); err == nil {
			t.Fatalf("expected error for empty input")
		}
		if len(transport.Requests()) != 0 {
			t.Fatalf("expected no request for empty input")
		}
	})

	t.Run("no choices", func(t *testing.T) {
		s := newTestSummarizer(t, &llmtest.Transport{Body: llmtest.ChatCompletionJSON()})

		if _, err := s.Summarize(context.Background(), Input{Text: "hello"}); err == nil {
			t.Fatalf("expected error for response without choices")
		}
	})

	t.Run("blank output", func(t *testing.T) {
		s := newTestSummarizer(t, &llmtest.Transport{Body: llmtest.ChatCompletionJSON("  ")})

		if _, err := s.Summarize(context.Background(), Input{Text: "hello"}); err == nil {
			t.Fatalf("expected error for blank output")
		}
	})

	t.Run("http error", func(t *testing.T) {
		s := newTestSummarizer(t, &llmtest.Transport{
			Status: http.StatusUnauthorized,
			Body:   `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`,
		})

		if _, err := s.Summarize(context.Background(), Input{Text: "hello"}); err == nil {
			t.Fatalf("expected error for unauthorized response")
		}
	})
}

package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tweetdigest/internal/llm"

	"github.com/openai/openai-go/v3"
)

const (
	TestPrompt = "这是一次连通性测试。请简单回复：已收到。"

	maxTokens   int64   = 30
	temperature float64 = 0
)

var (
	ErrClientUnavailable = errors.New("OpenAI client is unavailable")
	ErrMissingAPIKey     = errors.New("API key is missing")
)

// ClientFactory builds a chat client for a resolved base URL and key.
type ClientFactory func(baseURL, apiKey string) (llm.ChatCompleter, error)

// Request carries the configured values. Blank Model and BaseURL get defaults.
type Request struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Prober sends a single test chat completion.
type Prober struct {
	newClient ClientFactory
	log       *slog.Logger
}

// New returns a Prober. A nil newClient makes every call fail with
// ErrClientUnavailable.
func New(newClient ClientFactory, log *slog.Logger) *Prober {
	return &Prober{
		newClient: newClient,
		log:       log,
	}
}

// SendTestMessage returns the trimmed content of the first choice, or "" when
// the response has none.
func (p *Prober) SendTestMessage(ctx context.Context, req Request) (string, error) {
	if p.newClient == nil {
		return "", ErrClientUnavailable
	}

	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	model := llm.ResolveModel(req.Model)
	baseURL := llm.ResolveBaseURL(req.BaseURL)
	headerOpts := llm.HeaderOptions(baseURL)

	client, err := p.newClient(baseURL, apiKey)
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	p.log.DebugContext(ctx, "Sending test message",
		"model", model,
		"baseURL", baseURL,
		"extraHeaders", len(headerOpts))

	resp, err := client.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(TestPrompt),
		},
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(temperature),
	}, headerOpts...)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		p.log.WarnContext(ctx, "Test response has no choices",
			"model", model,
			"baseURL", baseURL)

		return "", nil
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"tweetdigest/internal/llm"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	maxOutputTokens int64 = 512

	systemPrompt = `Summarize the tweet in one ultra-short sentence.

Rules:
- ≤30 words (hard limit 50).
- Keep only the core claim and critical context (dates, numbers, names, tickers).
- Neutral tone, no hashtags, mentions or emojis unless essential.
- Output exactly one line in the same language as the input.`
)

// OpenAIConfig configures an OpenAI-compatible summarizer. Blank Model and
// BaseURL fall back to llm.DefaultModel and llm.DefaultBaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// RequestOptions are appended to the client options.
	RequestOptions []option.RequestOption
}

// OpenAISummarizer calls a Chat Completions endpoint to produce summaries.
type OpenAISummarizer struct {
	client  llm.ChatCompleter
	model   string
	baseURL string
}

// NewOpenAISummarizer validates cfg and builds a summarizer. It does not
// touch the network.
func NewOpenAISummarizer(
	ctx context.Context,
	cfg OpenAIConfig,
	log *slog.Logger,
) (*OpenAISummarizer, error) {
	if strings.IndexFunc(strings.TrimSpace(cfg.Model), unicode.IsSpace) >= 0 {
		return nil, fmt.Errorf("model %q contains whitespace", cfg.Model)
	}

	if err := llm.ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("validate base URL: %w", err)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	model := llm.ResolveModel(cfg.Model)
	baseURL := llm.ResolveBaseURL(cfg.BaseURL)
	provider := llm.Provider(baseURL)

	if apiKey == "" {
		log.WarnContext(ctx, "API key is missing so summarize requests will fail",
			"model", model,
			"baseURL", baseURL)
	}

	opts := append(llm.HeaderOptions(baseURL), cfg.RequestOptions...)

	client, err := llm.NewChatClient(baseURL, apiKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	log.InfoContext(ctx, "OpenAI summarizer is initialized",
		"provider", provider,
		"model", model,
		"baseURL", baseURL)

	return &OpenAISummarizer{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

func (s *OpenAISummarizer) Model() string {
	return s.model
}

func (s *OpenAISummarizer) BaseURL() string {
	return s.baseURL
}

// Summarize produces a single summary suitable for a digest.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", errors.New("input is empty")
	}

	userPromptBuilder := strings.Builder{}
	if author := strings.TrimPrefix(strings.TrimSpace(input.Author), "@"); author != "" {
		userPromptBuilder.WriteString("Author: @")
		userPromptBuilder.WriteString(author)
		userPromptBuilder.WriteString("\n")
	}
	if sourceURL := strings.TrimSpace(input.SourceURL); sourceURL != "" {
		userPromptBuilder.WriteString("Source:\n")
		userPromptBuilder.WriteString(sourceURL)
		userPromptBuilder.WriteString("\n")
	}
	userPromptBuilder.WriteString("Content:\n")
	userPromptBuilder.WriteString(text)

	resp, err := s.client.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPromptBuilder.String()),
		},
		MaxTokens: openai.Int(maxOutputTokens),
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("response has no choices")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf(
			"output text is missing (finishReason = %s)",
			resp.Choices[0].FinishReason,
		)
	}
	return summary, nil
}

// Package llm holds the provider rules shared by every OpenAI-compatible
// caller: default model and endpoint, OpenRouter identification headers and
// the chat client constructor.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultModel   = "deepseek-chat"
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	ProviderOpenRouter       = "openrouter"
	ProviderOpenAICompatible = "openai-compatible"

	openRouterDomain  = "openrouter.ai"
	openRouterReferer = "https://github.com/anthropics/claude-code"
	openRouterTitle   = "X-Tweet-Analysis-System"
)

// ChatCompleter is the part of the OpenAI client used here.
// *openai.ChatCompletionService satisfies it.
type ChatCompleter interface {
	New(
		ctx context.Context,
		body openai.ChatCompletionNewParams,
		opts ...option.RequestOption,
	) (*openai.ChatCompletion, error)
}

func ResolveModel(model string) string {
	if model = strings.TrimSpace(model); model != "" {
		return model
	}
	return DefaultModel
}

func ResolveBaseURL(baseURL string) string {
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		return baseURL
	}
	return DefaultBaseURL
}

// Provider names the routing service behind baseURL.
func Provider(baseURL string) string {
	if strings.Contains(baseURL, openRouterDomain) {
		return ProviderOpenRouter
	}
	return ProviderOpenAICompatible
}

// ExtraHeaders returns the identification headers OpenRouter expects, or nil
// for any other endpoint.
func ExtraHeaders(baseURL string) map[string]string {
	if Provider(baseURL) != ProviderOpenRouter {
		return nil
	}

	return map[string]string{
		"HTTP-Referer": openRouterReferer,
		"X-Title":      openRouterTitle,
	}
}

func HeaderOptions(baseURL string) []option.RequestOption {
	headers := ExtraHeaders(baseURL)
	if len(headers) == 0 {
		return nil
	}

	opts := make([]option.RequestOption, 0, len(headers))
	for key, value := range headers {
		opts = append(opts, option.WithHeader(key, value))
	}

	return opts
}

// ValidateBaseURL accepts a blank value or an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse base URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https (got %q)", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("base URL host is empty")
	}

	return nil
}

// NewChatClient builds a client for baseURL without automatic retries.
func NewChatClient(
	baseURL string,
	apiKey string,
	opts ...option.RequestOption,
) (ChatCompleter, error) {
	if err := ValidateBaseURL(baseURL); err != nil {
		return nil, err
	}

	clientOpts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	clientOpts = append(clientOpts, opts...)

	client := openai.NewClient(clientOpts...)

	return &client.Chat.Completions, nil
}

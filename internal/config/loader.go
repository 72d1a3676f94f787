package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"
)

const (
	KeyAPIKey  = "llm.api_key"
	KeyModel   = "llm.model"
	KeyBaseURL = "llm.base_url"
)

type llmEnv struct {
	APIKey           string `env:"LLM_API_KEY"`
	DeepSeekAPIKey   string `env:"DEEPSEEK_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	Model            string `env:"LLM_MODEL"`
	BaseURL          string `env:"LLM_BASE_URL"`
}

// Settings is the resolved LLM configuration. Blank fields are unset.
type Settings struct {
	APIKey  string
	Model   string
	BaseURL string
}

type LoaderOptions struct {
	EnvFile    string
	ConfigFile string
	// Environ replaces os.Environ when non-nil.
	Environ map[string]string
}

type envValue struct {
	name  string
	value string
}

// Loader resolves dotted keys from the environment first and config.json second.
type Loader struct {
	environ    map[string]string
	overrides  map[string][]envValue
	file       []byte
	configFile string
}

func NewLoader(ctx context.Context, log *slog.Logger, opts LoaderOptions) (*Loader, error) {
	environ := opts.Environ
	if environ == nil {
		environ = processEnviron()
	}

	merged := mergeEnvFile(ctx, log, opts.EnvFile, environ)

	parsed, err := env.ParseAsWithOptions[llmEnv](env.Options{Environment: merged})
	if err != nil {
		return nil, fmt.Errorf("parse LLM env: %w", err)
	}

	overrides := map[string][]envValue{
		// Alias order decides which key wins when several are set.
		KeyAPIKey: {
			{"LLM_API_KEY", parsed.APIKey},
			{"DEEPSEEK_API_KEY", parsed.DeepSeekAPIKey},
			{"OPENROUTER_API_KEY", parsed.OpenRouterAPIKey},
			{"OPENAI_API_KEY", parsed.OpenAIAPIKey},
		},
		KeyModel:   {{"LLM_MODEL", parsed.Model}},
		KeyBaseURL: {{"LLM_BASE_URL", parsed.BaseURL}},
	}

	l := &Loader{
		environ:    merged,
		overrides:  overrides,
		file:       readConfigFile(ctx, log, opts.ConfigFile),
		configFile: strings.TrimSpace(opts.ConfigFile),
	}

	return l, nil
}

// Get returns the value for a dotted key or "" when no source defines it.
// Dots separate levels; every other character of a segment is literal.
func (l *Loader) Get(key string) string {
	value, _ := l.lookup(key)
	return value
}

// Source reports where Get found the value for key.
func (l *Loader) Source(key string) string {
	_, source := l.lookup(key)
	return source
}

// Settings resolves the three LLM keys once.
func (l *Loader) Settings() Settings {
	return Settings{
		APIKey:  l.Get(KeyAPIKey),
		Model:   l.Get(KeyModel),
		BaseURL: l.Get(KeyBaseURL),
	}
}

func (l *Loader) lookup(key string) (string, string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ""
	}

	candidates, ok := l.overrides[key]
	if !ok {
		name := envName(key)
		candidates = []envValue{{name, l.environ[name]}}
	}

	for _, c := range candidates {
		if v := strings.TrimSpace(c.value); v != "" {
			return v, "env:" + c.name
		}
	}

	if len(l.file) == 0 {
		return "", ""
	}

	res := gjson.GetBytes(l.file, filePath(key))
	if !res.Exists() {
		return "", ""
	}

	if v := strings.TrimSpace(res.String()); v != "" {
		return v, "file:" + l.configFile
	}

	return "", ""
}

// filePath escapes each segment so gjson wildcards and modifiers match literally.
func filePath(key string) string {
	segments := strings.Split(key, ".")
	for i, segment := range segments {
		segments[i] = gjson.Escape(segment)
	}
	return strings.Join(segments, ".")
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func processEnviron() map[string]string {
	environ := make(map[string]string)

	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		environ[name] = value
	}

	return environ
}

func mergeEnvFile(
	ctx context.Context,
	log *slog.Logger,
	path string,
	environ map[string]string,
) map[string]string {
	merged := make(map[string]string, len(environ))

	path = strings.TrimSpace(path)
	if path != "" {
		fileEnv, err := godotenv.Read(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.DebugContext(ctx, "Env file is missing",
				"envFile", path)
		case err != nil:
			log.WarnContext(ctx, "Failed to read env file so it will be ignored",
				"error", err,
				"envFile", path)
		default:
			for name, value := range fileEnv {
				merged[name] = value
			}
			log.InfoContext(ctx, "Env file is loaded",
				"envFile", path,
				"varCount", len(fileEnv))
		}
	}

	for name, value := range environ {
		merged[name] = value
	}

	return merged
}

func readConfigFile(ctx context.Context, log *slog.Logger, path string) []byte {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.DebugContext(ctx, "Config file is missing",
				"configFile", path)
		} else {
			log.WarnContext(ctx, "Failed to read config file so it will be ignored",
				"error", err,
				"configFile", path)
		}

		return nil
	}

	if !gjson.ValidBytes(data) {
		log.WarnContext(ctx, "Config file is not valid JSON so it will be ignored",
			"configFile", path)

		return nil
	}

	log.InfoContext(ctx, "Config file is loaded",
		"configFile", path)

	return data
}

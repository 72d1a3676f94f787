package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"tweetdigest/internal/config"
	"tweetdigest/internal/llm"
	"tweetdigest/internal/probe"
	"tweetdigest/internal/report"
	"tweetdigest/internal/selfcheck"
	"tweetdigest/internal/summarizer"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)

		return
	}

	// Stdout carries the report, so logs go to stderr.
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	start := time.Now()
	ctx := context.Background()

	outcome := run(ctx, log, config.LoaderOptions{
		EnvFile:    cfg.EnvFile,
		ConfigFile: cfg.ConfigFile,
	}, newChatClient, os.Stdout)

	log.InfoContext(ctx, "Self-check is finished",
		"summarizerOK", outcome.SummarizerErr == nil,
		"probeAttempted", outcome.ProbeAttempted,
		"probeOK", outcome.ProbeAttempted && outcome.ProbeErr == nil,
		"elapsedSeconds", time.Since(start).Seconds())
}

// run resolves the LLM settings and writes the check report to stdout.
// Config problems are logged and the checks run with whatever resolved.
func run(
	ctx context.Context,
	log *slog.Logger,
	opts config.LoaderOptions,
	newClient probe.ClientFactory,
	stdout io.Writer,
) selfcheck.Outcome {
	var settings config.Settings

	loader, err := config.NewLoader(ctx, log, opts)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load LLM config so checks run without it",
			"error", err,
			"envFile", opts.EnvFile,
			"configFile", opts.ConfigFile)
	} else {
		settings = loader.Settings()
		log.InfoContext(ctx, "LLM config is resolved",
			"apiKeySource", loader.Source(config.KeyAPIKey),
			"modelSource", loader.Source(config.KeyModel),
			"baseURLSource", loader.Source(config.KeyBaseURL))
	}

	checker := selfcheck.New(
		settings,
		newSummarizer(log),
		probe.New(newClient, log),
		report.New(stdout),
		log,
	)

	return checker.Run(ctx)
}

func newSummarizer(log *slog.Logger) selfcheck.SummarizerFactory {
	return func(ctx context.Context, cfg summarizer.OpenAIConfig) (summarizer.Summarizer, error) {
		s, err := summarizer.NewOpenAISummarizer(ctx, cfg, log)
		if err != nil {
			return nil, err
		}

		return s, nil
	}
}

func newChatClient(baseURL, apiKey string) (llm.ChatCompleter, error) {
	return llm.NewChatClient(baseURL, apiKey)
}

// Package selfcheck runs the LLM configuration check stages in order and
// decides, per stage, whether a failure stops the run.
package selfcheck

import (
	"context"
	"errors"
	"log/slog"

	"tweetdigest/internal/config"
	"tweetdigest/internal/probe"
	"tweetdigest/internal/report"
	"tweetdigest/internal/summarizer"
)

// SummarizerFactory constructs the summarizer without sending requests.
type SummarizerFactory func(ctx context.Context, cfg summarizer.OpenAIConfig) (summarizer.Summarizer, error)

// Sender performs the connectivity round-trip.
type Sender interface {
	SendTestMessage(ctx context.Context, req probe.Request) (string, error)
}

// Outcome records what each stage did.
type Outcome struct {
	SummarizerErr  error
	ProbeAttempted bool
	Reply          string
	ProbeErr       error
}

type Checker struct {
	settings      config.Settings
	newSummarizer SummarizerFactory
	sender        Sender
	reporter      *report.Reporter
	log           *slog.Logger
}

func New(
	settings config.Settings,
	newSummarizer SummarizerFactory,
	sender Sender,
	reporter *report.Reporter,
	log *slog.Logger,
) *Checker {
	return &Checker{
		settings:      settings,
		newSummarizer: newSummarizer,
		sender:        sender,
		reporter:      reporter,
		log:           log,
	}
}

// Run never fails: every stage error is reported and captured in Outcome.
// Suggested next steps are printed in all cases.
func (c *Checker) Run(ctx context.Context) Outcome {
	var out Outcome
	defer c.reporter.NextSteps()

	c.reporter.Settings(c.settings)

	c.reporter.SummarizerStarted()
	if _, err := c.newSummarizer(ctx, summarizer.OpenAIConfig{
		APIKey:  c.settings.APIKey,
		Model:   c.settings.Model,
		BaseURL: c.settings.BaseURL,
	}); err != nil {
		c.log.ErrorContext(ctx, "Failed to initialize summarizer",
			"error", err)
		c.reporter.SummarizerFailed(err)
		out.SummarizerErr = err

		return out
	}
	c.reporter.SummarizerReady()

	c.reporter.ProbeStarted()
	out.ProbeAttempted = true

	reply, err := c.sender.SendTestMessage(ctx, probe.Request{
		APIKey:  c.settings.APIKey,
		Model:   c.settings.Model,
		BaseURL: c.settings.BaseURL,
	})
	out.Reply = reply
	out.ProbeErr = err

	switch {
	case err == nil:
		c.log.InfoContext(ctx, "Test message is answered",
			"replyLength", len(reply))
		c.reporter.ProbeSucceeded(reply)
	case errors.Is(err, probe.ErrClientUnavailable):
		c.log.WarnContext(ctx, "Test message is skipped",
			"error", err)
		c.reporter.ClientUnavailable()
	case errors.Is(err, probe.ErrMissingAPIKey):
		c.log.WarnContext(ctx, "Test message is skipped",
			"error", err)
		c.reporter.MissingAPIKey()
	default:
		c.log.ErrorContext(ctx, "Failed to send test message",
			"error", err)
		c.reporter.ProbeFailed(err)
	}

	return out
}

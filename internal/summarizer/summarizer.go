package summarizer

import (
	"context"
)

// Input is one crawled tweet. Only Text is required.
type Input struct {
	Text string
	// Author is the account handle, with or without the leading "@".
	Author    string
	SourceURL string
}

// Summarizer turns a tweet into a one-line digest entry.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}

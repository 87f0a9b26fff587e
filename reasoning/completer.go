package reasoning

import (
	"context"
	"errors"

	"formreview-backend/models"
)

var (
	ErrMissingAPIKey   = errors.New("reasoning service api key not set")
	ErrEmptyTranscript = errors.New("transcript has no messages")
	ErrEmptyResponse   = errors.New("reasoning service returned empty content")
)

// Options bounds a single completion call
type Options struct {
	MaxTokens   int
	Temperature float32
}

// Completer sends role-tagged messages to a language model and returns its reply
type Completer interface {
	Complete(ctx context.Context, messages []models.ChatMessage, opts Options) (string, error)
}

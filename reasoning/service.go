package reasoning

import (
	"context"
	"fmt"

	"formreview-backend/models"
)

const validationPromptTemplate = `
You are an expert data validator. Given the field name and its value, determine if the value is appropriate for the field.

Respond in the following format:
- If the value is appropriate, respond with 'Valid'.
- If the value is not appropriate, respond with 'Invalid: [Reason]', where [Reason] is a brief explanation.

Field Name: %s
Field Value: %s

Is the field value appropriate for the field name?
`

var (
	// JudgeOptions keeps validity judgments short and deterministic
	JudgeOptions = Options{MaxTokens: 50, Temperature: 0}

	// ConverseOptions allows longer, more varied conversational replies
	ConverseOptions = Options{MaxTokens: 500, Temperature: 0.7}
)

// Service adapts a Completer to the two questions the backend asks
type Service struct {
	completer    Completer
	judgeOpts    Options
	converseOpts Options
}

// ServiceOption is a functional option for Service
type ServiceOption func(*Service)

// WithJudgeOptions overrides the validation call bounds
func WithJudgeOptions(opts Options) ServiceOption {
	return func(s *Service) {
		s.judgeOpts = opts
	}
}

// WithConverseOptions overrides the chat call bounds
func WithConverseOptions(opts Options) ServiceOption {
	return func(s *Service) {
		s.converseOpts = opts
	}
}

func NewService(completer Completer, opts ...ServiceOption) *Service {
	s := &Service{
		completer:    completer,
		judgeOpts:    JudgeOptions,
		converseOpts: ConverseOptions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidationPrompt renders the validity question for a field
func ValidationPrompt(field models.Field) string {
	return fmt.Sprintf(validationPromptTemplate, field.Name, field.Value)
}

// Judge asks whether the field's value suits its name
func (s *Service) Judge(ctx context.Context, field models.Field) (models.Verdict, error) {
	reply, err := s.completer.Complete(ctx, []models.ChatMessage{
		{Role: models.RoleUser, Content: ValidationPrompt(field)},
	}, s.judgeOpts)
	if err != nil {
		return models.Verdict{}, err
	}
	return ParseVerdict(reply), nil
}

// Converse continues a chat transcript and returns the assistant reply
func (s *Service) Converse(ctx context.Context, transcript []models.ChatMessage) (string, error) {
	if len(transcript) == 0 {
		return "", ErrEmptyTranscript
	}
	return s.completer.Complete(ctx, transcript, s.converseOpts)
}

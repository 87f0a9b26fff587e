package reasoning

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"formreview-backend/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiCompleter sends transcripts to Gemini through the genai SDK.
// The client is created on first use so a missing key only fails the calls.
type GeminiCompleter struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiCompleter(apiKey, model string) *GeminiCompleter {
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}
	return &GeminiCompleter{apiKey: apiKey, model: model}
}

func (c *GeminiCompleter) getClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	log.Println("Gemini client initialized")
	c.client = client
	return client, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, messages []models.ChatMessage, opts Options) (string, error) {
	if len(messages) == 0 {
		return "", ErrEmptyTranscript
	}

	client, err := c.getClient(ctx)
	if err != nil {
		return "", err
	}

	model := client.GenerativeModel(c.model)
	model.SetTemperature(opts.Temperature)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}

	system, history, last := splitTranscript(messages)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	var out strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out.WriteString(string(text))
			}
		}
	}

	result := strings.TrimSpace(out.String())
	if result == "" {
		return "", ErrEmptyResponse
	}
	return result, nil
}

// Close releases the underlying client
func (c *GeminiCompleter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// splitTranscript maps a transcript onto Gemini's system instruction, chat
// history and the message to send
func splitTranscript(messages []models.ChatMessage) (string, []*genai.Content, string) {
	var systemParts []string
	var history []*genai.Content

	for _, msg := range messages[:len(messages)-1] {
		switch msg.Role {
		case models.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case models.RoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}

	return strings.Join(systemParts, "\n\n"), history, messages[len(messages)-1].Content
}

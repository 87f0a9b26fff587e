package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"formreview-backend/models"
	"formreview-backend/session"
)

var (
	ErrSessionStoreNotSet = errors.New("session store not set")
	ErrConversantNotSet   = errors.New("reasoning service not set")
	ErrEmptyQuery         = errors.New("user query is empty")
	ErrEmptySession       = errors.New("session id is empty")
)

const systemPromptHeader = "You are a helpful assistant that answers questions about anomalies detected in a PDF form the user submitted. " +
	"Base your answers on the anomalies listed below."

// Conversant continues a chat transcript
type Conversant interface {
	Converse(ctx context.Context, transcript []models.ChatMessage) (string, error)
}

// KnowledgeBaseLoader reads the anomaly records chat sessions are grounded in
type KnowledgeBaseLoader interface {
	Load() ([]models.AnomalyRecord, error)
}

// HistoryRecorder records a new named chat of a user
type HistoryRecorder interface {
	Record(ctx context.Context, username, chatName string) error
}

// ChatService answers questions about detected anomalies, one transcript per session
type ChatService struct {
	store         session.Store
	conversant    Conversant
	knowledgeBase KnowledgeBaseLoader
	history       HistoryRecorder
	username      string
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithSessionStore sets the transcript store
func ChatWithSessionStore(store session.Store) ChatServiceOption {
	return func(s *ChatService) {
		s.store = store
	}
}

// ChatWithConversant sets the reasoning service
func ChatWithConversant(c Conversant) ChatServiceOption {
	return func(s *ChatService) {
		s.conversant = c
	}
}

// ChatWithKnowledgeBase sets the knowledge base loader
func ChatWithKnowledgeBase(kb KnowledgeBaseLoader) ChatServiceOption {
	return func(s *ChatService) {
		s.knowledgeBase = kb
	}
}

// ChatWithHistory records every new session as a chat of username
func ChatWithHistory(recorder HistoryRecorder, username string) ChatServiceOption {
	return func(s *ChatService) {
		s.history = recorder
		s.username = username
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Respond appends the user's query to the session transcript and returns the
// assistant reply. The first turn of a session inserts the knowledge base summary
// as the system message. Reasoning failures are returned as the reply text.
func (s *ChatService) Respond(ctx context.Context, sessionID, userQuery string) (string, error) {
	if s.store == nil {
		return "", ErrSessionStoreNotSet
	}
	if s.conversant == nil {
		return "", ErrConversantNotSet
	}
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrEmptySession
	}
	if strings.TrimSpace(userQuery) == "" {
		return "", ErrEmptyQuery
	}

	var reply string
	var firstTurn bool

	err := s.store.Update(ctx, sessionID, func(t *session.Transcript) error {
		firstTurn = !t.Seeded()

		t.Append(models.RoleUser, userQuery)
		if firstTurn {
			t.Seed(SystemMessage(s.loadKnowledgeBase()))
		}

		answer, err := s.conversant.Converse(ctx, t.Snapshot())
		if err != nil {
			log.Printf("Error answering session '%s': %v", sessionID, err)
			answer = fmt.Sprintf("An error occurred: %v", err)
		}

		t.Append(models.RoleAssistant, answer)
		reply = answer
		return nil
	})
	if err != nil {
		return "", err
	}

	if firstTurn && s.history != nil {
		if err := s.history.Record(ctx, s.username, sessionID); err != nil {
			log.Printf("Warning: Failed to record chat history for session '%s': %v", sessionID, err)
		}
	}

	return reply, nil
}

// Transcript returns a copy of a session's messages
func (s *ChatService) Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, bool) {
	if s.store == nil {
		return nil, false
	}
	return s.store.Get(ctx, sessionID)
}

// EndSession discards a session's transcript
func (s *ChatService) EndSession(ctx context.Context, sessionID string) {
	if s.store != nil {
		s.store.Delete(ctx, sessionID)
	}
}

func (s *ChatService) loadKnowledgeBase() []models.AnomalyRecord {
	if s.knowledgeBase == nil {
		return nil
	}
	records, err := s.knowledgeBase.Load()
	if err != nil {
		log.Printf("Warning: Failed to load knowledge base, continuing without it: %v", err)
		return nil
	}
	return records
}

// SystemMessage summarizes the knowledge base, one line per anomaly
func SystemMessage(records []models.AnomalyRecord) string {
	var b strings.Builder
	b.WriteString(systemPromptHeader)
	b.WriteString("\n\n")

	if len(records) == 0 {
		b.WriteString("No anomalies were detected in the document.")
		return b.String()
	}

	b.WriteString("Detected anomalies:\n")
	for i, r := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Field '%s' on page %d: %s", r.FieldName, r.PageNumber, r.Reason)
	}
	return b.String()
}

package session

import (
	"context"
	"errors"
	"sync"

	"formreview-backend/models"
)

var ErrEmptySessionID = errors.New("session id is empty")

// Transcript is the ordered conversation of one session
type Transcript struct {
	ID       string
	Messages []models.ChatMessage
}

// Seeded reports whether the system context message has been inserted
func (t *Transcript) Seeded() bool {
	return len(t.Messages) > 0 && t.Messages[0].Role == models.RoleSystem
}

// Append adds a message at the end of the transcript
func (t *Transcript) Append(role models.Role, content string) {
	t.Messages = append(t.Messages, models.ChatMessage{Role: role, Content: content})
}

// Seed inserts the system message at position 0, once
func (t *Transcript) Seed(content string) {
	if t.Seeded() {
		return
	}
	t.Messages = append([]models.ChatMessage{{Role: models.RoleSystem, Content: content}}, t.Messages...)
}

// Snapshot returns a copy of the messages
func (t *Transcript) Snapshot() []models.ChatMessage {
	out := make([]models.ChatMessage, len(t.Messages))
	copy(out, t.Messages)
	return out
}

// Store keeps transcripts keyed by session id
type Store interface {
	// Update runs fn with exclusive access to the session's transcript,
	// creating an empty transcript when the session is new
	Update(ctx context.Context, id string, fn func(t *Transcript) error) error

	// Get returns a copy of the session's messages
	Get(ctx context.Context, id string) ([]models.ChatMessage, bool)

	// Delete forgets a session
	Delete(ctx context.Context, id string)
}

type entry struct {
	mu         sync.Mutex
	transcript *Transcript
}

// MemoryStore is an in-process Store with one lock per session.
// Transcripts are lost when the process exits.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*entry)}
}

func (s *MemoryStore) entry(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		e = &entry{transcript: &Transcript{ID: id}}
		s.sessions[id] = e
	}
	return e
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(t *Transcript) error) error {
	if id == "" {
		return ErrEmptySessionID
	}

	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(e.transcript)
}

func (s *MemoryStore) Get(ctx context.Context, id string) ([]models.ChatMessage, bool) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transcript.Snapshot(), true
}

func (s *MemoryStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"formreview-backend/models"
	"formreview-backend/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConversant struct {
	mu          sync.Mutex
	err         error
	transcripts [][]models.ChatMessage
}

func (c *fakeConversant) Converse(ctx context.Context, transcript []models.ChatMessage) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcripts = append(c.transcripts, transcript)
	if c.err != nil {
		return "", c.err
	}
	return fmt.Sprintf("reply %d", len(transcript)), nil
}

type fakeKnowledgeBase struct {
	mu      sync.Mutex
	records []models.AnomalyRecord
	err     error
	loads   int
}

func (kb *fakeKnowledgeBase) Load() ([]models.AnomalyRecord, error) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.loads++
	return kb.records, kb.err
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []*models.HistoryEntry
	err     error
}

func (h *fakeHistory) Append(ctx context.Context, username, chatName string) (*models.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	entry := &models.HistoryEntry{ID: int64(len(h.entries) + 1), Username: username, ChatName: chatName}
	h.entries = append(h.entries, entry)
	return entry, nil
}

func (h *fakeHistory) ListByUsername(ctx context.Context, username string) ([]*models.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	var out []*models.HistoryEntry
	for _, e := range h.entries {
		if e.Username == username {
			out = append(out, e)
		}
	}
	return out, nil
}

func roles(msgs []models.ChatMessage) []models.Role {
	out := make([]models.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

func TestRespondSeedsSystemMessageOnce(t *testing.T) {
	ctx := context.Background()
	kb := &fakeKnowledgeBase{records: []models.AnomalyRecord{
		{FieldName: "Signature", Reason: "missing signature", PageNumber: 1},
		{FieldName: "Date", Reason: "not a date", PageNumber: 2},
	}}
	conversant := &fakeConversant{}
	svc := NewChatService(
		ChatWithSessionStore(session.NewMemoryStore()),
		ChatWithConversant(conversant),
		ChatWithKnowledgeBase(kb),
	)

	reply, err := svc.Respond(ctx, "s1", "What is wrong?")
	require.NoError(t, err)
	assert.Equal(t, "reply 2", reply)

	msgs, ok := svc.Transcript(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, []models.Role{models.RoleSystem, models.RoleUser, models.RoleAssistant}, roles(msgs))
	assert.Contains(t, msgs[0].Content, "Field 'Signature' on page 1: missing signature")
	assert.Contains(t, msgs[0].Content, "Field 'Date' on page 2: not a date")

	_, err = svc.Respond(ctx, "s1", "And the date?")
	require.NoError(t, err)

	msgs, _ = svc.Transcript(ctx, "s1")
	assert.Equal(t, []models.Role{
		models.RoleSystem, models.RoleUser, models.RoleAssistant, models.RoleUser, models.RoleAssistant,
	}, roles(msgs))
	assert.Equal(t, 1, kb.loads, "knowledge base is read on the first turn only")

	// the full transcript is sent on every turn
	require.Len(t, conversant.transcripts, 2)
	assert.Len(t, conversant.transcripts[1], 4)
}

func TestRespondMissingKnowledgeBaseIsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := NewChatService(
		ChatWithSessionStore(session.NewMemoryStore()),
		ChatWithConversant(&fakeConversant{}),
		ChatWithKnowledgeBase(&fakeKnowledgeBase{err: errors.New("corrupt")}),
	)

	_, err := svc.Respond(ctx, "s1", "hi")
	require.NoError(t, err)

	msgs, _ := svc.Transcript(ctx, "s1")
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0].Content, "No anomalies were detected")
}

func TestRespondConverseFailureBecomesReply(t *testing.T) {
	ctx := context.Background()
	conversant := &fakeConversant{err: errors.New("service unavailable")}
	svc := NewChatService(
		ChatWithSessionStore(session.NewMemoryStore()),
		ChatWithConversant(conversant),
		ChatWithKnowledgeBase(&fakeKnowledgeBase{}),
	)

	reply, err := svc.Respond(ctx, "s1", "hi")
	require.NoError(t, err)
	assert.Contains(t, reply, "service unavailable")

	msgs, _ := svc.Transcript(ctx, "s1")
	require.Len(t, msgs, 3)
	assert.Equal(t, reply, msgs[2].Content)

	// the error reply is context for the next turn
	conversant.err = nil
	_, err = svc.Respond(ctx, "s1", "again")
	require.NoError(t, err)
	assert.Equal(t, reply, conversant.transcripts[1][2].Content)
}

func TestRespondValidatesInput(t *testing.T) {
	svc := NewChatService(
		ChatWithSessionStore(session.NewMemoryStore()),
		ChatWithConversant(&fakeConversant{}),
	)

	_, err := svc.Respond(context.Background(), "", "hi")
	assert.ErrorIs(t, err, ErrEmptySession)

	_, err = svc.Respond(context.Background(), "s1", "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = NewChatService().Respond(context.Background(), "s1", "hi")
	assert.ErrorIs(t, err, ErrSessionStoreNotSet)
}

func TestRespondRecordsHistoryOnFirstTurn(t *testing.T) {
	ctx := context.Background()
	history := &fakeHistory{}
	svc := NewChatService(
		ChatWithSessionStore(session.NewMemoryStore()),
		ChatWithConversant(&fakeConversant{}),
		ChatWithHistory(NewHistoryService(history), "test_user"),
	)

	_, err := svc.Respond(ctx, "s1", "one")
	require.NoError(t, err)
	_, err = svc.Respond(ctx, "s1", "two")
	require.NoError(t, err)
	_, err = svc.Respond(ctx, "s2", "three")
	require.NoError(t, err)

	entries, err := NewHistoryService(history).List(ctx, "test_user")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "s1", entries[0].ChatName)
	assert.Equal(t, "s2", entries[1].ChatName)

	// a failing history store never fails the chat
	history.err = errors.New("db down")
	_, err = svc.Respond(ctx, "s3", "four")
	assert.NoError(t, err)
}

func TestRespondConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	kb := &fakeKnowledgeBase{}
	svc := NewChatService(
		ChatWithSessionStore(session.NewMemoryStore()),
		ChatWithConversant(&fakeConversant{}),
		ChatWithKnowledgeBase(kb),
	)

	const sessions, turns = 4, 10
	var wg sync.WaitGroup
	for s := 0; s < sessions; s++ {
		for i := 0; i < turns; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := svc.Respond(ctx, id, "question")
				assert.NoError(t, err)
			}(fmt.Sprintf("s%d", s))
		}
	}
	wg.Wait()

	for s := 0; s < sessions; s++ {
		msgs, ok := svc.Transcript(ctx, fmt.Sprintf("s%d", s))
		require.True(t, ok)
		require.Len(t, msgs, 1+turns*2)
		assert.Equal(t, models.RoleSystem, msgs[0].Role)
		for i := 1; i < len(msgs); i += 2 {
			assert.Equal(t, models.RoleUser, msgs[i].Role)
			assert.Equal(t, models.RoleAssistant, msgs[i+1].Role)
			// each reply saw exactly the transcript before it, so no turn interleaved
			assert.Equal(t, fmt.Sprintf("reply %d", i+1), msgs[i+1].Content)
		}
	}
	assert.Equal(t, sessions, kb.loads, "one knowledge base read per session")

	svc.EndSession(ctx, "s0")
	_, ok := svc.Transcript(ctx, "s0")
	assert.False(t, ok)
}

func TestSystemMessage(t *testing.T) {
	msg := SystemMessage([]models.AnomalyRecord{{FieldName: "Signature", Reason: "missing signature", PageNumber: 1}})
	assert.Contains(t, msg, "Field 'Signature' on page 1: missing signature")

	assert.Contains(t, SystemMessage(nil), "No anomalies were detected")
}

func TestHistoryServiceWithoutStore(t *testing.T) {
	_, err := NewHistoryService(nil).List(context.Background(), "u")
	assert.ErrorIs(t, err, ErrHistoryStoreNotSet)
}

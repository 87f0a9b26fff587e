package service

import (
	"context"
	"errors"

	"formreview-backend/models"
)

var ErrHistoryStoreNotSet = errors.New("history store not set")

// HistoryStore is the append/query log of named chats
type HistoryStore interface {
	Append(ctx context.Context, username, chatName string) (*models.HistoryEntry, error)
	ListByUsername(ctx context.Context, username string) ([]*models.HistoryEntry, error)
}

// HistoryService handles chat history of users
type HistoryService struct {
	store HistoryStore
}

// NewHistoryService creates a new history service
func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns the chats of username in insertion order
func (s *HistoryService) List(ctx context.Context, username string) ([]*models.HistoryEntry, error) {
	if s.store == nil {
		return nil, ErrHistoryStoreNotSet
	}
	return s.store.ListByUsername(ctx, username)
}

// Record appends a named chat for username
func (s *HistoryService) Record(ctx context.Context, username, chatName string) error {
	if s.store == nil {
		return ErrHistoryStoreNotSet
	}
	_, err := s.store.Append(ctx, username, chatName)
	return err
}

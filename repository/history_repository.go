package repository

import (
	"context"
	"errors"

	"formreview-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDatabaseUnavailable is returned when no connection pool could be created
var ErrDatabaseUnavailable = errors.New("database unavailable")

// HistoryRepository handles database operations for chat history
type HistoryRepository struct {
	db *pgxpool.Pool
}

// NewHistoryRepository creates a new history repository. A nil pool is allowed;
// every call then fails with ErrDatabaseUnavailable.
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append records a named chat for a user
func (r *HistoryRepository) Append(ctx context.Context, username, chatName string) (*models.HistoryEntry, error) {
	if r.db == nil {
		return nil, ErrDatabaseUnavailable
	}

	entry := &models.HistoryEntry{
		Username: username,
		ChatName: chatName,
	}

	query := `
		INSERT INTO history (username, chat_name)
		VALUES ($1, $2)
		RETURNING id`

	if err := r.db.QueryRow(ctx, query, username, chatName).Scan(&entry.ID); err != nil {
		return nil, err
	}

	return entry, nil
}

// ListByUsername retrieves all chats of a user in insertion order
func (r *HistoryRepository) ListByUsername(ctx context.Context, username string) ([]*models.HistoryEntry, error) {
	if r.db == nil {
		return nil, ErrDatabaseUnavailable
	}

	query := `
		SELECT id, username, chat_name
		FROM history
		WHERE username = $1
		ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.HistoryEntry, 0)
	for rows.Next() {
		entry := &models.HistoryEntry{}
		if err := rows.Scan(&entry.ID, &entry.Username, &entry.ChatName); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

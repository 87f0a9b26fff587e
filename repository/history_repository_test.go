package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryRepositoryWithoutPool(t *testing.T) {
	repo := NewHistoryRepository(nil)

	_, err := repo.Append(context.Background(), "test_user", "General Chat")
	assert.ErrorIs(t, err, ErrDatabaseUnavailable)

	_, err = repo.ListByUsername(context.Background(), "test_user")
	assert.ErrorIs(t, err, ErrDatabaseUnavailable)
}

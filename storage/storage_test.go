package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	id := uuid.MustParse("3f2504e0-4f89-11d3-9a0c-0305e82c3301")

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"plain", "form.pdf", "3f/3f2504e0-4f89-11d3-9a0c-0305e82c3301_form.pdf"},
		{"spaces", "tax form.pdf", "3f/3f2504e0-4f89-11d3-9a0c-0305e82c3301_tax_form.pdf"},
		{"path stripped", "../../etc/passwd.pdf", "3f/3f2504e0-4f89-11d3-9a0c-0305e82c3301_passwd.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateKey(id, tt.filename))
		})
	}
}

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key := GenerateKey(uuid.New(), "doc.pdf")
	require.NoError(t, s.Upload(ctx, key, strings.NewReader("%PDF-1.4"), "application/pdf"))

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Download(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is not an error
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = s.Upload(context.Background(), "../outside.pdf", strings.NewReader("x"), "application/pdf")
	assert.Error(t, err)
}

func TestNewStorageUnknownType(t *testing.T) {
	_, err := NewStorage(StorageConfig{Type: "ftp"})
	assert.Error(t, err)

	_, err = NewStorage(StorageConfig{Type: StorageTypeS3})
	assert.Error(t, err)
}

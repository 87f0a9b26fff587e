package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"formreview-backend/models"
)

// KnowledgeBaseRepository persists the anomaly records of the most recently
// processed document as a JSON file
type KnowledgeBaseRepository struct {
	path string
	mu   sync.RWMutex
}

// NewKnowledgeBaseRepository creates a repository backed by the file at path
func NewKnowledgeBaseRepository(path string) *KnowledgeBaseRepository {
	return &KnowledgeBaseRepository{path: path}
}

// Path returns the location of the knowledge base file
func (r *KnowledgeBaseRepository) Path() string {
	return r.path
}

// Save replaces the knowledge base with records
func (r *KnowledgeBaseRepository) Save(records []models.AnomalyRecord) error {
	if records == nil {
		records = []models.AnomalyRecord{}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode knowledge base: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create knowledge base directory: %w", err)
	}

	// Write next to the target and rename so readers never see a partial file
	tmp, err := os.CreateTemp(dir, ".knowledge_base-*.json")
	if err != nil {
		return fmt.Errorf("failed to create knowledge base file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set knowledge base permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write knowledge base: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write knowledge base: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace knowledge base: %w", err)
	}

	return nil
}

// Load returns the stored records, or none when the file does not exist
func (r *KnowledgeBaseRepository) Load() ([]models.AnomalyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.AnomalyRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}

	var records []models.AnomalyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge base: %w", err)
	}
	if records == nil {
		records = []models.AnomalyRecord{}
	}
	return records, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"formreview-backend/document"
	"formreview-backend/models"
	"formreview-backend/storage"
)

var (
	ErrStorageNotSet       = errors.New("storage not set")
	ErrValidatorNotSet     = errors.New("field validator not set")
	ErrKnowledgeBaseNotSet = errors.New("knowledge base not set")
	ErrDocumentNotFound    = errors.New("document not found")
)

// KnowledgeBaseStore persists the anomaly records handed from validation to chat
type KnowledgeBaseStore interface {
	Save(records []models.AnomalyRecord) error
	Load() ([]models.AnomalyRecord, error)
}

// DocumentService runs the extract, validate, annotate and persist pipeline
type DocumentService struct {
	storage       storage.Storage
	validator     *FieldValidator
	knowledgeBase KnowledgeBaseStore
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// DocumentWithStorage sets the blob storage uploaded documents are read from
func DocumentWithStorage(s storage.Storage) DocumentServiceOption {
	return func(svc *DocumentService) {
		svc.storage = s
	}
}

// DocumentWithValidator sets the field validator
func DocumentWithValidator(v *FieldValidator) DocumentServiceOption {
	return func(svc *DocumentService) {
		svc.validator = v
	}
}

// DocumentWithKnowledgeBase sets the knowledge base store
func DocumentWithKnowledgeBase(kb KnowledgeBaseStore) DocumentServiceOption {
	return func(svc *DocumentService) {
		svc.knowledgeBase = kb
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessRequest represents a request to process a document
type ProcessRequest struct {
	Source     []byte
	OutputPath string
}

// ProcessResult represents the outcome of one pipeline run
type ProcessResult struct {
	Fields     []models.Field
	Anomalies  []models.Field
	Records    []models.AnomalyRecord
	OutputPath string
	Annotated  bool // false when the document had no fields
}

// Process runs the pipeline on an in-memory document. Stages run strictly in
// order on a single opened document; a document without fields stops after
// extraction with an empty knowledge base.
func (s *DocumentService) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	if s.validator == nil {
		return nil, ErrValidatorNotSet
	}
	if s.knowledgeBase == nil {
		return nil, ErrKnowledgeBaseNotSet
	}

	// 1. Open and extract
	doc, err := document.Open(req.Source)
	if err != nil {
		return nil, err
	}

	fields, err := doc.Fields()
	if err != nil {
		return nil, fmt.Errorf("failed to extract fields: %w", err)
	}

	result := &ProcessResult{
		Fields:     fields,
		Anomalies:  []models.Field{},
		Records:    []models.AnomalyRecord{},
		OutputPath: req.OutputPath,
	}

	if len(fields) == 0 {
		log.Println("No fields found in the PDF.")
		if err := s.knowledgeBase.Save(result.Records); err != nil {
			return nil, fmt.Errorf("failed to save knowledge base: %w", err)
		}
		return result, nil
	}

	// 2. Validate
	log.Printf("Found %d fields. Validating...", len(fields))
	validation := s.validator.Validate(ctx, fields)
	result.Anomalies = validation.Anomalies
	result.Records = validation.Records
	log.Printf("Detected %d anomalous fields.", len(result.Anomalies))

	// 3. Annotate on the same document
	if err := doc.Annotate(result.Anomalies, req.OutputPath); err != nil {
		return nil, err
	}
	result.Annotated = true
	log.Printf("Anomalies have been highlighted in '%s'.", req.OutputPath)

	// 4. Persist
	if err := s.knowledgeBase.Save(result.Records); err != nil {
		return nil, fmt.Errorf("failed to save knowledge base: %w", err)
	}

	for _, field := range result.Anomalies {
		log.Printf("Page %d, Field '%s': %s", field.PageNumber+1, field.Name, field.ReasonOr(document.NoReasonProvided))
	}

	return result, nil
}

// ProcessStored downloads a document from blob storage and processes it
func (s *DocumentService) ProcessStored(ctx context.Context, key, outputPath string) (*ProcessResult, error) {
	if s.storage == nil {
		return nil, ErrStorageNotSet
	}

	reader, err := s.storage.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, key)
		}
		return nil, fmt.Errorf("failed to download document: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return s.Process(ctx, ProcessRequest{Source: data, OutputPath: outputPath})
}

// ProcessFile processes a document from the local filesystem
func (s *DocumentService) ProcessFile(ctx context.Context, path, outputPath string) (*ProcessResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return s.Process(ctx, ProcessRequest{Source: data, OutputPath: outputPath})
}

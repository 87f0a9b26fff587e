package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"formreview-backend/document"
	"formreview-backend/service"
	"formreview-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userDocumentField        = "user_document"
	instructionDocumentField = "instruction_document"
	pdfContentType           = "application/pdf"
)

// DocumentHandler handles HTTP requests for uploading and processing PDF forms
type DocumentHandler struct {
	storage         storage.Storage
	documentService *service.DocumentService
	maxFileSize     int64
	outputDir       string
	defaultDocument string
	defaultOutput   string
}

// DocumentHandlerConfig holds the paths and limits of a DocumentHandler
type DocumentHandlerConfig struct {
	MaxFileSize         int64
	OutputDir           string
	DefaultDocumentPath string
	DefaultOutputPath   string
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(fileStorage storage.Storage, documentService *service.DocumentService, cfg DocumentHandlerConfig) *DocumentHandler {
	maxFileSize := cfg.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024 // 10MB
	}
	return &DocumentHandler{
		storage:         fileStorage,
		documentService: documentService,
		maxFileSize:     maxFileSize,
		outputDir:       cfg.OutputDir,
		defaultDocument: cfg.DefaultDocumentPath,
		defaultOutput:   cfg.DefaultOutputPath,
	}
}

type uploadedFile struct {
	filename string
	key      string
}

// UploadPDFs handles POST /upload_pdfs
func (h *DocumentHandler) UploadPDFs(c *gin.Context) {
	files, ok := h.receivePDFs(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully uploaded both PDF files.",
		"files":   []string{files[0].filename, files[1].filename},
	})
}

// ProcessPDF handles POST /process_pdf
func (h *DocumentHandler) ProcessPDF(c *gin.Context) {
	files, ok := h.receivePDFs(c)
	if !ok {
		return
	}
	userDocument := files[0]

	outputPath := filepath.Join(h.outputDir, fmt.Sprintf("%s_with_anomalies.pdf", uuid.New()))
	result, err := h.documentService.ProcessStored(c.Request.Context(), userDocument.key, outputPath)
	if err != nil {
		h.abortWithProcessingError(c, err)
		return
	}

	h.serveArtifact(c, result, outputName(userDocument.filename))
}

// GetProcessedDoc handles GET /get_processed_doc
func (h *DocumentHandler) GetProcessedDoc(c *gin.Context) {
	result, err := h.documentService.ProcessFile(c.Request.Context(), h.defaultDocument, h.defaultOutput)
	if err != nil {
		h.abortWithProcessingError(c, err)
		return
	}

	h.serveArtifact(c, result, filepath.Base(h.defaultOutput))
}

// receivePDFs validates both form parts before uploading either of them.
// The returned slice holds the user document first.
func (h *DocumentHandler) receivePDFs(c *gin.Context) ([]uploadedFile, bool) {
	userHeader, err := c.FormFile(userDocumentField)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "MISSING_FILE", "Both user_document and instruction_document are required")
		return nil, false
	}
	instructionHeader, err := c.FormFile(instructionDocumentField)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "MISSING_FILE", "Both user_document and instruction_document are required")
		return nil, false
	}

	headers := []*multipart.FileHeader{userHeader, instructionHeader}
	for _, fh := range headers {
		if !isPDF(fh) {
			abortWithError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Both files must be PDFs")
			return nil, false
		}
	}
	for _, fh := range headers {
		if fh.Size > h.maxFileSize {
			abortWithError(c, http.StatusBadRequest, "FILE_TOO_LARGE",
				fmt.Sprintf("File %s exceeds maximum of %d bytes", fh.Filename, h.maxFileSize))
			return nil, false
		}
	}

	uploaded := make([]uploadedFile, 0, len(headers))
	for _, fh := range headers {
		key, err := h.upload(c, fh)
		if err != nil {
			log.Printf("Error uploading %s: %v", fh.Filename, err)
			abortWithError(c, http.StatusInternalServerError, "UPLOAD_FAILED",
				fmt.Sprintf("Failed to upload %s: %v", fh.Filename, err))
			return nil, false
		}
		uploaded = append(uploaded, uploadedFile{filename: fh.Filename, key: key})
	}

	return uploaded, true
}

func (h *DocumentHandler) upload(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	key := storage.GenerateKey(uuid.New(), fh.Filename)
	if err := h.storage.Upload(c.Request.Context(), key, file, pdfContentType); err != nil {
		return "", err
	}
	return key, nil
}

func (h *DocumentHandler) abortWithProcessingError(c *gin.Context, err error) {
	var openErr *document.OpenError

	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "Document not found")
	case errors.As(err, &openErr):
		abortWithError(c, http.StatusUnprocessableEntity, "INVALID_DOCUMENT", err.Error())
	default:
		log.Printf("Error processing document: %v", err)
		abortWithError(c, http.StatusInternalServerError, "PROCESSING_FAILED", err.Error())
	}
}

// serveArtifact streams the annotated document, which is absent when the
// document had no fields
func (h *DocumentHandler) serveArtifact(c *gin.Context, result *service.ProcessResult, filename string) {
	if !result.Annotated {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "Processed file not found")
		return
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "Processed file not found")
		return
	}

	c.Header("Content-Type", pdfContentType)
	c.FileAttachment(result.OutputPath, filename)
}

func isPDF(fh *multipart.FileHeader) bool {
	mediaType, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	return err == nil && mediaType == pdfContentType
}

func outputName(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)] + "_with_anomalies.pdf"
}

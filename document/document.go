package document

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// Keep pdfcpu from creating a config directory under the user's home
	api.DisableConfigDir()
}

// OpenError reports a byte stream that could not be parsed as a PDF document
type OpenError struct {
	Err error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open document: %v", e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// WriteError reports an annotated document that could not be written
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write document %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Document is an opened PDF shared by extraction and annotation within one processing run
type Document struct {
	ctx *model.Context
}

// recoverMalformed turns a pdfcpu panic on a malformed object graph into an OpenError
func recoverMalformed(err *error) {
	if r := recover(); r != nil {
		*err = &OpenError{Err: fmt.Errorf("parser panic: %v", r)}
	}
}

// Open parses a PDF document from memory
func Open(data []byte) (doc *Document, err error) {
	defer func() {
		if err != nil {
			doc = nil
		}
	}()
	defer recoverMalformed(&err)

	if len(data) == 0 {
		return nil, &OpenError{Err: fmt.Errorf("empty document")}
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, &OpenError{Err: fmt.Errorf("failed to read PDF context: %w", err)}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &OpenError{Err: fmt.Errorf("failed to ensure page count: %w", err)}
	}

	return &Document{ctx: ctx}, nil
}

// OpenFile reads and parses a PDF document from disk
func OpenFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &OpenError{Err: err}
	}
	return Open(data)
}

// PageCount returns the number of pages in the document
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

package document

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"formreview-backend/document/documenttest"
	"formreview-backend/models"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("this is not a pdf")},
		{"truncated", []byte("%PDF-1.7\n1 0 obj\n<<")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Open(tt.data)
			assert.Nil(t, doc)
			var openErr *OpenError
			assert.True(t, errors.As(err, &openErr), "expected OpenError, got %v", err)
		})
	}
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.pdf"))
	var openErr *OpenError
	require.ErrorAs(t, err, &openErr)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFieldsInDocumentOrder(t *testing.T) {
	data := documenttest.FormPDF(
		[]documenttest.Widget{
			{Name: "Name", Value: " Alice ", Rect: [4]float64{100, 700, 300, 720}},
			{Name: "Signature", Rect: [4]float64{300, 120, 100, 100}},
		},
		nil,
		[]documenttest.Widget{
			{Name: "  ", Value: "42", Rect: [4]float64{50, 50, 80, 70}},
		},
	)

	doc, err := Open(data)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.PageCount())

	fields, err := doc.Fields()
	require.NoError(t, err)
	require.Len(t, fields, 3)

	assert.Equal(t, "Name", fields[0].Name)
	assert.Equal(t, "Alice", fields[0].Value)
	assert.Equal(t, 0, fields[0].PageNumber)
	assert.Equal(t, models.Rect{X0: 100, Y0: 700, X1: 300, Y1: 720}, fields[0].Position)
	assert.Nil(t, fields[0].Reason)

	assert.Equal(t, "Signature", fields[1].Name)
	assert.Equal(t, "", fields[1].Value)
	// corners given in reverse order are normalized
	assert.Equal(t, models.Rect{X0: 100, Y0: 100, X1: 300, Y1: 120}, fields[1].Position)

	assert.Equal(t, models.UnnamedField, fields[2].Name)
	assert.Equal(t, "42", fields[2].Value)
	assert.Equal(t, 2, fields[2].PageNumber)

	for _, f := range fields {
		assert.True(t, f.PageNumber >= 0 && f.PageNumber < doc.PageCount())
		assert.LessOrEqual(t, f.Position.X0, f.Position.X1)
		assert.LessOrEqual(t, f.Position.Y0, f.Position.Y1)
	}
}

func TestFieldsQualifiedNamesAndButtonStates(t *testing.T) {
	data := documenttest.FormPDF([]documenttest.Widget{
		{Parent: "applicant", Name: "name", Value: "Bob", Rect: [4]float64{10, 700, 200, 720}},
		{Parent: "employer", Name: "name", Value: "ACME", Rect: [4]float64{10, 600, 200, 620}},
		{Name: "agree", Value: "Off", Checkbox: true, Rect: [4]float64{10, 500, 22, 512}},
		{Name: "newsletter", Value: "Yes", Checkbox: true, Rect: [4]float64{10, 480, 22, 492}},
	})

	doc, err := Open(data)
	require.NoError(t, err)
	fields, err := doc.Fields()
	require.NoError(t, err)
	require.Len(t, fields, 4)

	got := make([][2]string, len(fields))
	for i, f := range fields {
		got[i] = [2]string{f.Name, f.Value}
	}
	assert.Equal(t, [][2]string{
		{"applicant.name", "Bob"},
		{"employer.name", "ACME"},
		{"agree", "Off"},
		{"newsletter", "Yes"},
	}, got)
}

func TestFieldsEmptyDocument(t *testing.T) {
	doc, err := Open(documenttest.FormPDF(nil, nil))
	require.NoError(t, err)

	fields, err := doc.Fields()
	require.NoError(t, err)
	assert.Empty(t, fields)
}

// annotationNotes reads back the decoded Contents of the Text annotations on page 1
func annotationNotes(t *testing.T, path string) ([]string, int) {
	t.Helper()
	written, err := os.ReadFile(path)
	require.NoError(t, err)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(bytes.NewReader(written), conf)
	require.NoError(t, err)
	require.NoError(t, ctx.EnsurePageCount())

	pageDict, _, _, err := ctx.PageDict(1, false)
	require.NoError(t, err)
	annotsObj, found := pageDict.Find("Annots")
	require.True(t, found)
	annots, err := ctx.DereferenceArray(annotsObj)
	require.NoError(t, err)

	var notes []string
	for _, obj := range annots {
		d, err := ctx.DereferenceDict(obj)
		require.NoError(t, err)
		if subtype, _ := d.Find("Subtype"); subtype == types.Name("Text") {
			contents, found := d.Find("Contents")
			require.True(t, found)
			s, err := ctx.DereferenceStringOrHexLiteral(contents, model.V10, nil)
			require.NoError(t, err)
			notes = append(notes, s)
		}
	}
	return notes, len(annots)
}

func TestAnnotateWritesNewArtifact(t *testing.T) {
	data := documenttest.FormPDF([]documenttest.Widget{
		{Name: "Name", Value: "Alice", Rect: [4]float64{100, 700, 300, 720}},
		{Name: "Signature", Rect: [4]float64{100, 100, 300, 120}},
	})
	original := append([]byte(nil), data...)

	doc, err := Open(data)
	require.NoError(t, err)
	fields, err := doc.Fields()
	require.NoError(t, err)

	signature := fields[1]
	signature.MarkInvalid("missing signature (required)")
	unexplained := fields[0]

	out := filepath.Join(t.TempDir(), "nested", "annotated.pdf")
	require.NoError(t, doc.Annotate([]models.Field{signature, unexplained}, out))

	assert.Equal(t, original, data, "source bytes must stay untouched")

	notes, count := annotationNotes(t, out)
	// two widgets plus a marker and a note per anomaly
	assert.Equal(t, 6, count)
	assert.Equal(t, []string{"missing signature (required)", NoReasonProvided}, notes)
}

func TestAnnotateNonASCIIReason(t *testing.T) {
	doc, err := Open(documenttest.FormPDF([]documenttest.Widget{
		{Name: "Size", Value: "big", Rect: [4]float64{10, 10, 60, 30}},
	}))
	require.NoError(t, err)
	fields, err := doc.Fields()
	require.NoError(t, err)
	require.Len(t, fields, 1)

	field := fields[0]
	field.MarkInvalid("Größe muss eine Zahl sein")

	out := filepath.Join(t.TempDir(), "annotated.pdf")
	require.NoError(t, doc.Annotate([]models.Field{field}, out))

	notes, _ := annotationNotes(t, out)
	assert.Equal(t, []string{"Größe muss eine Zahl sein"}, notes)
}

func TestAnnotateUnwritablePath(t *testing.T) {
	doc, err := Open(documenttest.FormPDF([]documenttest.Widget{
		{Name: "Name", Value: "Alice", Rect: [4]float64{0, 0, 10, 10}},
	}))
	require.NoError(t, err)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err = doc.Annotate(nil, filepath.Join(blocker, "out.pdf"))
	var writeErr *WriteError
	assert.ErrorAs(t, err, &writeErr)
}

func TestAnnotateRejectsPageOutOfRange(t *testing.T) {
	doc, err := Open(documenttest.FormPDF(nil))
	require.NoError(t, err)

	field := models.Field{Name: "Ghost", PageNumber: 3}
	err = doc.Annotate([]models.Field{field}, filepath.Join(t.TempDir(), "out.pdf"))
	assert.Error(t, err)
}

func TestMalformedGraphIsAnOpenError(t *testing.T) {
	doc := &Document{ctx: &model.Context{}}

	_, err := doc.Fields()
	var openErr *OpenError
	assert.ErrorAs(t, err, &openErr)

	err = doc.Annotate([]models.Field{{Name: "Name"}}, filepath.Join(t.TempDir(), "out.pdf"))
	assert.ErrorAs(t, err, &openErr)
}

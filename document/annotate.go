package document

import (
	"fmt"
	"os"
	"path/filepath"

	"formreview-backend/models"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	// NoReasonProvided is the note text for anomalies without a reason
	NoReasonProvided = "No reason provided."

	noteIconSize = 18.0
	markerWidth  = 1.0
	annotTitle   = "Anomaly"
	noteIcon     = "Comment"
)

// Annotate marks every anomalous field with a red outline and a note carrying its
// reason, then writes the document to outputPath. Anomalies are applied to this
// handle, so the page indices produced by Fields stay valid.
func (d *Document) Annotate(anomalies []models.Field, outputPath string) (err error) {
	defer recoverMalformed(&err)

	for i, field := range anomalies {
		if err := d.annotateField(i, field); err != nil {
			return err
		}
	}

	return d.write(outputPath)
}

func (d *Document) annotateField(seq int, field models.Field) error {
	pageNr := field.PageNumber + 1
	if field.PageNumber < 0 || pageNr > d.ctx.PageCount {
		return fmt.Errorf("field %q references page %d outside document of %d pages", field.Name, pageNr, d.ctx.PageCount)
	}

	r := field.Position
	reason := field.ReasonOr(NoReasonProvided)

	marker := model.NewSquareAnnotation(
		*types.NewRectangle(r.X0, r.Y0, r.X1, r.Y1),
		0,                              // apObjNr
		field.Name,                     // contents
		fmt.Sprintf("anomaly-%d", seq), // id
		"",                             // modDate
		model.AnnPrint,                 // f
		&color.Red,                     // col
		annotTitle,                     // title
		nil,                            // popupIndRef
		nil,                            // ca
		"",                             // rc
		"",                             // subject
		nil,                            // fillCol
		0, 0, 0, 0,                     // MLeft, MTop, MRight, MBot
		markerWidth,                    // borderWidth
		model.BSSolid,                  // borderStyle
		false,                          // cloudyBorder
		0,                              // cloudyBorderIntensity
	)

	note := model.NewTextAnnotation(
		*types.NewRectangle(r.X0, r.Y1, r.X0+noteIconSize, r.Y1+noteIconSize),
		0,                                   // apObjNr
		reason,                              // contents
		fmt.Sprintf("anomaly-%d-note", seq), // id
		"",                                  // modDate
		model.AnnPrint,                      // f
		&color.Red,                          // col
		annotTitle,                          // title
		nil,                                 // popupIndRef
		nil,                                 // ca
		"",                                  // rc
		"",                                  // subject
		0, 0, 0,                             // borderRadX, borderRadY, borderWidth
		false,                               // displayOpen
		noteIcon,                            // name
	)

	for _, ar := range []model.AnnotationRenderer{marker, note} {
		if _, _, err := pdfcpu.AddAnnotationToPage(d.ctx, pageNr, ar, false); err != nil {
			return fmt.Errorf("failed to annotate %q on page %d: %w", field.Name, pageNr, err)
		}
	}

	return nil
}

// write serializes the document to a new file at path
func (d *Document) write(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if err := api.WriteContext(d.ctx, file); err != nil {
		file.Close()
		os.Remove(path) // Clean up on error
		return &WriteError{Path: path, Err: err}
	}

	if err := file.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

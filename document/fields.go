package document

import (
	"fmt"
	"strings"

	"formreview-backend/models"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxParentDepth bounds the walk up the field hierarchy
const maxParentDepth = 32

// Fields enumerates the form widgets page by page in document order
func (d *Document) Fields() (fields []models.Field, err error) {
	defer recoverMalformed(&err)

	fields = make([]models.Field, 0)

	for pageNr := 1; pageNr <= d.ctx.PageCount; pageNr++ {
		pageDict, _, _, err := d.ctx.PageDict(pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", pageNr, err)
		}
		if pageDict == nil {
			continue
		}

		annotsObj, found := pageDict.Find("Annots")
		if !found {
			continue // Skip pages without annotations
		}

		annots, err := d.ctx.DereferenceArray(annotsObj)
		if err != nil {
			return nil, fmt.Errorf("failed to read annotations of page %d: %w", pageNr, err)
		}

		for _, annotObj := range annots {
			annotDict, err := d.ctx.DereferenceDict(annotObj)
			if err != nil || annotDict == nil {
				continue
			}
			if d.nameEntry(annotDict, "Subtype") != "Widget" {
				continue
			}
			fields = append(fields, d.widgetField(annotDict, pageNr-1))
		}
	}

	return fields, nil
}

// widgetField builds a Field from a widget annotation. The name is the fully
// qualified field name and the value is inherited from the nearest ancestor.
func (d *Document) widgetField(widget types.Dict, pageIndex int) models.Field {
	field := models.Field{
		Name:       models.UnnamedField,
		PageNumber: pageIndex,
		Position:   d.rect(widget),
	}

	if name := d.qualifiedName(widget); name != "" {
		field.Name = name
	}
	if value, ok := d.inheritedText(widget, "V"); ok {
		field.Value = strings.TrimSpace(value)
	}

	return field
}

// qualifiedName joins the partial names of the field and its parents with "."
func (d *Document) qualifiedName(widget types.Dict) string {
	var parts []string
	d.walkParents(widget, func(dict types.Dict) bool {
		if obj, found := dict.Find("T"); found {
			if name, ok := d.text(obj); ok && strings.TrimSpace(name) != "" {
				parts = append([]string{strings.TrimSpace(name)}, parts...)
			}
		}
		return true
	})
	return strings.Join(parts, ".")
}

// inheritedText looks up key on the dictionary and then on its parents
func (d *Document) inheritedText(dict types.Dict, key string) (text string, ok bool) {
	d.walkParents(dict, func(current types.Dict) bool {
		obj, found := current.Find(key)
		if !found {
			return true
		}
		text, ok = d.text(obj)
		return false
	})
	return text, ok
}

// walkParents calls fn on dict and each ancestor until fn returns false
func (d *Document) walkParents(dict types.Dict, fn func(types.Dict) bool) {
	current := dict
	for depth := 0; current != nil && depth < maxParentDepth; depth++ {
		if !fn(current) {
			return
		}

		parentObj, found := current.Find("Parent")
		if !found {
			return
		}
		parent, err := d.ctx.DereferenceDict(parentObj)
		if err != nil {
			return
		}
		current = parent
	}
}

// text decodes string, hex string, name and number objects. Button states such
// as an unchecked box's Off are names and are kept verbatim.
func (d *Document) text(obj types.Object) (string, bool) {
	if s, err := d.ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
		return s, true
	}

	resolved, err := d.ctx.Dereference(obj)
	if err != nil || resolved == nil {
		return "", false
	}
	switch v := resolved.(type) {
	case types.Name:
		return string(v), true
	case types.Integer:
		return fmt.Sprintf("%d", int(v)), true
	case types.Float:
		return fmt.Sprintf("%g", float64(v)), true
	}
	return "", false
}

func (d *Document) nameEntry(dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return ""
	}
	if name, ok := resolved.(types.Name); ok {
		return string(name)
	}
	return ""
}

// rect parses the Rect entry of an annotation
func (d *Document) rect(dict types.Dict) models.Rect {
	rectObj, found := dict.Find("Rect")
	if !found {
		return models.Rect{}
	}

	rectArray, err := d.ctx.DereferenceArray(rectObj)
	if err != nil || len(rectArray) != 4 {
		return models.Rect{}
	}

	coords := make([]float64, 4)
	for i, coord := range rectArray {
		if f, err := d.ctx.DereferenceNumber(coord); err == nil {
			coords[i] = f
		}
	}

	return models.NewRect(coords[0], coords[1], coords[2], coords[3])
}

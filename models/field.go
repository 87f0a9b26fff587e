package models

// UnnamedField is used when a widget has no usable name
const UnnamedField = "Unnamed Field"

// Rect is an axis-aligned rectangle in page coordinate space
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// NewRect builds a rectangle from two corners in any order
func NewRect(x0, y0, x1, y1 float64) Rect {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Field represents one fillable form widget on one page
type Field struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	PageNumber int     `json:"page_number"` // zero-based
	Position   Rect    `json:"position"`
	Reason     *string `json:"reason,omitempty"`
}

// MarkInvalid records why the field was judged invalid
func (f *Field) MarkInvalid(reason string) {
	f.Reason = &reason
}

// ReasonOr returns the stored reason or the fallback when none is set
func (f Field) ReasonOr(fallback string) string {
	if f.Reason == nil || *f.Reason == "" {
		return fallback
	}
	return *f.Reason
}

package models

// AnomalyRecord is the knowledge-base projection of an invalid field.
// PageNumber is 1-based, unlike Field.PageNumber.
type AnomalyRecord struct {
	FieldName  string `json:"field_name"`
	FieldValue string `json:"field_value"`
	Reason     string `json:"reason"`
	PageNumber int    `json:"page_number"`
}

// NewAnomalyRecord projects an invalid field into a knowledge-base record
func NewAnomalyRecord(f Field) AnomalyRecord {
	return AnomalyRecord{
		FieldName:  f.Name,
		FieldValue: f.Value,
		Reason:     f.ReasonOr(""),
		PageNumber: f.PageNumber + 1,
	}
}

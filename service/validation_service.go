package service

import (
	"context"
	"fmt"
	"log"

	"formreview-backend/models"
)

// ReasonNotUnderstood is recorded when the validator reply matches neither form
const ReasonNotUnderstood = "Validation response not understood."

// FieldJudge decides whether a field's value suits its name
type FieldJudge interface {
	Judge(ctx context.Context, field models.Field) (models.Verdict, error)
}

// ValidationResult holds the anomalies of one validation run in extraction order
type ValidationResult struct {
	Anomalies []models.Field
	Records   []models.AnomalyRecord
}

// FieldValidator judges fields one at a time
type FieldValidator struct {
	judge FieldJudge
}

// NewFieldValidator creates a new field validator
func NewFieldValidator(judge FieldJudge) *FieldValidator {
	return &FieldValidator{judge: judge}
}

// Validate judges every field sequentially. A failed judgment never aborts the
// batch: the field is recorded as an anomaly whose reason is the failure text.
// Reasons are assigned on the given fields.
func (v *FieldValidator) Validate(ctx context.Context, fields []models.Field) ValidationResult {
	result := ValidationResult{
		Anomalies: make([]models.Field, 0),
		Records:   make([]models.AnomalyRecord, 0),
	}

	for i := range fields {
		field := &fields[i]

		reason, invalid := v.judgeField(ctx, *field)
		if !invalid {
			continue
		}

		field.MarkInvalid(reason)
		result.Anomalies = append(result.Anomalies, *field)
		result.Records = append(result.Records, models.NewAnomalyRecord(*field))
	}

	return result
}

// judgeField returns the anomaly reason and whether the field is an anomaly
func (v *FieldValidator) judgeField(ctx context.Context, field models.Field) (string, bool) {
	verdict, err := v.judge.Judge(ctx, field)
	if err != nil {
		log.Printf("Error validating field '%s': %v", field.Name, err)
		return fmt.Sprintf("Exception occurred: %v", err), true
	}

	switch verdict.Kind {
	case models.VerdictValid:
		return "", false
	case models.VerdictInvalid:
		return verdict.Reason, true
	default:
		log.Printf("Warning: unrecognized validation response for field '%s': %q", field.Name, verdict.Raw)
		return ReasonNotUnderstood, true
	}
}

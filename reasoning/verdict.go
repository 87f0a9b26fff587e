package reasoning

import (
	"strings"

	"formreview-backend/models"
)

// ParseVerdict classifies a validator reply. Replies starting with "valid" or
// "invalid" (any case) are recognized; the reason is the text after the first colon.
func ParseVerdict(raw string) models.Verdict {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)

	switch {
	case strings.HasPrefix(lower, "valid"):
		return models.Verdict{Kind: models.VerdictValid, Raw: raw}
	case strings.HasPrefix(lower, "invalid"):
		_, reason, _ := strings.Cut(text, ":")
		return models.Verdict{Kind: models.VerdictInvalid, Reason: strings.TrimSpace(reason), Raw: raw}
	default:
		return models.Verdict{Kind: models.VerdictUnrecognized, Raw: raw}
	}
}

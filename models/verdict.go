package models

// VerdictKind classifies a validator response
type VerdictKind string

const (
	VerdictValid        VerdictKind = "valid"
	VerdictInvalid      VerdictKind = "invalid"
	VerdictUnrecognized VerdictKind = "unrecognized"
)

// Verdict is the parsed outcome of a field validity judgment.
// Reason is set for VerdictInvalid, Raw always holds the model text.
type Verdict struct {
	Kind   VerdictKind `json:"kind"`
	Reason string      `json:"reason,omitempty"`
	Raw    string      `json:"raw"`
}

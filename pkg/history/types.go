package history

import "time"

// Outcome is the final result of a validation run.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
)

// Record captures a single validation run.
type Record struct {
	// ID is a UUID v4, assigned by the store if empty.
	ID string `json:"id"`

	// RecordedAt is when the record was written, assigned by the store
	// if zero.
	RecordedAt time.Time `json:"recorded_at"`

	// Inputs
	PolicyPath string `json:"policy_path"`
	SchemaPath string `json:"schema_path"`
	Format     string `json:"format"`

	// Result
	Outcome Outcome `json:"outcome"`

	// Kind is the failure category for failed runs ("" for passes).
	Kind string `json:"kind,omitempty"`

	// Message is the first diagnostic for failed runs ("" for passes).
	Message string `json:"message,omitempty"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration"`
}

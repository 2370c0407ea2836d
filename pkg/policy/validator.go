package policy

import (
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"
)

// Validator checks a loaded policy document against a loaded schema document.
// It performs no validation logic itself; the structural check is delegated
// to the gojsonschema conformance engine (type constraints, required
// properties, enums, pattern matching, nested object/array rules).
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a validator that logs its diagnostics to logger.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate returns nil if policy satisfies every constraint in schema.
// A conformance failure returns a KindConformance error carrying all reported
// violations, with the first one surfaced in the message. An engine failure
// that is not a conformance result (for example, a schema the engine cannot
// compile) returns KindUnexpected.
func (v *Validator) Validate(policy, schema Document) error {
	schemaLoader := gojsonschema.NewGoLoader(map[string]any(schema))
	documentLoader := gojsonschema.NewGoLoader(map[string]any(policy))

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		v.logger.Error("schema engine failed", "error", err)
		return &Error{
			Kind:    KindUnexpected,
			Message: "schema engine failed",
			Err:     err,
		}
	}

	if result.Valid() {
		v.logger.Info("policy validation successful")
		return nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violation := Violation{
			Field:       desc.Field(),
			Description: desc.Description(),
		}
		violations = append(violations, violation)
		v.logger.Error("policy validation failed",
			"field", violation.Field,
			"reason", violation.Description,
		)
	}

	return &Error{
		Kind:       KindConformance,
		Message:    fmt.Sprintf("policy does not conform to schema: %s", violations[0]),
		Violations: violations,
	}
}

package policy

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes the type of failure encountered while loading or
// validating a policy.
type Kind string

const (
	KindNotFound        Kind = "not_found"        // Policy or schema file does not exist
	KindParse           Kind = "parse"            // YAML or JSON syntax error
	KindInvalidArgument Kind = "invalid_argument" // Bad format selector or malformed usage
	KindInvalidShape    Kind = "invalid_shape"    // Document root is not a mapping
	KindConformance     Kind = "conformance"      // Policy does not satisfy the schema
	KindUnexpected      Kind = "unexpected"       // Anything else
)

// Violation describes a single schema constraint the policy failed to meet,
// as reported by the conformance engine.
type Violation struct {
	// Field is the path into the document, e.g. "spec.rules.0.name" or
	// "(root)" for top-level violations.
	Field string `json:"field"`

	// Description is the engine's human-readable reason.
	Description string `json:"description"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Description)
}

// Error is a tagged error for every failure this package can produce.
// Callers dispatch on Kind rather than matching message text.
type Error struct {
	Kind    Kind
	Path    string // File the failure relates to, if any
	Format  Format // Encoding in play when the failure occurred, if any
	Message string
	Err     error // Underlying cause, if any

	// Violations is populated only for KindConformance. The first entry is
	// the violation surfaced in Message.
	Violations []Violation
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Kind, e.Message)
	if e.Path != "" {
		fmt.Fprintf(&sb, " (%s)", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err. Errors produced outside this package map to
// KindUnexpected; a nil error maps to the empty Kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnexpected
}

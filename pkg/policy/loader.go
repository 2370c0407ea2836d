package policy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Format identifies the on-disk encoding of a policy document.
type Format string

const (
	// FormatYAML parses the policy with a safe YAML parser (no tag-driven
	// code execution; only scalars, sequences, and mappings materialize).
	FormatYAML Format = "yaml"
	// FormatJSON parses the policy as JSON.
	FormatJSON Format = "json"
)

// ParseFormat parses a format selector string. Unknown selectors fail with
// KindInvalidArgument.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "yaml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", &Error{
			Kind:    KindInvalidArgument,
			Message: fmt.Sprintf("invalid format %q: must be 'yaml' or 'json'", s),
		}
	}
}

// Document is a parsed policy or schema: an arbitrary tree of scalars,
// sequences, and string-keyed mappings whose root is a mapping. Documents are
// normalized so that YAML- and JSON-loaded trees are interchangeable and
// serializable in either encoding.
type Document map[string]any

// Loader reads policy and schema documents from disk.
type Loader struct {
	logger      *slog.Logger
	maxFileSize int64 // Maximum file size in bytes (default: 10MB)
}

// NewLoader creates a loader that logs its diagnostics to logger.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:      logger,
		maxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (l *Loader) WithMaxFileSize(size int64) *Loader {
	l.maxFileSize = size
	return l
}

// LoadPolicy reads the policy file at path and parses it according to format.
// The returned document's root is guaranteed to be a mapping.
func (l *Loader) LoadPolicy(path string, format Format) (Document, error) {
	data, err := l.readFile(path, "policy")
	if err != nil {
		return nil, err
	}

	var root any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &root); err != nil {
			l.logger.Error("error parsing YAML file", "path", path, "error", err)
			return nil, &Error{
				Kind:    KindParse,
				Path:    path,
				Format:  FormatYAML,
				Message: "YAML parsing failed",
				Err:     err,
			}
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &root); err != nil {
			l.logger.Error("error parsing JSON file", "path", path, "error", err)
			return nil, &Error{
				Kind:    KindParse,
				Path:    path,
				Format:  FormatJSON,
				Message: "JSON parsing failed",
				Err:     err,
			}
		}
	default:
		err := &Error{
			Kind:    KindInvalidArgument,
			Path:    path,
			Message: fmt.Sprintf("invalid format %q: must be 'yaml' or 'json'", format),
		}
		l.logger.Error("invalid policy format", "path", path, "format", string(format))
		return nil, err
	}

	doc, ok := normalize(root).(map[string]any)
	if !ok {
		l.logger.Error("policy root is not a mapping", "path", path, "root", fmt.Sprintf("%T", root))
		return nil, &Error{
			Kind:    KindInvalidShape,
			Path:    path,
			Format:  format,
			Message: "policy file must contain a mapping at the root",
		}
	}

	return Document(doc), nil
}

// LoadSchema reads the schema file at path and parses it as JSON. Schemas
// have no format option.
func (l *Loader) LoadSchema(path string) (Document, error) {
	data, err := l.readFile(path, "schema")
	if err != nil {
		return nil, err
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		l.logger.Error("error parsing JSON schema", "path", path, "error", err)
		return nil, &Error{
			Kind:    KindParse,
			Path:    path,
			Format:  FormatJSON,
			Message: "JSON parsing failed",
			Err:     err,
		}
	}

	doc, ok := root.(map[string]any)
	if !ok {
		l.logger.Error("schema root is not a mapping", "path", path, "root", fmt.Sprintf("%T", root))
		return nil, &Error{
			Kind:    KindInvalidShape,
			Path:    path,
			Format:  FormatJSON,
			Message: "schema file must contain a mapping at the root",
		}
	}

	return Document(doc), nil
}

// readFile reads a file with the size guard applied, mapping a missing file
// to KindNotFound.
func (l *Loader) readFile(path, role string) ([]byte, error) {
	// Read directly instead of Stat-then-read: a file removed between the
	// two calls must still surface as KindNotFound.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Error(role+" file not found", "path", path)
			return nil, &Error{
				Kind:    KindNotFound,
				Path:    path,
				Message: role + " file not found",
				Err:     err,
			}
		}
		l.logger.Error("failed to read "+role+" file", "path", path, "error", err)
		return nil, &Error{
			Kind:    KindUnexpected,
			Path:    path,
			Message: "failed to read " + role + " file",
			Err:     err,
		}
	}

	if int64(len(data)) > l.maxFileSize {
		l.logger.Error(role+" file exceeds size limit", "path", path, "size", len(data), "limit", l.maxFileSize)
		return nil, &Error{
			Kind:    KindInvalidArgument,
			Path:    path,
			Message: fmt.Sprintf("file size %d exceeds maximum %d bytes", len(data), l.maxFileSize),
		}
	}

	return data, nil
}

// normalize converts YAML-parsed trees into the shapes encoding/json and the
// conformance engine expect: map keys become strings, nested map[any]any
// (which yaml.v3 produces for non-scalar or mixed keys) become
// map[string]any.
func normalize(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[fmt.Sprintf("%v", k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = normalize(item)
		}
		return out
	default:
		return value
	}
}

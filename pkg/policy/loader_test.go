package policy

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoader_LoadPolicy_YAML(t *testing.T) {
	path := writeTempFile(t, "policy.yaml", `
name: alice
version: 2
rules:
  - id: r1
    allow: true
limits:
  max_tokens: 100
`)

	loader := NewLoader(testLogger())
	doc, err := loader.LoadPolicy(path, FormatYAML)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v, want nil", err)
	}

	if doc["name"] != "alice" {
		t.Errorf(`doc["name"] = %v, want "alice"`, doc["name"])
	}
	if doc["version"] != 2 {
		t.Errorf(`doc["version"] = %v, want 2`, doc["version"])
	}

	rules, ok := doc["rules"].([]any)
	if !ok {
		t.Fatalf(`doc["rules"] is %T, want []any`, doc["rules"])
	}
	if len(rules) != 1 {
		t.Fatalf("len(rules) = %d, want 1", len(rules))
	}
	rule, ok := rules[0].(map[string]any)
	if !ok {
		t.Fatalf("rules[0] is %T, want map[string]any", rules[0])
	}
	if rule["id"] != "r1" {
		t.Errorf(`rule["id"] = %v, want "r1"`, rule["id"])
	}

	limits, ok := doc["limits"].(map[string]any)
	if !ok {
		t.Fatalf(`doc["limits"] is %T, want map[string]any`, doc["limits"])
	}
	if limits["max_tokens"] != 100 {
		t.Errorf(`limits["max_tokens"] = %v, want 100`, limits["max_tokens"])
	}
}

func TestLoader_LoadPolicy_JSON(t *testing.T) {
	path := writeTempFile(t, "policy.json", `{"name": "alice", "tags": ["a", "b"]}`)

	loader := NewLoader(testLogger())
	doc, err := loader.LoadPolicy(path, FormatJSON)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v, want nil", err)
	}

	want := Document{"name": "alice", "tags": []any{"a", "b"}}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("LoadPolicy() = %v, want %v", doc, want)
	}
}

func TestLoader_LoadPolicy_Failures(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		format   Format
		missing  bool
		wantKind Kind
	}{
		{
			name:     "missing file",
			file:     "nope.yaml",
			format:   FormatYAML,
			missing:  true,
			wantKind: KindNotFound,
		},
		{
			name:     "missing parent directory",
			file:     filepath.Join("no", "such", "dir", "policy.yaml"),
			format:   FormatYAML,
			missing:  true,
			wantKind: KindNotFound,
		},
		{
			name:     "malformed yaml",
			file:     "bad.yaml",
			content:  "name: [unclosed",
			format:   FormatYAML,
			wantKind: KindParse,
		},
		{
			name:     "malformed json",
			file:     "bad.json",
			content:  `{"name": `,
			format:   FormatJSON,
			wantKind: KindParse,
		},
		{
			name:     "yaml is not json",
			file:     "policy.yaml",
			content:  "name: alice\n",
			format:   FormatJSON,
			wantKind: KindParse,
		},
		{
			name:     "invalid format",
			file:     "policy.yaml",
			content:  "name: alice\n",
			format:   Format("toml"),
			wantKind: KindInvalidArgument,
		},
		{
			name:     "sequence root",
			file:     "list.yaml",
			content:  "- a\n- b\n",
			format:   FormatYAML,
			wantKind: KindInvalidShape,
		},
		{
			name:     "scalar root",
			file:     "scalar.json",
			content:  `"just a string"`,
			format:   FormatJSON,
			wantKind: KindInvalidShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if !tt.missing {
				if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}

			loader := NewLoader(testLogger())
			_, err := loader.LoadPolicy(path, tt.format)
			if err == nil {
				t.Fatal("LoadPolicy() error = nil, want error")
			}
			if got := KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf(err) = %q, want %q", got, tt.wantKind)
			}
		})
	}
}

func TestLoader_LoadPolicy_SizeLimit(t *testing.T) {
	path := writeTempFile(t, "policy.yaml", "name: alice\n")

	loader := NewLoader(testLogger()).WithMaxFileSize(4)
	_, err := loader.LoadPolicy(path, FormatYAML)
	if got := KindOf(err); got != KindInvalidArgument {
		t.Errorf("KindOf(err) = %q, want %q", got, KindInvalidArgument)
	}
}

func TestLoader_LoadSchema(t *testing.T) {
	path := writeTempFile(t, "schema.json", `{"type": "object", "required": ["name"]}`)

	loader := NewLoader(testLogger())
	doc, err := loader.LoadSchema(path)
	if err != nil {
		t.Fatalf("LoadSchema() error = %v, want nil", err)
	}
	if doc["type"] != "object" {
		t.Errorf(`doc["type"] = %v, want "object"`, doc["type"])
	}
}

func TestLoader_LoadSchema_Failures(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		missing  bool
		wantKind Kind
	}{
		{name: "missing file", missing: true, wantKind: KindNotFound},
		{name: "malformed json", content: `{"type"`, wantKind: KindParse},
		{name: "array root", content: `[1, 2]`, wantKind: KindInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "schema.json")
			if !tt.missing {
				if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}

			loader := NewLoader(testLogger())
			_, err := loader.LoadSchema(path)
			if got := KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf(err) = %q, want %q", got, tt.wantKind)
			}
		})
	}
}

// A YAML-loaded document must serialize as JSON without loss: every nested
// mapping is string-keyed after normalization, and re-parsing the JSON yields
// the same tree as loading the equivalent JSON file directly.
func TestLoader_RoundTrip(t *testing.T) {
	yamlPath := writeTempFile(t, "policy.yaml", `
name: alice
nested:
  level: 2
  items:
    - key: value
`)
	jsonPath := writeTempFile(t, "policy.json",
		`{"name": "alice", "nested": {"level": 2, "items": [{"key": "value"}]}}`)

	loader := NewLoader(testLogger())

	fromYAML, err := loader.LoadPolicy(yamlPath, FormatYAML)
	if err != nil {
		t.Fatalf("LoadPolicy(yaml) error = %v", err)
	}
	fromJSON, err := loader.LoadPolicy(jsonPath, FormatJSON)
	if err != nil {
		t.Fatalf("LoadPolicy(json) error = %v", err)
	}

	data, err := json.Marshal(fromYAML)
	if err != nil {
		t.Fatalf("json.Marshal(fromYAML) error = %v", err)
	}
	var reparsed Document
	if err := json.Unmarshal(data, &reparsed); err != nil {
		t.Fatalf("json.Unmarshal error = %v", err)
	}

	if !reflect.DeepEqual(reparsed, fromJSON) {
		t.Errorf("round-tripped YAML document = %v, want %v", reparsed, fromJSON)
	}
}

func TestNormalize_MixedKeys(t *testing.T) {
	in := map[any]any{
		"a": map[any]any{1: "one"},
		"b": []any{map[any]any{"k": "v"}},
	}

	out, ok := normalize(in).(map[string]any)
	if !ok {
		t.Fatalf("normalize() returned %T, want map[string]any", normalize(in))
	}

	inner, ok := out["a"].(map[string]any)
	if !ok {
		t.Fatalf(`out["a"] is %T, want map[string]any`, out["a"])
	}
	if inner["1"] != "one" {
		t.Errorf(`inner["1"] = %v, want "one"`, inner["1"])
	}

	seq, ok := out["b"].([]any)
	if !ok {
		t.Fatalf(`out["b"] is %T, want []any`, out["b"])
	}
	if _, ok := seq[0].(map[string]any); !ok {
		t.Errorf("seq[0] is %T, want map[string]any", seq[0])
	}
}

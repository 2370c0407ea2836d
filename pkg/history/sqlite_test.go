package history

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := NewStore(DefaultConfig(path), logger)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_AppendAndList(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	pass := &Record{
		PolicyPath: "policy.yaml",
		SchemaPath: "schema.json",
		Format:     "yaml",
		Outcome:    OutcomePass,
		Duration:   12 * time.Millisecond,
	}
	if err := store.Append(ctx, pass); err != nil {
		t.Fatalf("Append(pass) error = %v", err)
	}
	if pass.ID == "" {
		t.Error("Append() did not assign an ID")
	}
	if pass.RecordedAt.IsZero() {
		t.Error("Append() did not assign RecordedAt")
	}

	fail := &Record{
		RecordedAt: pass.RecordedAt.Add(time.Second),
		PolicyPath: "bad_policy.yaml",
		SchemaPath: "schema.json",
		Format:     "yaml",
		Outcome:    OutcomeFail,
		Kind:       "conformance",
		Message:    "(root): name is required",
		Duration:   7 * time.Millisecond,
	}
	if err := store.Append(ctx, fail); err != nil {
		t.Fatalf("Append(fail) error = %v", err)
	}

	records, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	// Newest first
	got := records[0]
	if got.Outcome != OutcomeFail {
		t.Errorf("records[0].Outcome = %q, want %q", got.Outcome, OutcomeFail)
	}
	if got.Kind != "conformance" {
		t.Errorf("records[0].Kind = %q, want %q", got.Kind, "conformance")
	}
	if got.Message != "(root): name is required" {
		t.Errorf("records[0].Message = %q, want %q", got.Message, "(root): name is required")
	}
	if got.Duration != 7*time.Millisecond {
		t.Errorf("records[0].Duration = %v, want 7ms", got.Duration)
	}

	if records[1].Outcome != OutcomePass {
		t.Errorf("records[1].Outcome = %q, want %q", records[1].Outcome, OutcomePass)
	}
	if records[1].Kind != "" {
		t.Errorf("records[1].Kind = %q, want empty", records[1].Kind)
	}
}

func TestStore_ListLimit(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		record := &Record{
			RecordedAt: base.Add(time.Duration(i) * time.Second),
			PolicyPath: "policy.yaml",
			SchemaPath: "schema.json",
			Format:     "yaml",
			Outcome:    OutcomePass,
		}
		if err := store.Append(ctx, record); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	records, err := store.List(ctx, 3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len(records) = %d, want 3", len(records))
	}
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	store, err := NewStore(DefaultConfig(path), logger)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Append(ctx, &Record{
		PolicyPath: "policy.yaml",
		SchemaPath: "schema.json",
		Format:     "yaml",
		Outcome:    OutcomePass,
	}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening against an existing database must not error or lose data.
	reopened, err := NewStore(DefaultConfig(path), logger)
	if err != nil {
		t.Fatalf("NewStore() reopen error = %v", err)
	}
	defer reopened.Close()

	records, err := reopened.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len(records) = %d, want 1", len(records))
	}
}

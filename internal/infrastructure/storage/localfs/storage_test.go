package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpen(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := storage.Save(context.Background(), "abc_notes.md", strings.NewReader("# notes")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := storage.Open(context.Background(), "abc_notes.md")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	raw, _ := io.ReadAll(rc)
	if string(raw) != "# notes" {
		t.Fatalf("unexpected content %q", raw)
	}
}

func TestRejectsKeysEscapingBaseDir(t *testing.T) {
	storage, _ := New(t.TempDir())
	for _, key := range []string{"", "../x", "a/b", ".hidden"} {
		if err := storage.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

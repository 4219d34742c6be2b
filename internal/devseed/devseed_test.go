package devseed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestLoadEntrySeed(t *testing.T) {
	path := writeSeedFile(t, `[
		{"data": {"greeting": "hi"}, "author": "agent:alice"},
		{"data": 42}
	]`)

	entries, err := LoadEntrySeed(path)
	if err != nil {
		t.Fatalf("LoadEntrySeed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Author != "agent:alice" {
		t.Fatalf("expected author agent:alice, got %q", entries[0].Author)
	}
	if string(entries[1].Data) != "42" {
		t.Fatalf("expected raw data 42, got %q", string(entries[1].Data))
	}
}

func TestLoadEntrySeedMissingData(t *testing.T) {
	path := writeSeedFile(t, `[{"author": "agent:bob"}]`)
	if _, err := LoadEntrySeed(path); err == nil {
		t.Fatalf("expected error for entry without data")
	}
}

func TestLoadEntrySeedMissingFile(t *testing.T) {
	if _, err := LoadEntrySeed(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

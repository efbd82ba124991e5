// Package testutil provides shared test helpers for setting up content
// trees and search indexes.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oakmund/stanza/internal/search"
	"github.com/oakmund/stanza/internal/storage"
)

// TestIndex creates a temporary SQLite search index that is
// automatically cleaned up.
func TestIndex(t *testing.T) *search.Index {
	t.Helper()
	dbFile, err := os.CreateTemp("", "stanza-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	ix, err := search.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

// TestContent creates a temporary content root with a storage.Provider.
func TestContent(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// WriteFile writes a content file under root, creating directories as
// needed.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

package search

import (
	"os"
	"testing"
	"time"

	"github.com/oakmund/stanza/internal/models"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	f, err := os.CreateTemp("", "stanza-search-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	ix, err := Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func testRecords() []models.ContentRecord {
	return []models.ContentRecord{
		{
			Category:  "posts",
			ID:        "go-profiling",
			Title:     "Profiling Go allocations",
			Tags:      []string{"go", "performance"},
			Body:      "<p>Finding allocation hotspots with pprof.</p>",
			Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Published: true,
		},
		{
			Category:  "til",
			ID:        "sqlite-wal",
			Title:     "SQLite WAL mode",
			Tags:      []string{"sqlite"},
			Body:      "<p>Write-ahead logging changes the durability story.</p>",
			Date:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Published: true,
		},
	}
}

func TestRebuildAndCount(t *testing.T) {
	ix := newTestIndex(t)

	if err := ix.Rebuild(testRecords()); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	n, err := ix.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 indexed records, got %d", n)
	}

	// Rebuild replaces, not appends.
	if err := ix.Rebuild(testRecords()[:1]); err != nil {
		t.Fatal(err)
	}
	n, _ = ix.Count()
	if n != 1 {
		t.Errorf("expected 1 record after rebuild, got %d", n)
	}
}

func TestSearchByTitle(t *testing.T) {
	ix := newTestIndex(t)
	if err := ix.Rebuild(testRecords()); err != nil {
		t.Fatal(err)
	}

	results, err := ix.Search("Profiling", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "go-profiling" || results[0].Category != "posts" {
		t.Errorf("unexpected result %+v", results[0])
	}
	if results[0].Snippet == "" {
		t.Error("expected a snippet")
	}
}

func TestSearchByBody(t *testing.T) {
	ix := newTestIndex(t)
	if err := ix.Rebuild(testRecords()); err != nil {
		t.Fatal(err)
	}

	results, err := ix.Search("durability", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "sqlite-wal" {
		t.Errorf("expected sqlite-wal hit, got %v", results)
	}
}

func TestSearchNoMatches(t *testing.T) {
	ix := newTestIndex(t)
	if err := ix.Rebuild(testRecords()); err != nil {
		t.Fatal(err)
	}

	results, err := ix.Search("kubernetes", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}
}

func TestNewest(t *testing.T) {
	ix := newTestIndex(t)

	ts, err := ix.Newest()
	if err != nil {
		t.Fatal(err)
	}
	if !ts.IsZero() {
		t.Errorf("expected zero time on empty index, got %v", ts)
	}

	if err := ix.Rebuild(testRecords()); err != nil {
		t.Fatal(err)
	}
	ts, err = ix.Newest()
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("expected %v, got %v", want, ts)
	}
}

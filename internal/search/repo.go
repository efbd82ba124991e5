package search

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oakmund/stanza/internal/models"
	"github.com/oakmund/stanza/internal/parser"
)

// Result is one search hit.
type Result struct {
	Category string `json:"category"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
}

// Rebuild replaces the whole index with the given records in one
// transaction. Called at startup and after catalog reloads, so the
// index always mirrors the currently visible content.
func (ix *Index) Rebuild(records []models.ContentRecord) error {
	tx, err := ix.conn.Begin()
	if err != nil {
		return fmt.Errorf("search: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM content`); err != nil {
		return fmt.Errorf("search: clear: %w", err)
	}
	ftsClear(tx)

	stmt, err := tx.Prepare(`
		INSERT INTO content (category, id, title, description, tags, body, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("search: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		tagsJSON, _ := json.Marshal(r.Tags)
		body := parser.PlainText(r.Body)
		if _, err := stmt.Exec(r.Category, r.ID, r.Title, r.Description, string(tagsJSON), body, r.Date); err != nil {
			return fmt.Errorf("search: insert %s/%s: %w", r.Category, r.ID, err)
		}
		if err := ftsInsert(tx, r.Category, r.ID, r.Title, body, r.Tags); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of indexed records.
func (ix *Index) Count() (int, error) {
	var n int
	if err := ix.conn.QueryRow(`SELECT COUNT(*) FROM content`).Scan(&n); err != nil {
		return 0, fmt.Errorf("search: count: %w", err)
	}
	return n, nil
}

// Newest returns the most recent publish date in the index, or the
// zero time when the index is empty.
func (ix *Index) Newest() (time.Time, error) {
	var ts sql.NullTime
	if err := ix.conn.QueryRow(`SELECT MAX(published_at) FROM content`).Scan(&ts); err != nil {
		return time.Time{}, fmt.Errorf("search: newest: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return ts.Time, nil
}

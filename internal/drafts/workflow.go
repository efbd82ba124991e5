// Package drafts implements the publishing workflow for staged content:
// listing the staging directory, moving a chosen draft into a category
// with a date-prefixed filename, and flipping its published flag.
package drafts

import (
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/oakmund/stanza/internal/apperr"
	"github.com/oakmund/stanza/internal/models"
	"github.com/oakmund/stanza/internal/parser"
	"github.com/oakmund/stanza/internal/storage"
)

// Workflow drives draft publishing over a content store. The staging
// directory and category directories live under the same store root.
type Workflow struct {
	store      storage.Provider
	stagingDir string
	logger     *slog.Logger
}

// NewWorkflow creates a workflow over the given store. stagingDir is
// the directory (relative to the store root) holding unpublished drafts.
func NewWorkflow(store storage.Provider, stagingDir string, logger *slog.Logger) *Workflow {
	return &Workflow{store: store, stagingDir: stagingDir, logger: logger}
}

// List enumerates the staging directory, sorted by path. Draft metadata
// is read leniently: a draft with malformed frontmatter still lists,
// with its slug as the only identification.
func (w *Workflow) List() ([]models.Draft, error) {
	files, err := w.store.List(w.stagingDir)
	if err != nil {
		return nil, fmt.Errorf("drafts: list staging: %w", err)
	}

	drafts := make([]models.Draft, 0, len(files))
	for _, f := range files {
		data, err := w.store.Read(f.Path)
		if err != nil {
			return nil, fmt.Errorf("drafts: read %s: %w", f.Path, err)
		}
		meta, _, _ := parser.ParseMeta(data)
		drafts = append(drafts, models.Draft{
			Path:        f.Path,
			Slug:        strings.TrimSuffix(path.Base(f.Path), ".md"),
			Title:       meta.Title,
			Description: meta.Description,
			CardTheme:   meta.CardTheme,
		})
	}
	sort.Slice(drafts, func(i, j int) bool { return drafts[i].Path < drafts[j].Path })
	return drafts, nil
}

// Publish moves a draft into the category directory under a
// date-prefixed filename with `published: true` in its frontmatter,
// then removes the source. Nothing is mutated when the destination
// already exists or the source has vanished since listing.
//
// The destination write happens before the source delete; a failed
// delete after a successful write leaves the content published and is
// reported as a warning so the operator can clean up the stale draft.
func (w *Workflow) Publish(d models.Draft, category string, date time.Time) (string, error) {
	ok, err := w.store.Exists(d.Path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("drafts: source %s has vanished: %w", d.Path, apperr.ErrNotFound)
	}

	dest := path.Join(category, date.Format("20060102")+"-"+d.Slug+".md")
	if ok, err := w.store.Exists(dest); err != nil {
		return "", err
	} else if ok {
		return "", fmt.Errorf("drafts: destination %s already exists: %w", dest, apperr.ErrConflict)
	}

	data, err := w.store.Read(d.Path)
	if err != nil {
		return "", fmt.Errorf("drafts: read %s: %w", d.Path, err)
	}

	published, err := setPublished(data)
	if err != nil {
		return "", err
	}

	if err := w.store.Write(dest, published); err != nil {
		return "", fmt.Errorf("drafts: write %s: %w", dest, err)
	}

	if err := w.store.Delete(d.Path); err != nil {
		w.logger.Warn("drafts: published but stale source remains",
			slog.String("source", d.Path),
			slog.String("dest", dest),
			slog.String("error", err.Error()))
	}

	w.logger.Info("drafts: published",
		slog.String("source", d.Path),
		slog.String("dest", dest))
	return dest, nil
}

package library

import (
	"fmt"
	"log/slog"
	"maps"
	"path"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oakmund/stanza/internal/apperr"
	"github.com/oakmund/stanza/internal/models"
	"github.com/oakmund/stanza/internal/parser"
	"github.com/oakmund/stanza/internal/storage"
)

// Library holds one Collection per category. The catalog pointer is
// swapped atomically on reload, so readers never see a partially built
// state and need no locking.
type Library struct {
	store      storage.Provider
	categories []string
	logger     *slog.Logger

	catalog     atomic.Pointer[map[string]*Collection]
	fingerprint atomic.Pointer[map[string]string]
}

// New creates a Library over the given store and loads every category.
// Any build-fatal condition (bad filename date, duplicate id) aborts
// the whole load; there is no partial catalog.
func New(store storage.Provider, categories []string, logger *slog.Logger) (*Library, error) {
	l := &Library{
		store:      store,
		categories: categories,
		logger:     logger,
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload rebuilds every collection from disk and swaps the catalog in
// one step. File checksums from the listing act as a fingerprint: when
// nothing changed since the last successful load, the rebuild is
// skipped and the current catalog stands. On error the previous catalog
// stays in place.
func (l *Library) Reload() error {
	listings := make(map[string][]models.FileInfo, len(l.categories))
	fp := make(map[string]string)
	for _, cat := range l.categories {
		files, err := l.store.List(cat)
		if err != nil {
			return fmt.Errorf("library: list %s: %w", cat, err)
		}
		listings[cat] = files
		for _, f := range files {
			fp[f.Path] = f.Checksum
		}
	}

	if prev := l.fingerprint.Load(); prev != nil && maps.Equal(*prev, fp) {
		l.logger.Debug("library: content unchanged, skipping rebuild")
		return nil
	}

	catalog := make(map[string]*Collection, len(l.categories))
	for _, cat := range l.categories {
		coll, err := l.loadCategory(cat, listings[cat])
		if err != nil {
			return err
		}
		catalog[cat] = coll
	}
	l.catalog.Store(&catalog)
	l.fingerprint.Store(&fp)
	return nil
}

// loadCategory parses the listed markdown files and builds the category
// collection. Per-file metadata degradations are logged as warnings;
// filename and duplicate-id violations are fatal.
func (l *Library) loadCategory(category string, files []models.FileInfo) (*Collection, error) {
	records := make([]models.ContentRecord, 0, len(files))
	for _, f := range files {
		data, err := l.store.Read(f.Path)
		if err != nil {
			return nil, fmt.Errorf("library: read %s: %w", f.Path, err)
		}
		rec, warnings, err := parser.ParseFile(f.Path, data)
		if err != nil {
			return nil, err
		}
		for _, w := range warnings {
			l.logger.Warn("library: degraded parse",
				slog.String("path", f.Path),
				slog.String("warning", w))
		}
		rec.Category = category
		records = append(records, *rec)
	}

	coll, err := Build(category, records)
	if err != nil {
		return nil, err
	}
	l.logger.Info("library: category loaded",
		slog.String("category", category),
		slog.Int("records", coll.Len()),
		slog.Int("tags", len(coll.Tags())))
	return coll, nil
}

// Categories returns the configured category names.
func (l *Library) Categories() []string {
	return l.categories
}

// Collection returns the collection for one category.
func (l *Library) Collection(category string) (*Collection, error) {
	catalog := *l.catalog.Load()
	coll, ok := catalog[category]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return coll, nil
}

// Visible returns the published records across every category at the
// given instant, newest first. Used by the sitemap and search rebuild.
func (l *Library) Visible(now time.Time) []models.ContentRecord {
	catalog := *l.catalog.Load()
	var out []models.ContentRecord
	for _, cat := range l.categories {
		if coll, ok := catalog[cat]; ok {
			out = append(out, coll.Published(now)...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// CategoryOf reports the category a relative content path belongs to,
// or empty when the path sits outside every configured category.
func (l *Library) CategoryOf(rel string) string {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	for _, cat := range l.categories {
		if strings.HasPrefix(rel, cat+"/") {
			return cat
		}
	}
	return ""
}

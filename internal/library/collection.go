// Package library builds and serves the in-memory content catalog: one
// ordered, indexed collection of records per category, loaded once at
// startup and replaced wholesale when the content tree changes.
package library

import (
	"fmt"
	"sort"
	"time"

	"github.com/oakmund/stanza/internal/apperr"
	"github.com/oakmund/stanza/internal/models"
)

// Collection is the ordered, indexed set of content records for one
// category. Records are sorted by date descending and never mutated
// after Build returns.
type Collection struct {
	category string
	records  []models.ContentRecord
	byID     map[string]int
	tags     []string
}

// Build constructs a Collection from parsed records. The sort is
// stable, so records sharing a date keep their input order. Two records
// resolving to the same id is a configuration error that fails the
// whole load.
func Build(category string, records []models.ContentRecord) (*Collection, error) {
	sorted := make([]models.ContentRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	byID := make(map[string]int, len(sorted))
	tagSet := make(map[string]struct{})
	for i, r := range sorted {
		if prev, ok := byID[r.ID]; ok {
			return nil, fmt.Errorf("library: %s and %s both resolve to id %q in category %s: %w",
				sorted[prev].SourcePath, r.SourcePath, r.ID, category, apperr.ErrDuplicateID)
		}
		byID[r.ID] = i
		for _, t := range r.Tags {
			tagSet[t] = struct{}{}
		}
	}

	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	return &Collection{
		category: category,
		records:  sorted,
		byID:     byID,
		tags:     tags,
	}, nil
}

// Category returns the category name this collection was built for.
func (c *Collection) Category() string {
	return c.category
}

// All returns every record, including unpublished and future-dated
// ones, in date-descending order. Used by preview tooling.
func (c *Collection) All() []models.ContentRecord {
	return c.records
}

// Published returns the records visible at the given instant: flagged
// published and not dated in the future. The filter runs per call, so
// scheduled records appear once their date arrives without a reload.
func (c *Collection) Published(now time.Time) []models.ContentRecord {
	out := make([]models.ContentRecord, 0, len(c.records))
	for _, r := range c.records {
		if r.IsVisible(now) {
			out = append(out, r)
		}
	}
	return out
}

// ByID looks up a record by id. When publishedOnly is set the lookup is
// restricted to records visible at now; preview callers pass false to
// search the full collection.
func (c *Collection) ByID(id string, publishedOnly bool, now time.Time) (*models.ContentRecord, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	r := c.records[i]
	if publishedOnly && !r.IsVisible(now) {
		return nil, apperr.ErrNotFound
	}
	return &r, nil
}

// ByTag returns every record carrying the tag, searching the full
// collection. Tag pages are an author-preview surface, so unpublished
// matches count; a tag no record carries is a not-found condition.
func (c *Collection) ByTag(tag string) ([]models.ContentRecord, error) {
	var out []models.ContentRecord
	for _, r := range c.records {
		if r.HasTag(tag) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, apperr.ErrNotFound
	}
	return out, nil
}

// Tags returns the sorted, deduplicated tag vocabulary of the
// collection.
func (c *Collection) Tags() []string {
	return c.tags
}

// Len returns the number of records in the collection.
func (c *Collection) Len() int {
	return len(c.records)
}

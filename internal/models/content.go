// Package models defines the domain types for Stanza.
package models

import "time"

// ContentRecord is one published (or publishable) entry in a category:
// a blog post, a TIL note, or a hobby log entry. Records are built once
// at load time and never mutated afterwards.
type ContentRecord struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Section     string    `json:"section,omitempty"`
	CardTheme   string    `json:"card_theme,omitempty"`
	Published   bool      `json:"published"`
	Body        string    `json:"body"`
	SourcePath  string    `json:"-"`
}

// IsVisible reports whether the record is publicly visible at the given
// instant: it must be flagged published and its date must not be in the
// future. Visibility is a function of wall-clock time, so a scheduled
// record surfaces on its own once its date arrives.
func (r *ContentRecord) IsVisible(now time.Time) bool {
	return r.Published && !r.Date.After(now)
}

// HasTag reports whether the record carries the given tag.
func (r *ContentRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Draft is a staged content file that has not been published yet: no
// date prefix in the filename and no guarantee of a published flag.
type Draft struct {
	Path        string `json:"path"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CardTheme   string `json:"card_theme,omitempty"`
}

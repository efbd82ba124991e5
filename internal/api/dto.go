package api

import (
	"time"

	"github.com/oakmund/stanza/internal/models"
)

// Site carries the public identity of the blog, used for feeds, the
// sitemap, robots.txt, and the credits endpoint. It is built once from
// configuration at startup and never mutated.
type Site struct {
	BaseURL     string
	Title       string
	Description string
	Author      string
	AuthorEmail string
	Credits     []Credit
}

// Credit is one publication acknowledgement shown on the site.
type Credit struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// ContentItem is a lightweight record in list responses: no body.
type ContentItem struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Published   bool      `json:"published"`
}

// ContentDetail is the full record, body included.
type ContentDetail struct {
	ContentItem
	Section   string `json:"section,omitempty"`
	CardTheme string `json:"card_theme,omitempty"`
	Body      string `json:"body"`
}

func toItem(r models.ContentRecord) ContentItem {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return ContentItem{
		ID:          r.ID,
		Category:    r.Category,
		Date:        r.Date,
		Title:       r.Title,
		Description: r.Description,
		Tags:        tags,
		Published:   r.Published,
	}
}

func toItems(records []models.ContentRecord) []ContentItem {
	items := make([]ContentItem, len(records))
	for i, r := range records {
		items[i] = toItem(r)
	}
	return items
}

func toDetail(r models.ContentRecord) ContentDetail {
	return ContentDetail{
		ContentItem: toItem(r),
		Section:     r.Section,
		CardTheme:   r.CardTheme,
		Body:        r.Body,
	}
}

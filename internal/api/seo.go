package api

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/feeds"

	"github.com/oakmund/stanza/internal/library"
)

const (
	feedItemLimit     = 20
	sitemapDateFormat = "2006-01-02"
)

// SEOHandler serves the crawl surface: RSS feeds, the sitemap, and
// robots.txt.
type SEOHandler struct {
	lib  *library.Library
	site Site
	now  func() time.Time
}

// NewSEOHandler creates a new SEOHandler. now is injectable for tests.
func NewSEOHandler(lib *library.Library, site Site, now func() time.Time) *SEOHandler {
	if now == nil {
		now = time.Now
	}
	return &SEOHandler{lib: lib, site: site, now: now}
}

// pageURL returns the canonical URL for one record.
func (h *SEOHandler) pageURL(category, id string) string {
	return fmt.Sprintf("%s/%s/%s", h.site.BaseURL, category, id)
}

// Feed handles GET /{category}/feed.xml: an RSS feed of the newest
// published records in the category.
func (h *SEOHandler) Feed(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	coll, err := h.lib.Collection(category)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	now := h.now()
	records := coll.Published(now)
	if len(records) > feedItemLimit {
		records = records[:feedItemLimit]
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s — %s", h.site.Title, category),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/%s", h.site.BaseURL, category)},
		Description: h.site.Description,
		Author:      &feeds.Author{Name: h.site.Author, Email: h.site.AuthorEmail},
		Updated:     now,
	}
	for _, rec := range records {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          h.pageURL(category, rec.ID),
			Title:       rec.Title,
			Link:        &feeds.Link{Href: h.pageURL(category, rec.ID)},
			Description: rec.Description,
			Content:     rec.Body,
			Created:     rec.Date,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		slog.Error("feed render failed", slog.String("category", category), slog.String("error", err.Error()))
		http.Error(w, "failed to render feed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write([]byte(rss))
}

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap handles GET /sitemap.xml over every published record in
// every category.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	records := h.lib.Visible(now)

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: h.site.BaseURL, LastMod: now.Format(sitemapDateFormat)},
		},
	}
	for _, rec := range records {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{
			Loc:     h.pageURL(rec.Category, rec.ID),
			LastMod: rec.Date.Format(sitemapDateFormat),
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		slog.Error("sitemap render failed", slog.String("error", err.Error()))
	}
}

// Robots handles GET /robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", h.site.BaseURL)
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oakmund/stanza/internal/library"
	"github.com/oakmund/stanza/internal/presence"
	"github.com/oakmund/stanza/internal/search"
)

// NewRouter creates a chi router with the full HTTP surface mounted:
// the public content API, the token-protected preview API, presence,
// feeds, sitemap, robots.txt, and card images. previewToken guards the
// preview group; an empty token disables it entirely.
func NewRouter(lib *library.Library, ix *search.Index, broker *presence.Broker, site Site, cardDir, previewToken string, now func() time.Time) chi.Router {
	h := NewHandler(lib, ix, broker, site, now)
	seo := NewSEOHandler(lib, site, now)
	ch := NewCardHandler(cardDir)

	r := chi.NewRouter()

	// Public content API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/content/{category}", h.ListContent)
		r.Get("/content/{category}/{id}", h.GetContent)
		r.Get("/tags/{category}", h.ListTags)
		r.Get("/search", h.Search)
		r.Get("/credits", h.Credits)
		r.Get("/presence", broker.ServeHTTP)
		r.Get("/presence/counts", h.PresenceCounts)

		// Preview endpoints see unpublished and future-dated records,
		// so they always require the token.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(true, previewToken))
			r.Get("/preview/{category}", h.PreviewList)
			r.Get("/preview/{category}/{id}", h.PreviewGet)
		})
	})

	// Crawl surface.
	r.Get("/{category}/feed.xml", seo.Feed)
	r.Get("/sitemap.xml", seo.Sitemap)
	r.Get("/robots.txt", seo.Robots)

	// Generated social-card images.
	r.Get("/cards/{filename}", ch.ServeFile)

	// Health check endpoints.
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", h.Ready)

	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

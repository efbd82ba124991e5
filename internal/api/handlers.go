package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oakmund/stanza/internal/apperr"
	"github.com/oakmund/stanza/internal/library"
	"github.com/oakmund/stanza/internal/models"
	"github.com/oakmund/stanza/internal/presence"
	"github.com/oakmund/stanza/internal/search"
)

// Handler holds API route handlers over the loaded content catalog.
type Handler struct {
	lib    *library.Library
	ix     *search.Index
	broker *presence.Broker
	site   Site
	now    func() time.Time
}

// NewHandler creates a new Handler. now is injectable for tests.
func NewHandler(lib *library.Library, ix *search.Index, broker *presence.Broker, site Site, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{lib: lib, ix: ix, broker: broker, site: site, now: now}
}

// collection resolves the {category} URL parameter, writing a 404 when
// the category is not configured.
func (h *Handler) collection(w http.ResponseWriter, r *http.Request) (*library.Collection, bool) {
	category := chi.URLParam(r, "category")
	coll, err := h.lib.Collection(category)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("unknown category"))
		return nil, false
	}
	return coll, true
}

// ListContent handles GET /api/content/{category}.
// Published records only; ?tag= filters by tag. A tag with no visible
// match is a 404 rather than an empty list, whether the tag is unused
// or carried only by hidden records, so the public surface never
// confirms unpublished content exists.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}

	if tag := r.URL.Query().Get("tag"); tag != "" {
		matches, err := coll.ByTag(tag)
		if err != nil {
			writeJSON(w, http.StatusNotFound, errorBody("tag not found"))
			return
		}
		now := h.now()
		records := make([]models.ContentRecord, 0, len(matches))
		for _, rec := range matches {
			if rec.IsVisible(now) {
				records = append(records, rec)
			}
		}
		if len(records) == 0 {
			writeJSON(w, http.StatusNotFound, errorBody("tag not found"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": toItems(records),
			"total": len(records),
		})
		return
	}

	records := coll.Published(h.now())
	writeJSON(w, http.StatusOK, map[string]any{
		"items": toItems(records),
		"total": len(records),
	})
}

// GetContent handles GET /api/content/{category}/{id}. Only records
// visible at request time resolve; everything else is a 404.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	rec, err := coll.ByID(id, true, h.now())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get content failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, toDetail(*rec))
}

// ListTags handles GET /api/tags/{category}: the category's sorted tag
// vocabulary.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tags": coll.Tags(),
	})
}

// PreviewList handles GET /api/preview/{category}: every record,
// unpublished and future-dated included. Token-protected.
func (h *Handler) PreviewList(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}
	records := coll.All()
	writeJSON(w, http.StatusOK, map[string]any{
		"items": toItems(records),
		"total": len(records),
	})
}

// PreviewGet handles GET /api/preview/{category}/{id}: lookup over the
// full collection, so drafts-in-place and scheduled records resolve.
func (h *Handler) PreviewGet(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	rec, err := coll.ByID(id, false, h.now())
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, toDetail(*rec))
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.ix.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Credits handles GET /api/credits: the fixed list of publication
// acknowledgements from configuration.
func (h *Handler) Credits(w http.ResponseWriter, r *http.Request) {
	credits := h.site.Credits
	if credits == nil {
		credits = []Credit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"credits": credits,
	})
}

// PresenceCounts handles GET /api/presence/counts: the current reader
// count for every page with at least one open connection.
func (h *Handler) PresenceCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"pages": h.broker.Snapshot(),
	})
}

// Ready handles GET /health/ready: readiness plus search index
// statistics, so operators can see the indexed record count and the
// most recent publish date at a glance.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	n, err := h.ix.Count()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index unavailable"))
		return
	}
	body := map[string]any{
		"status":  "ok",
		"indexed": n,
	}
	if newest, err := h.ix.Newest(); err == nil && !newest.IsZero() {
		body["newest"] = newest.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, body)
}

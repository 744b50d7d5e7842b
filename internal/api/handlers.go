package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/mdpages/internal/apperr"
	"github.com/starford/mdpages/internal/index"
	"github.com/starford/mdpages/internal/pages"
)

// Handler holds the route handlers.
type Handler struct {
	pages      *pages.Service
	index      index.PageIndex
	liveReload bool
}

// NewHandler creates a new Handler. With liveReload set, rendered pages
// subscribe to the event stream and reload when they change.
func NewHandler(svc *pages.Service, idx index.PageIndex, liveReload bool) *Handler {
	return &Handler{pages: svc, index: idx, liveReload: liveReload}
}

// apiPagePath extracts the logical path after /_/api/pages/.
// Supports encoded slashes (e.g. team%2Fon-call).
func apiPagePath(r *http.Request) string {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Page handles GET / and GET /*: a rendered page inside the site chrome.
// Requests reach it in canonical form, so the logical path is the URL path
// without its surrounding slashes.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	logical := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/")

	page, err := h.pages.Load(r.Context(), logical)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.Error(w, "Page not found", http.StatusNotFound)
			return
		}
		slog.Error("render page failed", slog.String("path", logical), slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = writeChrome(w, chromeData{
		Title:      page.Title,
		Path:       page.Path,
		Body:       trustedHTML(page.HTML),
		LiveReload: h.liveReload,
		EventsURL:  eventsPath,
	})
	if err != nil {
		slog.Error("write page failed", slog.String("path", logical), slog.String("error", err.Error()))
	}
}

// GetPage handles GET /_/api/pages/*.
//
//	@Summary		Render a page
//	@Tags			pages
//	@Produce		json
//	@Param			path	path		string	true	"Logical page path"
//	@Success		200		{object}	PageResponse
//	@Failure		404		{object}	errResponse
//	@Router			/_/api/pages/{path} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	logical := apiPagePath(r)
	page, err := h.pages.Load(r.Context(), logical)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get page failed", slog.String("path", logical), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListPages handles GET /_/api/pages.
//
//	@Summary		List indexed pages
//	@Tags			pages
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	PageListResponse
//	@Router			/_/api/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.index.ListPages(limit, offset)
	if err != nil {
		slog.Error("list pages failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: items, Total: total})
}

// Search handles GET /_/api/search.
//
//	@Summary		Full-text search across pages
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/_/api/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.index.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Live handles GET /_/health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// Ready handles GET /_/health/ready. It fails while the index is unreachable.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	if p, ok := h.index.(interface{ Ping() error }); ok {
		if err := p.Ping(); err != nil {
			slog.Warn("readiness check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

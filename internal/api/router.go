package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/mdpages/internal/index"
	"github.com/starford/mdpages/internal/pages"
)

// Service routes live under this prefix so they never shadow a page.
const servicePrefix = "/_"

const eventsPath = servicePrefix + "/events"

// NewRouter creates a chi router serving rendered pages and the JSON API.
// events, if non-nil, is mounted at GET /_/events and enables live reload
// in rendered pages.
func NewRouter(svc *pages.Service, idx index.PageIndex, events http.Handler) chi.Router {
	h := NewHandler(svc, idx, events != nil)

	r := chi.NewRouter()
	r.Use(SecurityHeaders)

	r.Route(servicePrefix, func(r chi.Router) {
		r.Get("/health/live", h.Live)
		r.Get("/health/ready", h.Ready)

		r.Get("/api/pages", h.ListPages)
		r.Get("/api/pages/*", h.GetPage)
		r.Get("/api/search", h.Search)

		if events != nil {
			r.Get("/events", events.ServeHTTP)
		}
	})

	r.With(Canonical).Get("/", h.Page)
	r.With(Canonical).Get("/*", h.Page)

	return r
}

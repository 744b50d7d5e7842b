// Package api implements the mdpages HTTP surface using chi: rendered pages
// plus a small JSON API under /_/.
package api

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var slashRunRe = regexp.MustCompile(`/+`)

// canonicalPath returns the directory-style form of a page URL path and
// whether urlPath already has it. The canonical form starts with exactly one
// slash, contains no empty segments and ends with a slash.
func canonicalPath(urlPath string) (string, bool) {
	page := strings.TrimPrefix(urlPath, "/")
	if !strings.Contains(page, "//") && !strings.HasPrefix(page, "/") && (page == "" || strings.HasSuffix(page, "/")) {
		return urlPath, true
	}
	collapsed := slashRunRe.ReplaceAllString(strings.Trim(page, "/"), "/")
	if collapsed == "" {
		return "/", false
	}
	return "/" + collapsed + "/", false
}

// Canonical redirects page requests whose path is not in canonical form.
// The query string is kept.
func Canonical(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, ok := canonicalPath(r.URL.Path)
		if ok {
			next.ServeHTTP(w, r)
			return
		}
		loc := (&url.URL{Path: target, RawQuery: r.URL.RawQuery}).String()
		http.Redirect(w, r, loc, http.StatusFound)
	})
}

// SecurityHeaders sets response headers that apply to every route.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "same-origin")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		next.ServeHTTP(w, r)
	})
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/starford/mdpages/internal/index"
	"github.com/starford/mdpages/internal/pages"
	"github.com/starford/mdpages/internal/testutil"
)

var testFiles = map[string]string{
	"index.md":           "# Home\n[Guide](guide.md)",
	"guide.md":           "# Guide\n[Other](other.md)",
	"team/index.md":      "Hello from the team",
	"ops/README.md":      "not served",
	"notes/on-call.md":   "---\ntitle: On Call Rota\n---\nuniqueword rotation",
	"unsafe.md":          "<script>alert(1)</script>\n\nsafe text",
	".hidden/secret.md":  "secret",
	"getting-started.md": "no heading here",
}

// testEnv sets up a temp document root, synced index and router.
func testEnv(t *testing.T, events http.Handler) (http.Handler, string) {
	t.Helper()
	root := testutil.TestRoot(t, testFiles)
	db := testutil.TestDB(t)
	if _, err := index.Sync(db, root, testutil.Logger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	svc := pages.NewService(root, testutil.Logger())
	return NewRouter(svc, db, events), root.Dir()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = target
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCanonicalPath(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"/", "/", true},
		{"/guide/", "/guide/", true},
		{"/team/sub/", "/team/sub/", true},
		{"/guide", "/guide/", false},
		{"//a//b", "/a/b/", false},
		{"/a//b/", "/a/b/", false},
		{"//", "/", false},
		{"///guide/", "/guide/", false},
	}
	for _, tc := range cases {
		got, ok := canonicalPath(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("canonicalPath(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestPage_Redirects(t *testing.T) {
	router, _ := testEnv(t, nil)

	cases := map[string]string{
		"/guide": "/guide/",
		"//a//b": "/a/b/",
		"/team":  "/team/",
		"/x//y/": "/x/y/",
	}
	for in, want := range cases {
		w := get(t, router, in)
		if w.Code != http.StatusFound {
			t.Errorf("GET %s status = %d, want 302", in, w.Code)
			continue
		}
		if loc := w.Header().Get("Location"); loc != want {
			t.Errorf("GET %s Location = %q, want %q", in, loc, want)
		}
	}
}

func TestPage_Renders(t *testing.T) {
	router, _ := testEnv(t, nil)

	w := get(t, router, "/guide/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{
		"<title>Guide</title>",
		`<h1 id="guide">Guide</h1>`,
		`<a href="other/">Other</a>`,
		"bootstrap.min.css",
		"highlight.min.js",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in page", want)
		}
	}
	if strings.Contains(body, "EventSource") {
		t.Error("live reload script present without events handler")
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestPage_RootAndTitles(t *testing.T) {
	router, _ := testEnv(t, nil)

	cases := map[string]string{
		"/":                 "<title>index</title>",
		"/team/":            "<title>Team</title>",
		"/notes/on-call/":   "<title>On Call Rota</title>",
		"/getting-started/": "<title>Getting Started</title>",
	}
	for path, want := range cases {
		w := get(t, router, path)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, w.Code)
			continue
		}
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("GET %s missing %q", path, want)
		}
	}
}

func TestPage_NotFound(t *testing.T) {
	router, _ := testEnv(t, nil)

	for _, p := range []string{"/missing/", "/ops/", "/.hidden/secret/", "/../guide/", "/ops/README/"} {
		w := get(t, router, p)
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", p, w.Code)
			continue
		}
		if strings.TrimSpace(w.Body.String()) != "Page not found" {
			t.Errorf("GET %s body = %q", p, w.Body.String())
		}
	}
}

func TestPage_Sanitized(t *testing.T) {
	router, _ := testEnv(t, nil)

	w := get(t, router, "/unsafe/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "alert(1)") {
		t.Error("script content reached the page")
	}
	if !strings.Contains(body, "safe text") {
		t.Error("safe text missing")
	}
}

func TestPage_ReadFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced")
	}
	router, dir := testEnv(t, nil)
	p := filepath.Join(dir, "guide.md")
	if err := os.Chmod(p, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(p, 0o644) })

	if w := get(t, router, "/guide/"); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestPage_LiveReloadScript(t *testing.T) {
	events := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
	})
	router, _ := testEnv(t, events)

	body := get(t, router, "/guide/").Body.String()
	if !strings.Contains(body, "new EventSource(\"/_/events\")") {
		t.Errorf("live reload script missing:\n%s", body)
	}
	if !strings.Contains(body, `var page = "guide"`) {
		t.Errorf("page path not embedded:\n%s", body)
	}

	w := get(t, router, "/_/events")
	if w.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("events route not mounted")
	}
}

func TestAPI_GetPage(t *testing.T) {
	router, _ := testEnv(t, nil)

	w := get(t, router, "/_/api/pages/notes/on-call")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var page PageResponse
	if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.Path != "notes/on-call" || page.Title != "On Call Rota" {
		t.Errorf("page = %+v", page)
	}
	if got := page.Metadata["title"]; len(got) != 1 || got[0] != "On Call Rota" {
		t.Errorf("metadata = %v", page.Metadata)
	}
	if !strings.Contains(page.HTML, "uniqueword") {
		t.Errorf("html = %q", page.HTML)
	}

	if w := get(t, router, "/_/api/pages/ops"); w.Code != http.StatusNotFound {
		t.Errorf("README page status = %d, want 404", w.Code)
	}
}

func TestAPI_ListPages(t *testing.T) {
	router, _ := testEnv(t, nil)

	w := get(t, router, "/_/api/pages")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp PageListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	var paths []string
	for _, p := range resp.Pages {
		paths = append(paths, p.Path)
	}
	want := []string{"", "getting-started", "guide", "notes/on-call", "team", "unsafe"}
	if strings.Join(paths, ",") != strings.Join(want, ",") || resp.Total != len(want) {
		t.Errorf("pages = %v (total %d), want %v", paths, resp.Total, want)
	}

	req := httptest.NewRequest(http.MethodGet, "/_/api/pages?limit=2&offset=1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp = PageListResponse{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Pages) != 2 || resp.Pages[0].Path != "getting-started" || resp.Total != len(want) {
		t.Errorf("paged = %+v", resp)
	}
}

func TestAPI_Search(t *testing.T) {
	router, _ := testEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/_/api/search?q=uniqueword", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Path != "notes/on-call" {
		t.Errorf("results = %+v", resp.Results)
	}

	if w := get(t, router, "/_/api/search"); w.Code != http.StatusBadRequest {
		t.Errorf("missing q status = %d, want 400", w.Code)
	}
}

func TestHealth(t *testing.T) {
	router, _ := testEnv(t, nil)
	for _, p := range []string{"/_/health/live", "/_/health/ready"} {
		w := get(t, router, p)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
			t.Errorf("GET %s = %d %s", p, w.Code, w.Body.String())
		}
	}
}

func TestRouter_EventsAbsentWithoutWatch(t *testing.T) {
	router, _ := testEnv(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/_/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

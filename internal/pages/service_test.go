package pages

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/starford/mdpages/internal/apperr"
	"github.com/starford/mdpages/internal/docroot"
	"golang.org/x/net/html"
)

// newService builds a Service over a temporary root holding files.
func newService(t *testing.T, files map[string]string) *Service {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	root, err := docroot.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	return NewService(root, slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

// firstElement returns the first element named tag in the HTML fragment.
func firstElement(t *testing.T, fragment, tag string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func TestLoad_Guide(t *testing.T) {
	svc := newService(t, map[string]string{
		"guide.md": "# Guide\n[Other](other.md)",
	})

	page, err := svc.Load(context.Background(), "guide")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h1 := firstElement(t, page.HTML, "h1")
	if h1 == nil || textOf(h1) != "Guide" {
		t.Fatalf("missing h1 Guide in %q", page.HTML)
	}
	a := firstElement(t, page.HTML, "a")
	if a == nil || attr(a, "href") != "other/" {
		t.Fatalf("link not rewritten in %q", page.HTML)
	}
	if page.Title != "Guide" {
		t.Errorf("title = %q, want Guide", page.Title)
	}
	if page.Path != "guide" {
		t.Errorf("path = %q", page.Path)
	}
}

func TestLoad_DirectoryIndex(t *testing.T) {
	svc := newService(t, map[string]string{"team/index.md": "Hello"})

	page, err := svc.Load(context.Background(), "team")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(page.HTML, "Hello") {
		t.Errorf("body = %q", page.HTML)
	}
}

func TestLoad_ReadmeOnlyIsNotFound(t *testing.T) {
	svc := newService(t, map[string]string{"team/README.md": "Hidden"})

	_, err := svc.Load(context.Background(), "team")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLoad_Rejections(t *testing.T) {
	svc := newService(t, map[string]string{
		"guide.md":   "guide",
		".secret.md": "secret",
	})

	for _, p := range []string{"../guide", "/guide", ".secret", "missing"} {
		if _, err := svc.Load(context.Background(), p); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Load(%q) err = %v, want ErrNotFound", p, err)
		}
	}
}

func TestLoad_ReadFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced")
	}
	svc := newService(t, map[string]string{"locked.md": "secret"})
	p := filepath.Join(svc.Root().Dir(), "locked.md")
	if err := os.Chmod(p, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(p, 0o644) })

	_, err := svc.Load(context.Background(), "locked")
	if !errors.Is(err, apperr.ErrRead) {
		t.Fatalf("err = %v, want ErrRead", err)
	}
	if errors.Is(err, apperr.ErrNotFound) {
		t.Error("read failure must not look like not found")
	}
}

func TestLoad_SanitizesAndKeepsMetadata(t *testing.T) {
	svc := newService(t, map[string]string{
		"post.md": "---\ntitle: Hello World\n---\n<script>alert(1)</script>\n\n<p style=\"color:red\">styled</p>\n",
	})

	page, err := svc.Load(context.Background(), "post")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.Contains(page.HTML, "script") || strings.Contains(page.HTML, "alert") {
		t.Errorf("script survived: %q", page.HTML)
	}
	if strings.Contains(page.HTML, "style=") {
		t.Errorf("style attribute survived: %q", page.HTML)
	}
	if diff := cmp.Diff(map[string][]string{"title": {"Hello World"}}, page.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	if page.Title != "Hello World" {
		t.Errorf("title = %q", page.Title)
	}
}

func TestSource(t *testing.T) {
	svc := newService(t, map[string]string{"index.md": "# Home\n"})

	src, err := svc.Source(context.Background(), "")
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if string(src) != "# Home\n" {
		t.Errorf("source = %q", src)
	}
}

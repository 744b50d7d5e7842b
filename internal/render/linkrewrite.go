package render

import (
	"net/url"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// linkRewriter points internal links at the directory-style URLs the
// server exposes: "foo.md", "foo.md/" and "foo/" all become "foo/".
type linkRewriter struct{}

// Transform rewrites every link destination, children before parents.
func (l *linkRewriter) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			link.Destination = []byte(RewriteHref(string(link.Destination)))
		}
		return ast.WalkContinue, nil
	})
}

// RewriteHref returns href rewritten for the serving layer. Links with a
// host, opaque URLs such as mailto:, in-page fragments and unparseable
// values are returned unchanged. RewriteHref is idempotent.
func RewriteHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.Host != "" || u.User != nil || u.Opaque != "" {
		return href
	}
	if u.Scheme == "" && u.Path == "" && u.RawQuery == "" && u.Fragment != "" {
		return href
	}

	p := strings.TrimRight(u.EscapedPath(), "/")
	p = strings.TrimSuffix(p, ".md")
	p += "/"

	unescaped, err := url.PathUnescape(p)
	if err != nil {
		return href
	}
	u.Path = unescaped
	u.RawPath = p
	return u.String()
}

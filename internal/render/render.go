// Package render converts markdown documents to HTML5 using goldmark with a
// fixed extension set: fenced code, footnotes, tables, front-matter
// metadata, hard line breaks, a table of contents and internal link
// rewriting.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// AST transformer priorities. goldmark runs lower values first; the
// built-in footnote transformer uses 999, so both passes observe the fully
// parsed tree and links are rewritten last.
const (
	tocPriority         = 9000
	linkRewritePriority = 10000
)

// Document is the result of rendering one markdown source.
type Document struct {
	HTML     []byte
	Metadata Metadata
	Headings []*Heading
}

// Renderer is a single-use markdown converter. It holds per-document state
// (heading ids, footnote numbering, the collected outline) and must not be
// shared between requests.
type Renderer struct {
	md  goldmark.Markdown
	toc *tocTransformer
}

// New builds a fresh Renderer.
func New() *Renderer {
	toc := &tocTransformer{}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Footnote,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(toc, tocPriority),
				util.Prioritized(&linkRewriter{}, linkRewritePriority),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			// Raw HTML is kept; the sanitizer is the trust boundary.
			html.WithUnsafe(),
		),
	)
	return &Renderer{md: md, toc: toc}
}

// Render converts source. Front matter is split off first and returned as
// Metadata; it never causes an error.
func (r *Renderer) Render(source []byte) (*Document, error) {
	meta, body := SplitMetadata(source)

	doc := r.md.Parser().Parse(text.NewReader(body))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, body, doc); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &Document{
		HTML:     buf.Bytes(),
		Metadata: meta,
		Headings: r.toc.headings,
	}, nil
}

// Render converts source with a new Renderer.
func Render(source []byte) (*Document, error) {
	return New().Render(source)
}

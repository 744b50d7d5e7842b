package render

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// tocMarker is the paragraph text replaced by the table of contents.
const tocMarker = "[TOC]"

// Heading is one entry of a document outline.
type Heading struct {
	Level    int        `json:"level"`
	Text     string     `json:"text"`
	ID       string     `json:"id"`
	Children []*Heading `json:"children,omitempty"`

	parent *Heading
}

// tocTransformer collects the document outline and replaces every
// paragraph consisting solely of [TOC] with a nested list of links to the
// headings.
type tocTransformer struct {
	headings []*Heading
}

func (t *tocTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	var flat []*Heading
	var markers []*ast.Paragraph
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			h := &Heading{Level: v.Level, Text: string(inlineText(v, source))}
			if id, ok := v.AttributeString("id"); ok {
				if b, ok := id.([]byte); ok {
					h.ID = string(b)
				}
			}
			flat = append(flat, h)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if bytes.Equal(bytes.TrimSpace(inlineText(v, source)), []byte(tocMarker)) {
				markers = append(markers, v)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	t.headings = nest(flat)

	for _, m := range markers {
		parent := m.Parent()
		if parent == nil {
			continue
		}
		if len(t.headings) == 0 {
			parent.RemoveChild(parent, m)
			continue
		}
		parent.ReplaceChild(parent, m, tocList(t.headings))
	}
}

// nest arranges headings into a tree by level.
func nest(flat []*Heading) []*Heading {
	var roots []*Heading
	for i, h := range flat {
		if i == 0 {
			roots = append(roots, h)
			continue
		}
		parent := flat[i-1]
		for parent != nil && parent.Level >= h.Level {
			parent = parent.parent
		}
		if parent == nil {
			roots = append(roots, h)
		} else {
			h.parent = parent
			parent.Children = append(parent.Children, h)
		}
	}
	return roots
}

func tocList(headings []*Heading) *ast.List {
	list := ast.NewList('-')
	list.IsTight = true
	for _, h := range headings {
		item := ast.NewListItem(2)
		block := ast.NewTextBlock()
		link := ast.NewLink()
		link.Destination = []byte("#" + h.ID)
		link.AppendChild(link, ast.NewString([]byte(h.Text)))
		block.AppendChild(block, link)
		item.AppendChild(item, block)
		if len(h.Children) > 0 {
			item.AppendChild(item, tocList(h.Children))
		}
		list.AppendChild(list, item)
	}
	return list
}

// inlineText concatenates the literal text below n.
func inlineText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.Bytes()
}

package parser

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/docoutline/internal/outline"
)

// MarkdownExtractor handles Markdown files using goldmark. ATX and setext
// headings become heading-sized fragments, every other leaf block a body
// fragment.
type MarkdownExtractor struct{}

func (p *MarkdownExtractor) Extract(ctx context.Context, r io.Reader, filename string) ([]outline.Fragment, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	fl := newFlow()
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		walkMarkdown(n, src, fl)
	}
	return fl.fragments(), nil
}

func walkMarkdown(n ast.Node, src []byte, fl *flow) {
	switch node := n.(type) {
	case *ast.Heading:
		fl.heading(inlineText(node, src), node.Level)
		return
	case *ast.ThematicBreak, *ast.HTMLBlock:
		return
	}

	if n.Type() != ast.TypeBlock {
		return
	}
	if !n.HasChildren() {
		// Code blocks: one body line per source line.
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			fl.body(string(seg.Value(src)))
		}
		return
	}
	if n.FirstChild().Type() == ast.TypeInline {
		fl.body(inlineText(n, src))
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		walkMarkdown(c, src, fl)
	}
}

// inlineText joins the inline text under n, turning line breaks into
// spaces.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(src))
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}

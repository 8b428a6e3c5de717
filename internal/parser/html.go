package parser

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/dgallion1/docoutline/internal/outline"
)

// HTMLExtractor handles HTML files. The <title> element is laid out as a
// title-sized line at the top of page one, <h1>..<h6> as headings and
// text blocks as body.
type HTMLExtractor struct{}

func (p *HTMLExtractor) Extract(ctx context.Context, r io.Reader, filename string) ([]outline.Fragment, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrapf(err, "parse html %s", filename)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fl := newFlow()
	if title := findTitle(doc); title != "" {
		fl.title(title)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				fl.heading(textContent(n), level)
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header", "title":
				return
			case "p", "li", "td", "th", "blockquote", "dt", "dd", "figcaption", "caption":
				fl.body(textContent(n))
				return
			case "pre":
				for _, line := range strings.Split(textContent(n), "\n") {
					fl.body(line)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return fl.fragments(), nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// textContent concatenates the text under n, collapsing runs of
// whitespace except inside <pre>.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	if n.Type == html.ElementNode && n.Data == "pre" {
		return strings.TrimSpace(buf.String())
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

package parser

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/pkg/errors"

	"github.com/dgallion1/docoutline/internal/outline"
)

// DOCXExtractor handles .docx files. Paragraph styles decide the size:
// "Title" is title-sized, "Heading N" heading-sized, the rest body.
type DOCXExtractor struct{}

func (p *DOCXExtractor) Extract(ctx context.Context, r io.Reader, filename string) ([]outline.Fragment, error) {
	// go-docx needs a ReaderAt+size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrapf(err, "parse docx %s", filename)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fl := newFlow()
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}

		text := docxParagraphText(para)
		switch style := docxStyle(para); {
		case style == "title":
			fl.title(text)
		case docxHeadingLevel(style) > 0:
			fl.heading(text, docxHeadingLevel(style))
		default:
			fl.body(text)
		}
	}

	return fl.fragments(), nil
}

// docxStyle returns the paragraph style id lower-cased with spaces
// removed, so "Heading 1" and "Heading1" compare equal.
func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

func docxHeadingLevel(style string) int {
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

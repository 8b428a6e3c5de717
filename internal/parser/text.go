package parser

import (
	"bufio"
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/dgallion1/docoutline/internal/outline"
)

// maxTextHeadingRunes bounds how long a standalone line may be and still
// be laid out as a heading.
const maxTextHeadingRunes = 80

// TextExtractor handles plain text files. Paragraphs are separated by
// blank lines; a short single-line paragraph without trailing punctuation
// is laid out as a heading, everything else as body lines.
type TextExtractor struct{}

func (p *TextExtractor) Extract(ctx context.Context, r io.Reader, filename string) ([]outline.Fragment, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs [][]string
	var current []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fl := newFlow()
	for _, para := range paragraphs {
		if len(para) == 1 && looksLikeHeading(para[0]) {
			fl.heading(para[0], 2)
			continue
		}
		for _, line := range para {
			fl.body(line)
		}
	}
	return fl.fragments(), nil
}

func looksLikeHeading(line string) bool {
	if utf8.RuneCountInString(line) > maxTextHeadingRunes {
		return false
	}
	return !strings.ContainsAny(line[len(line)-1:], ".,;:")
}

package parser

import (
	"bytes"
	"context"
	"io"
	"math"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/docoutline/internal/outline"
)

const (
	defaultPageHeight = 792.0

	// Glyph gaps, as a fraction of the font size, that insert a space or
	// end the span.
	spaceGapRatio = 0.15
	breakGapRatio = 1.5
	// Baseline drift, as a fraction of the font size, tolerated within a span.
	baselineRatio = 0.2
)

// PDFExtractor reads the text layer of a PDF and merges consecutive
// glyphs sharing font, size and baseline into fragments.
type PDFExtractor struct{}

func (p *PDFExtractor) Extract(ctx context.Context, r io.Reader, filename string) ([]outline.Fragment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrapf(err, "open pdf %s", filename)
	}

	var frags []outline.Fragment
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		texts, err := pageGlyphs(page)
		if err != nil {
			return nil, errors.Wrapf(err, "extract page %d of %s", i, filename)
		}
		frags = append(frags, mergeGlyphs(texts, pageHeightOf(page), i)...)
	}
	return frags, nil
}

// pageGlyphs recovers from the panics the PDF library raises on damaged
// content streams.
func pageGlyphs(page pdflib.Page) (texts []pdflib.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("malformed content stream: %v", r)
		}
	}()
	return page.Content().Text, nil
}

func pageHeightOf(page pdflib.Page) float64 {
	box := page.V.Key("MediaBox")
	if box.Len() != 4 {
		box = page.V.Key("Parent").Key("MediaBox")
	}
	if box.Len() != 4 {
		return defaultPageHeight
	}
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if h <= 0 {
		return defaultPageHeight
	}
	return h
}

type span struct {
	font     string
	size     float64
	baseline float64
	x0, x1   float64
	text     strings.Builder
}

func (s *span) accepts(t pdflib.Text) bool {
	if t.Font != s.font || math.Abs(t.FontSize-s.size) > 0.01 {
		return false
	}
	if math.Abs(t.Y-s.baseline) > s.size*baselineRatio {
		return false
	}
	gap := t.X - s.x1
	return gap > -s.size && gap <= s.size*breakGapRatio
}

func (s *span) add(t pdflib.Text) {
	if gap := t.X - s.x1; gap > s.size*spaceGapRatio {
		cur := s.text.String()
		if cur != "" && !strings.HasSuffix(cur, " ") && !strings.HasPrefix(t.S, " ") {
			s.text.WriteByte(' ')
		}
	}
	s.text.WriteString(t.S)
	s.x1 = math.Max(s.x1, t.X+t.W)
}

// mergeGlyphs turns the glyph stream of one page into fragments in
// content order. PDF coordinates grow upward, fragments use a top-left
// origin.
func mergeGlyphs(texts []pdflib.Text, height float64, pageNum int) []outline.Fragment {
	var frags []outline.Fragment
	var cur *span

	flush := func() {
		if cur == nil {
			return
		}
		text := strings.TrimSpace(norm.NFKC.String(cur.text.String()))
		if text != "" {
			font := cur.font
			if font == "" {
				font = "unknown"
			}
			frags = append(frags, outline.NewFragment(text, font, cur.size, outline.BBox{
				X0: cur.x0,
				Y0: height - cur.baseline - cur.size,
				X1: cur.x1,
				Y1: height - cur.baseline,
			}, pageNum))
		}
		cur = nil
	}

	for _, t := range texts {
		if t.S == "" || t.FontSize <= 0 {
			continue
		}
		if cur != nil && cur.accepts(t) {
			cur.add(t)
			continue
		}
		flush()
		cur = &span{font: t.Font, size: t.FontSize, baseline: t.Y, x0: t.X, x1: t.X + t.W}
		cur.text.WriteString(t.S)
	}
	flush()

	return frags
}

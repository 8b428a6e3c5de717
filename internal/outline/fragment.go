// Package outline infers a document title and a leveled heading outline
// from a flat stream of styled text fragments.
package outline

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMalformedFragment is the sentinel every FragmentError unwraps to.
var ErrMalformedFragment = errors.New("malformed fragment")

// BBox is a fragment's bounding box in page coordinates with the origin at
// the top-left corner, so Y0 is the top edge.
type BBox struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// Fragment is one styled run of text as produced by an extractor.
type Fragment struct {
	Text     string
	FontSize float64
	FontName string
	IsBold   bool
	Box      BBox
	Page     int // 1-based
}

// NewFragment builds a Fragment with trimmed text, sizes and coordinates
// rounded to two decimals and IsBold derived from the font name.
func NewFragment(text, fontName string, fontSize float64, box BBox, page int) Fragment {
	return Fragment{
		Text:     strings.TrimSpace(text),
		FontSize: round2(fontSize),
		FontName: fontName,
		IsBold:   strings.Contains(strings.ToLower(fontName), "bold"),
		Box: BBox{
			X0: round2(box.X0),
			Y0: round2(box.Y0),
			X1: round2(box.X1),
			Y1: round2(box.Y1),
		},
		Page: page,
	}
}

// FragmentError describes why a single fragment was rejected at ingestion.
type FragmentError struct {
	Index  int
	Field  string
	Reason string
}

func (e *FragmentError) Error() string {
	return fmt.Sprintf("fragment %d: %s: %s", e.Index, e.Field, e.Reason)
}

func (e *FragmentError) Unwrap() error {
	return ErrMalformedFragment
}

// Validate checks the type invariants of a fragment. idx is only used to
// label the returned error.
func (f Fragment) Validate(idx int) error {
	switch {
	case strings.TrimSpace(f.Text) == "":
		return &FragmentError{Index: idx, Field: "text", Reason: "empty"}
	case math.IsNaN(f.FontSize) || math.IsInf(f.FontSize, 0) || f.FontSize <= 0:
		return &FragmentError{Index: idx, Field: "font_size", Reason: fmt.Sprintf("must be positive, got %v", f.FontSize)}
	case f.Page < 1:
		return &FragmentError{Index: idx, Field: "page", Reason: fmt.Sprintf("must be >= 1, got %d", f.Page)}
	case f.Box.Y0 >= f.Box.Y1:
		return &FragmentError{Index: idx, Field: "bbox", Reason: fmt.Sprintf("y0 %v must be above y1 %v", f.Box.Y0, f.Box.Y1)}
	case f.Box.X0 > f.Box.X1:
		// Zero-width boxes are allowed: some PDFs report zero advance for
		// every glyph.
		return &FragmentError{Index: idx, Field: "bbox", Reason: fmt.Sprintf("x0 %v is right of x1 %v", f.Box.X0, f.Box.X1)}
	}
	return nil
}

// Ingest splits fragments into the valid ones, in input order and with
// their text trimmed, and one error per rejected fragment. A bad fragment
// never fails the document.
func Ingest(frags []Fragment) ([]Fragment, []error) {
	valid := make([]Fragment, 0, len(frags))
	var rejected []error
	for i, f := range frags {
		if err := f.Validate(i); err != nil {
			rejected = append(rejected, err)
			continue
		}
		f.Text = strings.TrimSpace(f.Text)
		valid = append(valid, f)
	}
	return valid, rejected
}

// HeadingLine is a heading candidate annotated with its outline level.
type HeadingLine struct {
	Fragment
	Level int
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

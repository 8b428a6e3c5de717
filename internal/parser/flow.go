package parser

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// Formats without real typography are laid out on synthetic letter-size
// pages so the outline engine sees the same signals it gets from a PDF.
const (
	pageHeight   = 792.0
	pageWidth    = 612.0
	marginTop    = 72.0
	marginBottom = 72.0
	marginLeft   = 72.0
	lineSpacing  = 1.2

	titleSize = 28.0
	bodySize  = 11.0
)

var headingSizes = map[int]float64{1: 24, 2: 20, 3: 16, 4: 14, 5: 13, 6: 12}

// headingSize maps a heading depth to a font size. Depths outside 1..6
// are clamped.
func headingSize(level int) float64 {
	level = max(1, min(level, 6))
	return headingSizes[level]
}

// flow stacks lines top to bottom, starting a new page when a line would
// run into the bottom margin.
type flow struct {
	page  int
	y     float64
	frags []outline.Fragment
}

func newFlow() *flow {
	return &flow{page: 1, y: marginTop}
}

func (f *flow) title(text string) {
	f.add(text, "Title-Bold", titleSize)
}

func (f *flow) heading(text string, level int) {
	f.add(text, "Heading-Bold", headingSize(level))
}

func (f *flow) body(text string) {
	f.add(text, "Body-Regular", bodySize)
}

func (f *flow) add(text, font string, size float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	height := size * lineSpacing
	if f.y+height > pageHeight-marginBottom && f.y > marginTop {
		f.page++
		f.y = marginTop
	}
	frag := outline.NewFragment(text, font, size, outline.BBox{
		X0: marginLeft,
		Y0: f.y,
		X1: pageWidth - marginLeft,
		Y1: f.y + height,
	}, f.page)
	f.frags = append(f.frags, frag)
	f.y += height
}

func (f *flow) fragments() []outline.Fragment {
	return f.frags
}

package outline

import (
	"math"
	"regexp"
	"slices"
	"unicode/utf8"
)

var urlPattern = regexp.MustCompile(`(?i)(https?://|www\.)`)

// PageModes maps each page number to its modal font size. Ties go to the
// size encountered first on the page. Pages without fragments are absent.
func PageModes(frags []Fragment) map[int]float64 {
	type tally struct {
		order  []float64
		counts map[float64]int
	}
	pages := make(map[int]*tally)
	for _, f := range frags {
		t := pages[f.Page]
		if t == nil {
			t = &tally{counts: make(map[float64]int)}
			pages[f.Page] = t
		}
		if t.counts[f.FontSize] == 0 {
			t.order = append(t.order, f.FontSize)
		}
		t.counts[f.FontSize]++
	}

	modes := make(map[int]float64, len(pages))
	for page, t := range pages {
		best, bestCount := 0.0, 0
		for _, size := range t.order {
			if c := t.counts[size]; c > bestCount {
				best, bestCount = size, c
			}
		}
		modes[page] = best
	}
	return modes
}

// FilterCandidates keeps the fragments that look like headings: long
// enough, not smaller than the page's modal size, not the title and not a
// link. The result is ordered by page, then by input order within a page.
// title may be nil when no title was selected.
func FilterCandidates(frags []Fragment, modes map[int]float64, title *Fragment, cfg Config) []Fragment {
	cfg = cfg.withDefaults()

	byPage := make(map[int][]Fragment)
	var pages []int
	for _, f := range frags {
		if _, seen := byPage[f.Page]; !seen {
			pages = append(pages, f.Page)
		}
		byPage[f.Page] = append(byPage[f.Page], f)
	}
	slices.Sort(pages)

	var out []Fragment
	for _, page := range pages {
		mode := modes[page]
		for _, f := range byPage[page] {
			if utf8.RuneCountInString(f.Text) < cfg.MinHeadingRunes || f.FontSize < mode {
				continue
			}
			if isTitle(f, title, cfg.TitleYTolerance) {
				continue
			}
			if urlPattern.MatchString(f.Text) {
				continue
			}
			out = append(out, f)
		}
	}
	return out
}

// isTitle matches by position rather than identity: same page and a top
// edge within tol of the title's.
func isTitle(f Fragment, title *Fragment, tol float64) bool {
	return title != nil && f.Page == title.Page && math.Abs(f.Box.Y0-title.Box.Y0) < tol
}

func exceptTitle(frags []Fragment, title *Fragment, tol float64) []Fragment {
	if title == nil {
		return frags
	}
	out := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		if !isTitle(f, title, tol) {
			out = append(out, f)
		}
	}
	return out
}

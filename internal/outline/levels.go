package outline

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

// numberingPattern matches an outline prefix such as "2", "2.3" or
// "2.3.1" at the start of a heading, up to six groups.
var numberingPattern = regexp.MustCompile(`^(\d+(\.\d+){0,5})`)

// RankBySize assigns the baseline level: distinct sizes sorted
// descending, largest = 1. Ranks beyond maxLevel are clamped.
func RankBySize(cands []Fragment, maxLevel int) []HeadingLine {
	if len(cands) == 0 {
		return nil
	}

	sizes := make([]float64, 0, len(cands))
	for _, c := range cands {
		sizes = append(sizes, c.FontSize)
	}
	slices.SortFunc(sizes, func(a, b float64) int { return cmp.Compare(b, a) })
	sizes = slices.Compact(sizes)

	rank := make(map[float64]int, len(sizes))
	for i, s := range sizes {
		rank[s] = min(i+1, maxLevel)
	}

	lines := make([]HeadingLine, len(cands))
	for i, c := range cands {
		lines[i] = HeadingLine{Fragment: c, Level: rank[c.FontSize]}
	}
	return lines
}

// NumberingDepth reports the depth of a leading numeric outline prefix:
// 1 for "3 Intro" or "3. Intro", 2 for "3.2 Details" and so on.
func NumberingDepth(text string) (int, bool) {
	m := numberingPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	return strings.Count(m, ".") + 1, true
}

// ApplyNumbering overrides levels of numbered headings with their
// numbering depth. It returns a new slice.
func ApplyNumbering(lines []HeadingLine, maxLevel int) []HeadingLine {
	out := make([]HeadingLine, len(lines))
	for i, l := range lines {
		if depth, ok := NumberingDepth(l.Text); ok {
			l.Level = min(depth, maxLevel)
		}
		out[i] = l
	}
	return out
}

// AssignLevels runs the size ranking and then the numbering override.
func AssignLevels(cands []Fragment, cfg Config) []HeadingLine {
	cfg = cfg.withDefaults()
	return ApplyNumbering(RankBySize(cands, cfg.MaxLevel), cfg.MaxLevel)
}

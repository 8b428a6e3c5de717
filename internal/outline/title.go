package outline

import (
	"strings"
	"unicode"
)

// SelectTitle picks the title from the page-one fragments: the largest
// font in the upper band, topmost on ties. ok is false when nothing
// qualifies. Fragments from other pages are ignored.
func SelectTitle(frags []Fragment, cfg Config) (title Fragment, ok bool) {
	cfg = cfg.withDefaults()
	for _, f := range frags {
		if f.Page != 1 || !titleEligible(f, cfg) {
			continue
		}
		if !ok || f.FontSize > title.FontSize || (f.FontSize == title.FontSize && f.Box.Y0 < title.Box.Y0) {
			title, ok = f, true
		}
	}
	return title, ok
}

func titleEligible(f Fragment, cfg Config) bool {
	text := strings.TrimSpace(f.Text)
	if text == "" || f.Box.Y0 > cfg.TitleBandY {
		return false
	}
	lower := strings.ToLower(text)
	for _, p := range cfg.TitleStopPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	return strings.IndexFunc(text, isAlnum) >= 0
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

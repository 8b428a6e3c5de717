package outline

import (
	"io"
	"log/slog"
	"strconv"
)

// Entry is one line of the final outline.
type Entry struct {
	Level int
	Text  string
	Page  int
}

// Tag formats the level as "H1".."H6".
func (e Entry) Tag() string {
	return "H" + strconv.Itoa(e.Level)
}

// Document is the result of outlining one document. An empty Title means
// no title could be determined; an empty Outline means no structure was
// found. Neither is an error.
type Document struct {
	Title   string
	Outline []Entry

	// Rejected holds one *FragmentError per fragment dropped at ingestion.
	Rejected []error
}

// Engine runs the outline stages for one document at a time. It holds no
// per-document state and is safe for concurrent use.
type Engine struct {
	cfg Config
	log *slog.Logger
}

// NewEngine returns an engine using cfg. Zero-valued thresholds fall back
// to DefaultConfig. A nil logger discards.
func NewEngine(cfg Config, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{cfg: cfg.withDefaults(), log: log}
}

// Config returns the effective thresholds.
func (e *Engine) Config() Config {
	return e.cfg
}

// Compose selects the title, filters heading candidates and assigns
// levels. Fragments are never modified.
func (e *Engine) Compose(frags []Fragment) Document {
	valid, rejected := Ingest(frags)
	for _, err := range rejected {
		e.log.Debug("fragment rejected", "error", err)
	}

	doc := Document{Outline: []Entry{}, Rejected: rejected}

	var titlePtr *Fragment
	if title, ok := SelectTitle(valid, e.cfg); ok {
		doc.Title = title.Text
		titlePtr = &title
	}

	// The title is not body text, so it stays out of the page statistics.
	modes := PageModes(exceptTitle(valid, titlePtr, e.cfg.TitleYTolerance))
	cands := FilterCandidates(valid, modes, titlePtr, e.cfg)
	for _, h := range AssignLevels(cands, e.cfg) {
		doc.Outline = append(doc.Outline, Entry{Level: h.Level, Text: h.Text, Page: h.Page})
	}

	e.log.Debug("document outlined",
		"fragments", len(frags),
		"rejected", len(rejected),
		"candidates", len(cands),
		"has_title", titlePtr != nil,
	)
	return doc
}

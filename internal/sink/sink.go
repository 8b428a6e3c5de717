// Package sink encodes outlined documents and hands them to storage.
package sink

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// Record is the exchange format written for every document.
type Record struct {
	Title   string        `json:"title"`
	Outline []RecordEntry `json:"outline"`
}

// RecordEntry is one heading; Level is "H1".."H6".
type RecordEntry struct {
	Level string `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// NewRecord converts an engine result. Outline is never nil so it encodes
// as an empty array.
func NewRecord(doc outline.Document) Record {
	rec := Record{Title: doc.Title, Outline: make([]RecordEntry, 0, len(doc.Outline))}
	for _, e := range doc.Outline {
		rec.Outline = append(rec.Outline, RecordEntry{Level: e.Tag(), Text: e.Text, Page: e.Page})
	}
	return rec
}

// Sink receives one outlined document. name is the source file name;
// sinks store the record under RecordKey(name).
type Sink interface {
	Write(ctx context.Context, name string, doc outline.Document) error
}

// Multi writes to every sink and joins their errors.
type Multi []Sink

func (m Multi) Write(ctx context.Context, name string, doc outline.Document) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, name, doc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordKey names the record written for a source file. PDFs keep the
// bare stem ("in/report.pdf" → "report"); other formats keep their
// extension ("notes.md" → "notes.md") so a PDF and a Markdown file of the
// same name never share a record.
func RecordKey(name string) string {
	base := filepath.Base(name)
	if strings.EqualFold(filepath.Ext(base), ".pdf") {
		return Stem(base)
	}
	return base
}

// Stem strips directories and the extension: "in/report.pdf" → "report".
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

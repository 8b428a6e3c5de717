package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

// Extract picks the extractor for filename and returns its fragments.
func Extract(ctx context.Context, r io.Reader, filename string) ([]outline.Fragment, error) {
	ex, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	frags, err := ex.Extract(ctx, r, filename)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	return frags, nil
}

// Process outlines one document. Extraction failures are returned before
// the engine runs; the engine itself never fails.
func Process(ctx context.Context, engine *outline.Engine, r io.Reader, filename string) (outline.Document, error) {
	frags, err := Extract(ctx, r, filename)
	if err != nil {
		return outline.Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return outline.Document{}, err
	}
	return engine.Compose(frags), nil
}

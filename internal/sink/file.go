package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/docoutline/internal/outline"
)

// FileSink writes <RecordKey>.json files into Dir.
type FileSink struct {
	Dir string
}

// Encode renders rec as indented JSON without escaping HTML characters
// or non-ASCII text.
func Encode(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *FileSink) Write(ctx context.Context, name string, doc outline.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(NewRecord(doc))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := s.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Path returns the file the record for name is written to.
func (s *FileSink) Path(name string) string {
	return filepath.Join(s.Dir, RecordKey(name)+".json")
}

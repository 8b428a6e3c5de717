package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/sink"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunBatch(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "results")
	writeFile(t, in, "guide.md", "# Field Guide\n\nIntro paragraph.\n\n## 2. Usage\n\nRun it.\n")
	writeFile(t, in, "page.html", "<html><head><title>Web Page</title></head><body><h1>Welcome Home</h1><p>Hello there.</p></body></html>")
	writeFile(t, in, "broken.pdf", "not a pdf")
	writeFile(t, in, "data.csv", "a,b\n")
	if err := os.Mkdir(filepath.Join(in, "nested.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sum, err := runBatch(context.Background(), batchOptions{
		InputDir:    in,
		OutputDir:   out,
		Concurrency: 2,
		Timeout:     10 * time.Second,
		Engine:      outline.NewEngine(outline.DefaultConfig(), log),
	}, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Total != 3 {
		t.Errorf("expected 3 documents, got %d", sum.Total)
	}
	if sum.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", sum.Failed)
	}

	data, err := os.ReadFile(filepath.Join(out, "guide.md.json"))
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	var rec sink.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Title != "Field Guide" {
		t.Errorf("expected title %q, got %q", "Field Guide", rec.Title)
	}
	var usage bool
	for _, e := range rec.Outline {
		if e.Text == "2. Usage" && e.Level == "H1" && e.Page == 1 {
			usage = true
		}
	}
	if !usage {
		t.Errorf("expected 2. Usage at H1 on page 1, got %+v", rec.Outline)
	}

	if _, err := os.Stat(filepath.Join(out, "page.html.json")); err != nil {
		t.Errorf("expected page.html.json: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "broken.json")); !os.IsNotExist(err) {
		t.Errorf("expected no output for broken.pdf, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "data.csv.json")); !os.IsNotExist(err) {
		t.Errorf("expected csv to be skipped, got %v", err)
	}
}

func readRecord(t *testing.T, path string) sink.Record {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	var rec sink.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return rec
}

func TestRunBatch_SameStem(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, in, "report.md", "# Markdown Report\n\nBody text here.\n")
	writeFile(t, in, "report.txt", "Plain Report\n\nBody text here.\n")

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sum, err := runBatch(context.Background(), batchOptions{
		InputDir:    in,
		OutputDir:   out,
		Concurrency: 2,
		Engine:      outline.NewEngine(outline.DefaultConfig(), log),
	}, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Total != 2 || sum.Failed != 0 {
		t.Fatalf("expected 2 documents and no failures, got %+v", sum)
	}

	if rec := readRecord(t, filepath.Join(out, "report.md.json")); rec.Title != "Markdown Report" {
		t.Errorf("report.md: expected title %q, got %q", "Markdown Report", rec.Title)
	}
	if rec := readRecord(t, filepath.Join(out, "report.txt.json")); len(rec.Outline) == 0 {
		t.Errorf("report.txt: expected a non-empty outline, got %+v", rec)
	}
	if _, err := os.Stat(filepath.Join(out, "report.json")); !os.IsNotExist(err) {
		t.Errorf("expected no shared report.json, got %v", err)
	}
}

func TestRunBatch_ClashingOutputNames(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	// "a.md.pdf" and "a.md" both map to the record "a.md".
	writeFile(t, in, "a.md", "# Alpha\n\nBody text.\n")
	writeFile(t, in, "a.md.pdf", "not a pdf")
	writeFile(t, in, "b.md", "# Beta\n\nBody text.\n")

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sum, err := runBatch(context.Background(), batchOptions{
		InputDir:  in,
		OutputDir: out,
		Engine:    outline.NewEngine(outline.DefaultConfig(), log),
	}, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Total != 3 || sum.Failed != 2 {
		t.Fatalf("expected 3 documents with 2 failures, got %+v", sum)
	}
	if _, err := os.Stat(filepath.Join(out, "a.md.json")); !os.IsNotExist(err) {
		t.Errorf("expected no output for clashing inputs, got %v", err)
	}
	if rec := readRecord(t, filepath.Join(out, "b.md.json")); rec.Title != "Beta" {
		t.Errorf("b.md: expected title %q, got %q", "Beta", rec.Title)
	}
}

func TestClashingFiles(t *testing.T) {
	clashes := clashingFiles([]string{"in/report.pdf", "in/report.md", "in/x.md", "in/x.md.pdf"})
	if len(clashes) != 2 {
		t.Fatalf("expected 2 clashing files, got %v", clashes)
	}
	if got := clashes["in/x.md"]; len(got) != 1 || got[0] != "x.md.pdf" {
		t.Errorf("expected x.md to clash with x.md.pdf, got %v", got)
	}
	if _, ok := clashes["in/report.pdf"]; ok {
		t.Error("report.pdf and report.md must not clash")
	}
}

func TestRunBatch_MissingInput(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := runBatch(context.Background(), batchOptions{
		InputDir:  filepath.Join(t.TempDir(), "missing"),
		OutputDir: t.TempDir(),
		Engine:    outline.NewEngine(outline.DefaultConfig(), nil),
	}, log)
	if err == nil {
		t.Fatal("expected error for missing input dir")
	}
}

func TestInputFiles_Sorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.pdf", "c.docx", "skip.png"} {
		writeFile(t, dir, name, "x")
	}
	files, err := inputFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.pdf", "b.txt", "c.docx"}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), files)
	}
	for i, f := range files {
		if filepath.Base(f) != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, filepath.Base(f), want[i])
		}
	}
}

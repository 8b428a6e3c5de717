package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/sink"
)

type batchOptions struct {
	InputDir    string
	OutputDir   string
	Concurrency int
	Timeout     time.Duration
	Engine      *outline.Engine
}

type batchSummary struct {
	Total   int
	Failed  int
	Elapsed time.Duration
}

// inputFiles lists the supported documents directly inside dir, sorted
// by name. Subdirectories are not descended into.
func inputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// clashingFiles maps every file whose output record would collide with
// another file's to the base names of the files it collides with.
func clashingFiles(files []string) map[string][]string {
	byKey := make(map[string][]string)
	for _, path := range files {
		key := sink.RecordKey(path)
		byKey[key] = append(byKey[key], path)
	}
	clashes := make(map[string][]string)
	for _, group := range byKey {
		if len(group) < 2 {
			continue
		}
		for _, path := range group {
			var others []string
			for _, other := range group {
				if other != path {
					others = append(others, filepath.Base(other))
				}
			}
			clashes[path] = others
		}
	}
	return clashes
}

// runBatch outlines every supported file in opts.InputDir. A document
// that fails, or whose output name collides with another input's, is
// logged and counted; only setup errors are returned.
func runBatch(ctx context.Context, opts batchOptions, log *slog.Logger) (batchSummary, error) {
	start := time.Now()
	files, err := inputFiles(opts.InputDir)
	if err != nil {
		return batchSummary{}, err
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return batchSummary{}, fmt.Errorf("create output dir: %w", err)
	}

	out := &sink.FileSink{Dir: opts.OutputDir}
	var failed atomic.Int64

	clashes := clashingFiles(files)
	var g errgroup.Group
	g.SetLimit(max(opts.Concurrency, 1))
	for _, path := range files {
		if others, ok := clashes[path]; ok {
			failed.Add(1)
			log.Error("document skipped", "file", filepath.Base(path),
				"output", out.Path(path), "clashes_with", others)
			continue
		}
		g.Go(func() error {
			if err := outlineFile(ctx, opts, out, path, log); err != nil {
				failed.Add(1)
				log.Error("document failed", "file", filepath.Base(path), "error", err)
			}
			return nil
		})
	}
	g.Wait()

	return batchSummary{
		Total:   len(files),
		Failed:  int(failed.Load()),
		Elapsed: time.Since(start),
	}, nil
}

func outlineFile(ctx context.Context, opts batchOptions, out *sink.FileSink, path string, log *slog.Logger) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := filepath.Base(path)
	doc, err := pipeline.Process(ctx, opts.Engine, f, name)
	if err != nil {
		return err
	}
	if err := out.Write(ctx, name, doc); err != nil {
		return err
	}

	log.Info("outlined",
		"file", name,
		"output", out.Path(name),
		"headings", len(doc.Outline),
		"rejected", len(doc.Rejected),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

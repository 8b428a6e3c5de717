package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/sink"
)

// Worker processes a single document job.
type Worker struct {
	engine  *outline.Engine
	sink    sink.Sink
	stats   *LatencyStats
	log     *slog.Logger
	timeout time.Duration
}

// NewWorker creates a worker. out may be nil when results are only kept on
// the job.
func NewWorker(engine *outline.Engine, out sink.Sink, stats *LatencyStats, log *slog.Logger, timeout time.Duration) *Worker {
	return &Worker{
		engine:  engine,
		sink:    out,
		stats:   stats,
		log:     log,
		timeout: timeout,
	}
}

// Process runs extraction, outlining and storage for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)
	start := time.Now()

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extracting")
	frags, err := Extract(ctx, bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetFragments(len(frags))

	// Phase 2: Outline
	job.SetStatus(StatusOutlining, "outlining")
	doc := w.engine.Compose(frags)
	for _, rej := range doc.Rejected {
		job.AddError(rej.Error())
	}
	job.SetResult(doc)
	if w.stats != nil {
		w.stats.Observe(job.Filename, start)
	}
	log.Info("outlined document",
		"fragments", len(frags),
		"rejected", len(doc.Rejected),
		"headings", len(doc.Outline),
		"has_title", doc.Title != "",
	)

	// Phase 3: Store
	if w.sink != nil {
		job.SetStatus(StatusStoring, "storing")
		if err := w.sink.Write(ctx, job.Filename, doc); err != nil {
			log.Error("store failed", "error", err)
			job.AddError("store: " + err.Error())
			job.SetStatus(StatusFailed, "storing")
			return
		}
	}

	job.SetStatus(StatusCompleted, "done")
}

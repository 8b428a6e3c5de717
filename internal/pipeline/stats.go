package pipeline

import (
	"math"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// LatencyStats keeps the processing time of every document finished within
// a rolling window, keyed by input format.
type LatencyStats struct {
	mu     sync.Mutex
	window time.Duration
	docs   []docTiming // completion order
}

type docTiming struct {
	done    time.Time
	format  string
	elapsed time.Duration
}

// LatencySummary aggregates the timings of a set of documents.
type LatencySummary struct {
	Documents int     `json:"documents"`
	MinMs     float64 `json:"min_ms"`
	MaxMs     float64 `json:"max_ms"`
	MeanMs    float64 `json:"mean_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
}

// LatencySnapshot summarises the window overall and per input format.
type LatencySnapshot struct {
	WindowSeconds float64                   `json:"window_seconds"`
	All           LatencySummary            `json:"all"`
	ByFormat      map[string]LatencySummary `json:"by_format"`
}

func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window}
}

// Observe records a document named filename whose processing began at
// start.
func (s *LatencyStats) Observe(filename string, start time.Time) {
	s.Add(formatOf(filename), time.Since(start))
}

// Add records one finished document. Negative durations count as zero.
func (s *LatencyStats) Add(format string, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.expire(now)
	s.docs = append(s.docs, docTiming{done: now, format: format, elapsed: max(elapsed, 0)})
}

func (s *LatencyStats) Snapshot() LatencySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire(time.Now())
	all := make([]time.Duration, 0, len(s.docs))
	byFormat := make(map[string][]time.Duration)
	for _, d := range s.docs {
		all = append(all, d.elapsed)
		byFormat[d.format] = append(byFormat[d.format], d.elapsed)
	}

	snap := LatencySnapshot{
		WindowSeconds: s.window.Seconds(),
		All:           summarize(all),
		ByFormat:      make(map[string]LatencySummary, len(byFormat)),
	}
	for format, timings := range byFormat {
		snap.ByFormat[format] = summarize(timings)
	}
	return snap
}

// expire drops documents finished before the window. docs is in
// completion order, so they form a prefix.
func (s *LatencyStats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	n, _ := slices.BinarySearchFunc(s.docs, cutoff, func(d docTiming, t time.Time) int {
		return d.done.Compare(t)
	})
	s.docs = slices.Delete(s.docs, 0, n)
}

// formatOf maps a file name to the format label used in snapshots:
// "report.PDF" → "pdf", "notes.markdown" → "md".
func formatOf(filename string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")); ext {
	case "":
		return "unknown"
	case "markdown":
		return "md"
	case "htm":
		return "html"
	default:
		return ext
	}
}

func summarize(timings []time.Duration) LatencySummary {
	if len(timings) == 0 {
		return LatencySummary{}
	}
	slices.Sort(timings)
	var total time.Duration
	for _, t := range timings {
		total += t
	}
	return LatencySummary{
		Documents: len(timings),
		MinMs:     millis(timings[0]),
		MaxMs:     millis(timings[len(timings)-1]),
		MeanMs:    millis(total) / float64(len(timings)),
		P50Ms:     millis(nearestRank(timings, 50)),
		P95Ms:     millis(nearestRank(timings, 95)),
		P99Ms:     millis(nearestRank(timings, 99)),
	}
}

// nearestRank returns the smallest timing that at least pct percent of the
// sorted timings do not exceed.
func nearestRank(sorted []time.Duration, pct float64) time.Duration {
	n := int(math.Ceil(pct / 100 * float64(len(sorted))))
	return sorted[max(n, 1)-1]
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

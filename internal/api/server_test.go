package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/sink"
)

const testKey = "secret"

const guideMarkdown = `# Field Guide

Intro paragraph.

## 1. Setup

Install the tools.

### 1.1 Requirements

A working shell.
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:         testKey,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
		DocTimeout:     10 * time.Second,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := outline.NewEngine(outline.DefaultConfig(), log)
	orch := pipeline.NewOrchestrator(cfg, engine, nil, log)
	ctx, cancel := context.WithCancel(context.Background())
	orch.Start(ctx)
	t.Cleanup(func() {
		cancel()
		orch.Stop()
	})
	return NewServer(orch, log, cfg)
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte(content))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/latency", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key: expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats/latency", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: expected 401, got %d", rec.Code)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/stats/latency", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("valid key: expected 200, got %d", rec.Code)
	}
}

func TestOutline_Sync(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartBody(t, "file", map[string]string{"guide.md": guideMarkdown})
	req := httptest.NewRequest(http.MethodPost, "/api/outline", body)
	req.Header.Set("Content-Type", ctype)

	rec := do(t, s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got sink.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Title != "Field Guide" {
		t.Errorf("expected title %q, got %q", "Field Guide", got.Title)
	}
	levels := make(map[string]string)
	for _, e := range got.Outline {
		levels[e.Text] = e.Level
	}
	if levels["1. Setup"] != "H1" {
		t.Errorf("expected 1. Setup at H1, got %q", levels["1. Setup"])
	}
	if levels["1.1 Requirements"] != "H2" {
		t.Errorf("expected 1.1 Requirements at H2, got %q", levels["1.1 Requirements"])
	}
	if _, ok := levels["Field Guide"]; ok {
		t.Error("title must not appear in the outline")
	}
}

func TestOutline_Tree(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartBody(t, "file", map[string]string{"guide.md": guideMarkdown})
	req := httptest.NewRequest(http.MethodPost, "/api/outline?format=tree", body)
	req.Header.Set("Content-Type", ctype)

	rec := do(t, s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var tree doctree.DocTree
	if err := json.Unmarshal(rec.Body.Bytes(), &tree); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tree.Title != "Field Guide" {
		t.Errorf("expected title %q, got %q", "Field Guide", tree.Title)
	}
	var found bool
	tree.Walk(func(n *doctree.DocNode, breadcrumb []string) {
		if n.Title == "1.1 Requirements" {
			found = len(breadcrumb) > 0 && breadcrumb[len(breadcrumb)-1] == "1. Setup"
		}
	})
	if !found {
		t.Error("expected 1.1 Requirements nested under 1. Setup")
	}
}

func TestOutline_UnsupportedType(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartBody(t, "file", map[string]string{"data.csv": "a,b\n1,2\n"})
	req := httptest.NewRequest(http.MethodPost, "/api/outline", body)
	req.Header.Set("Content-Type", ctype)

	rec := do(t, s, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestOutline_MissingFile(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartBody(t, "other", map[string]string{"guide.md": guideMarkdown})
	req := httptest.NewRequest(http.MethodPost, "/api/outline", body)
	req.Header.Set("Content-Type", ctype)

	rec := do(t, s, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBatch_PollAndFetch(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartBody(t, "files", map[string]string{
		"guide.md":  guideMarkdown,
		"notes.csv": "x",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/outline/batch", body)
	req.Header.Set("Content-Type", ctype)

	rec := do(t, s, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Jobs []struct {
			Filename string `json:"filename"`
			JobID    string `json:"job_id"`
			PollURL  string `json:"poll_url"`
			Error    string `json:"error"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("expected 2 job entries, got %d", len(resp.Jobs))
	}

	var jobID, pollURL string
	for _, j := range resp.Jobs {
		switch j.Filename {
		case "guide.md":
			jobID, pollURL = j.JobID, j.PollURL
		case "notes.csv":
			if j.Error == "" {
				t.Error("expected an error for the csv upload")
			}
		}
	}
	if jobID == "" {
		t.Fatal("expected a job id for guide.md")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = do(t, s, httptest.NewRequest(http.MethodGet, pollURL, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status: expected 200, got %d", rec.Code)
		}
		var snap pipeline.JobSnapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if snap.Status == pipeline.StatusCompleted {
			break
		}
		if snap.Status == pipeline.StatusFailed {
			t.Fatalf("job failed: %v", snap.Progress.Errors)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not complete, last status %s", snap.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/outline/"+jobID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("result: expected 200, got %d", rec.Code)
	}
	var got sink.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if got.Title != "Field Guide" {
		t.Errorf("expected title %q, got %q", "Field Guide", got.Title)
	}
}

func TestJob_NotFound(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/outline/nope/status", "/api/outline/nope"} {
		rec := do(t, s, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestJobResult_NotReady(t *testing.T) {
	cfg := config.Config{APIKey: testKey, MaxQueueSize: 1, JobTTL: time.Hour}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	// No workers are started, so the job stays queued.
	orch := pipeline.NewOrchestrator(cfg, outline.NewEngine(outline.DefaultConfig(), nil), nil, log)
	s := NewServer(orch, log, cfg)

	job := pipeline.NewJob("guide.md", []byte(guideMarkdown))
	if err := orch.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/outline/"+job.ID, nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":          "report.pdf",
		"../../etc/passwd.md": "passwd.md",
		"a..b.md":             "a_b.md",
		"":                    "unnamed",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLatencyStats_AfterOutline(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartBody(t, "file", map[string]string{"guide.md": guideMarkdown})
	req := httptest.NewRequest(http.MethodPost, "/api/outline", body)
	req.Header.Set("Content-Type", ctype)
	if rec := do(t, s, req); rec.Code != http.StatusOK {
		t.Fatalf("outline: expected 200, got %d", rec.Code)
	}

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/stats/latency", nil))
	var resp struct {
		Stats pipeline.LatencySnapshot `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Stats.All.Documents != 1 || resp.Stats.ByFormat["md"].Documents != 1 {
		t.Errorf("expected one md document, got %+v", resp.Stats)
	}
}

package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/rstdoc/internal/config"
)

func testWorker(t *testing.T) (*Worker, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{OutDir: dir, SplitAfter: 20}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorker(cfg, log), dir
}

func testJob(target, filename string, data []byte) *Job {
	job := &Job{
		ID:       NewJobID(),
		DocID:    "doc",
		Target:   target,
		Status:   StatusQueued,
		Filename: filename,
	}
	job.SetFileData(data)
	return job
}

func TestWorkerProcess_RendersDocument(t *testing.T) {
	w, dir := testWorker(t)
	job := testJob("html", "guide.md", []byte("# The Guide\n\nHello *there*.\n"))
	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%v)", job.Status, job.Snapshot().Errors)
	}
	if job.Title != "The Guide" {
		t.Errorf("expected the document title captured, got %q", job.Title)
	}
	out, err := os.ReadFile(filepath.Join(dir, "guide.html"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "<em>there</em>") {
		t.Errorf("unexpected output: %s", out)
	}
	if job.IndexFile == "" {
		t.Fatal("a titled document must produce an index file")
	}
	idx, err := os.ReadFile(job.IndexFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(idx), "The Guide\tguide.html") {
		t.Errorf("unexpected index content: %q", idx)
	}
	if job.ContentHash == "" {
		t.Error("content hash must be recorded")
	}
}

func TestWorkerProcess_LatexTarget(t *testing.T) {
	w, dir := testWorker(t)
	job := testJob("latex", "doc.md", []byte("plain **bold** text\n"))
	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	out, err := os.ReadFile(filepath.Join(dir, "doc.tex"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), `\textbf{bold}`) {
		t.Errorf("unexpected latex output: %s", out)
	}
}

func TestWorkerProcess_NoIndexForPlainDocument(t *testing.T) {
	w, dir := testWorker(t)
	job := testJob("html", "plain.md", []byte("just a paragraph\n"))
	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if job.IndexFile != "" {
		t.Errorf("no terms recorded, so no index file: %q", job.IndexFile)
	}
	if _, err := os.Stat(filepath.Join(dir, "plain.idx")); !os.IsNotExist(err) {
		t.Error("no index file may exist on disk")
	}
}

func TestWorkerProcess_CountsDiagnostics(t *testing.T) {
	w, _ := testWorker(t)
	job := testJob("html", "doc.md", []byte("```nosuchlanguage99\ncode\n```\n"))
	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if job.Diagnostics != 1 {
		t.Errorf("expected 1 diagnostic, got %d", job.Diagnostics)
	}
}

func TestWorkerProcess_CanceledContext(t *testing.T) {
	w, _ := testWorker(t)
	job := testJob("html", "doc.md", []byte("x\n"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Process(ctx, job)

	if job.Status != StatusFailed {
		t.Errorf("expected failed, got %s", job.Status)
	}
}

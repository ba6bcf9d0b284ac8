package pipeline

import (
	"strings"
	"testing"
	"time"
)

func TestJobStatusTransitions(t *testing.T) {
	job := &Job{ID: "j1", Status: StatusQueued}
	job.SetStatus(StatusParsing, "parsing")
	if job.Status != StatusParsing || job.Phase != "parsing" {
		t.Errorf("unexpected state: %s/%s", job.Status, job.Phase)
	}
	if job.UpdatedAt.IsZero() {
		t.Error("SetStatus must touch UpdatedAt")
	}
}

func TestJobSnapshot(t *testing.T) {
	job := &Job{ID: "j1", DocID: "d1", Target: "html", Status: StatusQueued}
	snap := job.Snapshot()
	if snap.Errors == nil {
		t.Error("snapshot errors must serialize as [], not null")
	}
	job.AddError("boom")
	job.AddDiagnostic()
	snap = job.Snapshot()
	if len(snap.Errors) != 1 || snap.Errors[0] != "boom" {
		t.Errorf("unexpected errors: %v", snap.Errors)
	}
	if snap.Diagnostics != 1 {
		t.Errorf("expected 1 diagnostic, got %d", snap.Diagnostics)
	}
}

func TestJobStoreCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)
	old := &Job{ID: "old"}
	old.SetStatus(StatusCompleted, "done")
	old.UpdatedAt = time.Now().Add(-time.Second)
	fresh := &Job{ID: "fresh"}
	fresh.SetStatus(StatusQueued, "queued")
	store.Put(old)
	store.Put(fresh)

	store.Cleanup()
	if store.Get("old") != nil {
		t.Error("expired job must be evicted")
	}
	if store.Get("fresh") == nil {
		t.Error("fresh job must survive cleanup")
	}
}

func TestContentHashHex(t *testing.T) {
	if got := ContentHashHex(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("unexpected empty hash: %s", got)
	}
	if ContentHashHex([]byte("a")) == ContentHashHex([]byte("b")) {
		t.Error("distinct content must hash differently")
	}
}

func TestNewJobID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewJobID()
		if len(id) != 26 {
			t.Fatalf("expected 26 characters, got %d: %q", len(id), id)
		}
		if strings.ContainsAny(id, "ILOUilou") {
			t.Fatalf("id uses excluded characters: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id: %q", id)
		}
		seen[id] = true
	}
}

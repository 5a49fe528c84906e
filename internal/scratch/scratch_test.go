package scratch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"redub/internal/logging"
)

func TestNewJobCreatesLockedDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "scratch")
	job, err := NewJob(root, logging.NewNop())
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(job.Dir), JobPrefix) || job.ID == "" {
		t.Fatalf("unexpected job %+v", job)
	}
	if got := job.Path("speech.wav"); got != filepath.Join(job.Dir, "speech.wav") {
		t.Fatalf("Path() = %q", got)
	}
	if !locked(job.Dir) {
		t.Fatal("expected job directory to be locked")
	}
	if err := job.Release(false); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(job.Dir); !os.IsNotExist(err) {
		t.Fatal("expected job directory to be removed")
	}
}

func TestReleaseKeep(t *testing.T) {
	job, err := NewJob(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if err := job.Release(true); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(job.Dir); err != nil {
		t.Fatal("expected job directory to be kept")
	}
	if locked(job.Dir) {
		t.Fatal("expected lock to be released")
	}
}

func TestNewJobRejectsEmptyRoot(t *testing.T) {
	if _, err := NewJob("  ", nil); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleSkipsLockedAndRecent(t *testing.T) {
	root := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)

	active, err := NewJob(root, nil)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	defer active.Release(false)
	if err := os.Chtimes(active.Dir, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	abandoned, err := NewJob(root, nil)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if err := abandoned.Release(true); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := os.Chtimes(abandoned.Dir, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	recent := filepath.Join(root, JobPrefix+"recent")
	if err := os.Mkdir(recent, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	unrelated := filepath.Join(root, "keep-me")
	if err := os.Mkdir(unrelated, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Chtimes(unrelated, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result := CleanStale(context.Background(), root, time.Hour, logging.NewNop())
	if len(result.Removed) != 1 || result.Removed[0] != abandoned.Dir {
		t.Fatalf("expected only abandoned job removed, got %v", result.Removed)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != active.Dir {
		t.Fatalf("expected active job skipped, got %v", result.Skipped)
	}
	for _, dir := range []string{active.Dir, recent, unrelated} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("expected %s to remain: %v", dir, err)
		}
	}
}

func TestCleanStaleZeroAgeRemovesAllUnlocked(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, JobPrefix+"fresh")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	result := CleanStale(context.Background(), root, 0, nil)
	if len(result.Removed) != 1 {
		t.Fatalf("expected fresh unlocked dir removed, got %+v", result)
	}
}

func TestListDirectories(t *testing.T) {
	root := t.TempDir()
	job, err := NewJob(root, nil)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	defer job.Release(false)
	if err := os.WriteFile(job.Path("speech.wav"), make([]byte, 128), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dirs, err := ListDirectories(root)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 1 {
		t.Fatalf("expected 1 directory, got %d", len(dirs))
	}
	if !dirs[0].Locked || dirs[0].Size < 128 {
		t.Fatalf("unexpected dir info %+v", dirs[0])
	}

	missing, err := ListDirectories(filepath.Join(root, "missing"))
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing root, got %v %v", missing, err)
	}
}

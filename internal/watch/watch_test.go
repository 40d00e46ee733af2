package watch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"auditsnap/internal/watch"
)

func TestMatches(t *testing.T) {
	exts := []string{".png"}
	cases := map[string]bool{
		"shot.png":      true,
		"SHOT.PNG":      true,
		"shot.Png":      true,
		"shot.jpg":      false,
		"png":           false,
		"archive.png.x": false,
	}
	for name, want := range cases {
		if got := watch.Matches(name, exts); got != want {
			t.Errorf("Matches(%q) = %v, want %v", name, got, want)
		}
	}
	if !watch.Matches("a.JPG", []string{".png", ".jpg"}) {
		t.Error("expected multi-extension match")
	}
}

func TestStartRejectsMissingDirectory(t *testing.T) {
	w := watch.New(watch.Options{Dir: filepath.Join(t.TempDir(), "missing")}, nil, nil)
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("expected error for missing dir")
	}
	if w.Running() {
		t.Fatal("watcher should not be running")
	}
}

func TestStartRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w := watch.New(watch.Options{Dir: file}, nil, nil)
	if err := w.Start(context.Background()); !errors.Is(err, watch.ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
}

func runWatcher(t *testing.T, poll bool) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	found := make(chan string, 16)
	w := watch.New(watch.Options{Dir: dir, Poll: poll, PollInterval: 20 * time.Millisecond}, func(p string) {
		found <- filepath.Base(p)
	}, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()
	if !w.Running() {
		t.Fatal("expected running watcher")
	}
	if poll && w.Mode() != "poll" {
		t.Fatalf("expected poll mode, got %q", w.Mode())
	}

	if err := os.Mkdir(filepath.Join(dir, "folder.png"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "New.PNG"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-found:
		if name != "New.PNG" {
			t.Fatalf("unexpected file reported: %q", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("new file was not reported")
	}

	select {
	case name := <-found:
		t.Fatalf("unexpected extra report: %q", name)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherReportsNewImages(t *testing.T) {
	runWatcher(t, false)
}

func TestPollingWatcherReportsNewImages(t *testing.T) {
	runWatcher(t, true)
}

func TestStopIsIdempotent(t *testing.T) {
	w := watch.New(watch.Options{Dir: t.TempDir(), Poll: true}, nil, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("second Start should be a no-op: %v", err)
	}
	w.Stop()
	w.Stop()
	if w.Running() {
		t.Fatal("watcher should be stopped")
	}
}

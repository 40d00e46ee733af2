package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"auditsnap/internal/app"
	"auditsnap/internal/config"
	"auditsnap/internal/filing"
	"auditsnap/internal/manifest"
	"auditsnap/internal/session"
	"auditsnap/internal/status"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WatchDir = filepath.Join(root, "shots")
	cfg.Paths.OutputDir = filepath.Join(root, "evidence")
	cfg.Paths.StagingDir = filepath.Join(root, "staging")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Watch.Poll = true
	cfg.Watch.PollIntervalMS = 20
	cfg.Filing.SettleDelayMS = 0
	cfg.Status.RefreshIntervalMS = 10
	if err := os.MkdirAll(cfg.Paths.WatchDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return &cfg
}

type collector struct {
	mu      sync.Mutex
	results []filing.Result
	lines   []string
}

func (c *collector) result(r filing.Result) {
	c.mu.Lock()
	c.results = append(c.results, r)
	c.mu.Unlock()
}

func (c *collector) sink(e status.Entry) {
	c.mu.Lock()
	c.lines = append(c.lines, e.Message)
	c.mu.Unlock()
}

func (c *collector) waitResults(t *testing.T, n int) []filing.Result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		if len(c.results) >= n {
			out := append([]filing.Result(nil), c.results...)
			c.mu.Unlock()
			return out
		}
		c.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d results", n)
	return nil
}

func TestWatchedFilesAreFiledIntoActiveSession(t *testing.T) {
	cfg := testConfig(t)
	cfg.Manifest.Enabled = true

	a, err := app.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := &collector{}
	a.OnResult(c.result)
	a.AddStatusSink(c.sink)

	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer a.Stop()

	s, err := a.StartSession(session.Spec{Year: "2024", Project: "CSP", AuditType: "Annual Review", Sequence: 1})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if !a.Watching() {
		t.Fatal("expected watcher to be running")
	}

	for _, name := range []string{"shot.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(cfg.Paths.WatchDir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	results := c.waitResults(t, 1)
	if results[0].State != filing.StateMoved || results[0].Destination != filepath.Join(s.Path, "shot.png") {
		t.Fatalf("unexpected result %+v", results[0])
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.WatchDir, "notes.txt")); err != nil {
		t.Fatal("non-matching files must be left alone")
	}

	report, err := manifest.Verify(s.Path, cfg.Manifest.FileName)
	if err != nil || report.Entries != 1 {
		t.Fatalf("manifest verify: %+v %v", report, err)
	}

	a.StopWatching()
	if a.Watching() {
		t.Fatal("watcher should be stopped")
	}
	a.FlushStatus()

	var joined string
	deadline := time.Now().Add(5 * time.Second)
	for {
		c.mu.Lock()
		joined = strings.Join(c.lines, "\n")
		c.mu.Unlock()
		if strings.Contains(joined, "Stopped watching.") || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	for _, want := range []string{"Session folder created: " + s.Path, "Started watching: ", "Moved: shot.png → " + s.Path, "Stopped watching."} {
		if !strings.Contains(joined, want) {
			t.Errorf("status lines missing %q:\n%s", want, joined)
		}
	}
}

func TestNextSessionAdvancesSequence(t *testing.T) {
	a, err := app.New(testConfig(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	first, err := a.CreateSession(session.Spec{Year: "2024", Project: "P", AuditType: "A", Sequence: 4})
	if err != nil {
		t.Fatal(err)
	}
	next, err := a.NextSession()
	if err != nil {
		t.Fatal(err)
	}
	if first.Name != "2024-P-A-004" || next.Name != "2024-P-A-005" {
		t.Fatalf("unexpected names %q %q", first.Name, next.Name)
	}
	if a.Sessions().ActivePath() != next.Path {
		t.Fatal("next session should be active")
	}
}

func TestSingleInstanceLock(t *testing.T) {
	cfg := testConfig(t)
	first, err := app.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	second, err := app.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Start(context.Background()); !errors.Is(err, app.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	first.Stop()
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("start after release: %v", err)
	}
	second.Stop()
}

func TestStartWatchingMissingDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.WatchDir = filepath.Join(t.TempDir(), "missing")
	a, err := app.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.StartWatching(); err == nil {
		t.Fatal("expected error for missing watch dir")
	}
	if a.Watching() {
		t.Fatal("watcher should not be running")
	}
}

func TestStartCleansStaleCaptures(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.Paths.StagingDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(cfg.Paths.StagingDir, "20200101_000000_full.png")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	a, err := app.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer a.Stop()
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale capture should be removed, stat err %v", err)
	}
}

func TestQueuedFilesAreFiledAfterStopWatching(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filing.SettleDelayMS = 1000

	a, err := app.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := &collector{}
	a.OnResult(c.result)
	if err := a.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer a.Stop()

	s, err := a.StartSession(session.Spec{Year: "2024", Project: "CSP", AuditType: "Annual", Sequence: 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"one.png", "two.png"} {
		if err := os.WriteFile(filepath.Join(cfg.Paths.WatchDir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	// Both files are picked up by the poller well inside the settle delay.
	time.Sleep(300 * time.Millisecond)
	a.StopWatching()
	c.mu.Lock()
	early := len(c.results)
	c.mu.Unlock()
	if early != 0 {
		t.Fatalf("items filed before the settle delay elapsed: %d", early)
	}

	results := c.waitResults(t, 2)
	for _, r := range results {
		if r.State != filing.StateMoved || filepath.Dir(r.Destination) != s.Path {
			t.Fatalf("queued item not filed after stop: %+v", r)
		}
	}
}

func TestStartRefusesStagingInsideWatchDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.StagingDir = cfg.Paths.WatchDir

	unfiled := filepath.Join(cfg.Paths.WatchDir, "evidence-from-yesterday.png")
	if err := os.WriteFile(unfiled, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(unfiled, old, old); err != nil {
		t.Fatal(err)
	}

	a, err := app.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Start(context.Background()); err == nil {
		a.Stop()
		t.Fatal("expected Start to reject staging inside the watch dir")
	}
	if _, err := os.Stat(unfiled); err != nil {
		t.Fatalf("unfiled screenshot must survive: %v", err)
	}
}

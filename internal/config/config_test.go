package config_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"auditsnap/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("USERPROFILE", tempHome)
	chdir(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "auditsnap", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}

	if cfg.Paths.WatchDir != filepath.Join(tempHome, "Pictures", "Screenshots") {
		t.Fatalf("unexpected watch dir %q", cfg.Paths.WatchDir)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "Documents", "Evidence") {
		t.Fatalf("unexpected output dir %q", cfg.Paths.OutputDir)
	}
	if cfg.Session.Year != strconv.Itoa(time.Now().Year()) {
		t.Fatalf("unexpected default year %q", cfg.Session.Year)
	}
	if cfg.Session.Project != "CSP" || cfg.Session.AuditType != "Annual" || cfg.Session.StartSequence != 1 {
		t.Fatalf("unexpected session defaults %+v", cfg.Session)
	}
	if cfg.Filing.LockRetries != 12 || cfg.LockRetryDelay() != 250*time.Millisecond {
		t.Fatalf("unexpected filing defaults %+v", cfg.Filing)
	}
	if len(cfg.Watch.Extensions) != 1 || cfg.Watch.Extensions[0] != ".png" {
		t.Fatalf("unexpected extensions %v", cfg.Watch.Extensions)
	}
	if cfg.Manifest.Enabled || cfg.Preview.Enabled {
		t.Fatal("optional features should be disabled by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auditsnap.toml")
	content := `
[session]
year = "2023"
project = "SOC2"
audit_type = "Quarterly"
start_sequence = 7

[paths]
watch_dir = "` + filepath.ToSlash(filepath.Join(dir, "shots")) + `"
output_dir = "` + filepath.ToSlash(filepath.Join(dir, "out")) + `"

[watch]
extensions = ["PNG", ".jpg", "png"]

[filing]
lock_retries = 3
lock_retry_delay_ms = 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if cfg.Session.Year != "2023" || cfg.Session.Project != "SOC2" || cfg.Session.StartSequence != 7 {
		t.Fatalf("session not decoded: %+v", cfg.Session)
	}
	if got := strings.Join(cfg.Watch.Extensions, ","); got != ".png,.jpg" {
		t.Fatalf("extensions not normalized: %q", got)
	}
	if cfg.Filing.LockRetries != 3 || cfg.LockRetryDelay() != 10*time.Millisecond {
		t.Fatalf("filing not decoded: %+v", cfg.Filing)
	}
	if cfg.SettleDelay() != 300*time.Millisecond {
		t.Fatalf("settle delay default lost: %v", cfg.SettleDelay())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"zero retries":   "[filing]\nlock_retries = 0\n",
		"bad log format": "[logging]\nformat = \"xml\"\n",
		"no extensions":  "[watch]\nextensions = []\n",
		"manifest path":  "[manifest]\nenabled = true\nfile_name = \"a/b.jsonl\"\n",
		"malformed toml": "[filing\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestLoadRejectsStagingInsideWatchOrOutput(t *testing.T) {
	root := t.TempDir()
	shots := filepath.Join(root, "shots")
	evidence := filepath.Join(root, "evidence")
	cases := map[string]string{
		"equals watch":     shots,
		"nested in watch":  filepath.Join(shots, "staging"),
		"equals output":    evidence,
		"nested in output": filepath.Join(evidence, "tmp"),
		"unclean path":     shots + string(filepath.Separator) + "." + string(filepath.Separator),
	}
	for name, staging := range cases {
		t.Run(name, func(t *testing.T) {
			body := fmt.Sprintf("[paths]\nwatch_dir = %q\noutput_dir = %q\nstaging_dir = %q\n", shots, evidence, staging)
			path := filepath.Join(t.TempDir(), "c.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), "paths.staging_dir") {
				t.Fatalf("expected staging overlap error, got %v", err)
			}
		})
	}

	body := fmt.Sprintf("[paths]\nwatch_dir = %q\noutput_dir = %q\nstaging_dir = %q\n", shots, evidence, filepath.Join(root, "shots-staging"))
	path := filepath.Join(t.TempDir(), "c.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sibling staging dir should be accepted: %v", err)
	}
}

func TestUpdateKeepsStoredValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	body := "[session]\nproject = \"Stored\"\n\n[paths]\nwatch_dir = \"~/shots\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	err := config.Update(path, func(c *config.Config) {
		c.Capture.CopyToClipboard = true
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"Stored", "~/shots", "copy_to_clipboard = true"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in saved config:\n%s", want, text)
		}
	}

	missing := filepath.Join(t.TempDir(), "new.toml")
	if err := config.Update(missing, func(c *config.Config) { c.Preview.Enabled = true }); err != nil {
		t.Fatalf("Update on missing file: %v", err)
	}
	cfg, _, exists, err := config.Load(missing)
	if err != nil || !exists || !cfg.Preview.Enabled {
		t.Fatalf("unexpected reload: exists=%v err=%v preview=%v", exists, err, cfg != nil && cfg.Preview.Enabled)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Capture.CopyToClipboard = true
	cfg.Session.StartSequence = 4

	if err := config.Save(&cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || !loaded.Capture.CopyToClipboard || loaded.Session.StartSequence != 4 {
		t.Fatalf("saved values not restored: %+v", loaded)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("USERPROFILE", tempHome)

	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatal(err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists || cfg.Filing.LockRetries != 12 || cfg.Capture.Hotkey != "Ctrl+Shift+S" {
		t.Fatalf("unexpected sample values %+v", cfg)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}

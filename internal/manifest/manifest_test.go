package manifest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"auditsnap/internal/filing"
	"auditsnap/internal/manifest"
)

func fileInto(t *testing.T, dir, name, content string) filing.Result {
	t.Helper()
	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return filing.Result{
		Item:        filing.NewItem("/shots/"+name, filing.OriginWatch),
		State:       filing.StateMoved,
		SessionDir:  dir,
		Destination: dest,
		Attempts:    1,
	}
}

func TestRecordAndVerify(t *testing.T) {
	dir := t.TempDir()
	rec := manifest.NewRecorder("", nil)

	first, err := rec.Record(fileInto(t, dir, "a.png", "aaa"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	second, err := rec.Record(fileInto(t, dir, "b.png", "bbbb"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if first.Seq != 1 || second.Seq != 2 || second.PrevHash != first.Hash {
		t.Fatalf("chain not linked: %+v %+v", first, second)
	}
	if first.SHA256 != "9834876dcfb05cb167a5c24953eba58c4ac89b1adf57f28f2f9d09af107ee8f0" {
		t.Fatalf("unexpected digest %s", first.SHA256)
	}

	report, err := manifest.Verify(dir, "")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if report.Entries != 2 || report.Bytes != 7 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestRecorderResumesExistingChain(t *testing.T) {
	dir := t.TempDir()
	if _, err := manifest.NewRecorder("", nil).Record(fileInto(t, dir, "a.png", "a")); err != nil {
		t.Fatal(err)
	}

	entry, err := manifest.NewRecorder("", nil).Record(fileInto(t, dir, "b.png", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if entry.Seq != 2 {
		t.Fatalf("expected resumed seq 2, got %d", entry.Seq)
	}
	if _, err := manifest.Verify(dir, ""); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyDetectsChangedFile(t *testing.T) {
	dir := t.TempDir()
	rec := manifest.NewRecorder("", nil)
	res := fileInto(t, dir, "a.png", "original")
	if _, err := rec.Record(res); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(res.Destination, []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := manifest.Verify(dir, "")
	if err == nil || !strings.Contains(err.Error(), "content changed") {
		t.Fatalf("expected content change error, got %v", err)
	}
}

func TestVerifyDetectsEditedEntry(t *testing.T) {
	dir := t.TempDir()
	rec := manifest.NewRecorder("", nil)
	for _, name := range []string{"a.png", "b.png"} {
		if _, err := rec.Record(fileInto(t, dir, name, name)); err != nil {
			t.Fatal(err)
		}
	}
	path := rec.Path(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	edited := strings.Replace(string(data), `"origin":"watch"`, `"origin":"capture"`, 1)
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = manifest.Verify(dir, "")
	if err == nil || !strings.Contains(err.Error(), "line 1: hash mismatch") {
		t.Fatalf("expected hash mismatch on line 1, got %v", err)
	}
}

func TestObserveIgnoresUnfiledResults(t *testing.T) {
	dir := t.TempDir()
	rec := manifest.NewRecorder("", nil)
	rec.Observe(filing.Result{State: filing.StateSkippedLocked, SessionDir: dir})
	if _, err := os.Stat(rec.Path(dir)); !os.IsNotExist(err) {
		t.Fatalf("manifest should not exist, stat err %v", err)
	}

	rec.Observe(fileInto(t, dir, "a.png", "a"))
	entries, err := manifest.Tail(rec.Path(dir), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "a.png" || entries[0].Origin != "watch" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestVerifyMissingManifest(t *testing.T) {
	if _, err := manifest.Verify(t.TempDir(), ""); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

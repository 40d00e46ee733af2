package capture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 1, 31, 15, 45, 1, 0, time.Local)
	if got := FileName(KindFull, ts); got != "20240131_154501_full.png" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := FileName(KindRegion, ts); got != "20240131_154501_region.png" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestParseRect(t *testing.T) {
	r, err := ParseRect("10, 20,300,200")
	if err != nil {
		t.Fatal(err)
	}
	if r != image.Rect(10, 20, 310, 220) {
		t.Fatalf("unexpected rect %v", r)
	}

	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "0,0,0,10", "0,0,10,-1"} {
		if _, err := ParseRect(bad); err == nil {
			t.Errorf("ParseRect(%q) should fail", bad)
		}
	}
}

func TestSaveWritesUniquePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")
	c := New(dir)
	c.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local) }

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	first, err := c.save(KindDisplay, img)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.save(KindDisplay, img)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(first) != "20240506_070809_display.png" {
		t.Fatalf("unexpected first name %q", first)
	}
	if filepath.Base(second) != "20240506_070809_display (1).png" {
		t.Fatalf("unexpected second name %q", second)
	}

	f, err := os.Open(first)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Dx() != 4 || decoded.Bounds().Dy() != 3 {
		t.Fatalf("unexpected bounds %v", decoded.Bounds())
	}
}

func TestBusyGuard(t *testing.T) {
	c := New(t.TempDir())
	if !c.acquire() {
		t.Fatal("first acquire should succeed")
	}
	if _, err := c.Region(image.Rect(0, 0, 1, 1)); err != ErrBusy {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	c.release()
	if !c.acquire() {
		t.Fatal("acquire after release should succeed")
	}
}

func TestRegionRejectsEmpty(t *testing.T) {
	if _, err := New(t.TempDir()).Region(image.Rectangle{}); err == nil {
		t.Fatal("expected error for empty region")
	}
}

func TestCleanupStaging(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.png")
	fresh := filepath.Join(dir, "fresh.png")
	other := filepath.Join(dir, "keep.txt")
	for _, p := range []string{old, fresh, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-48 * time.Hour)
	for _, p := range []string{old, other} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatal(err)
		}
	}

	n, err := CleanupStaging(dir, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 removal, got %d", n)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("old capture should be removed")
	}
	for _, p := range []string{fresh, other} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s should remain: %v", p, err)
		}
	}

	if n, err := CleanupStaging(filepath.Join(dir, "missing"), time.Hour); err != nil || n != 0 {
		t.Fatalf("missing dir: n=%d err=%v", n, err)
	}
}

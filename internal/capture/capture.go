// Package capture grabs screen images into a staging directory so they can
// be filed like any watched screenshot.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kbinani/screenshot"

	"auditsnap/internal/filing"
)

// Kind names the capture mode and appears in the staged file name.
type Kind string

const (
	KindFull    Kind = "full"
	KindDisplay Kind = "display"
	KindRegion  Kind = "region"
)

// CursorDisplay selects the display under the mouse pointer.
const CursorDisplay = -1

var (
	ErrBusy        = errors.New("capture already in progress")
	ErrNoDisplays  = errors.New("no active displays found")
	ErrCancelled   = errors.New("capture cancelled")
	ErrUnsupported = errors.New("interactive capture is not supported on this platform")
)

// Capturer writes PNG captures into a staging directory. Only one capture
// runs at a time.
type Capturer struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	busy bool
}

func New(stagingDir string) *Capturer {
	return &Capturer{dir: stagingDir, now: time.Now}
}

// Dir returns the staging directory.
func (c *Capturer) Dir() string { return c.dir }

// Full captures the union of all active displays.
func (c *Capturer) Full() (string, error) {
	return c.run(KindFull, func() (image.Image, error) {
		n := screenshot.NumActiveDisplays()
		if n == 0 {
			return nil, ErrNoDisplays
		}
		bounds := screenshot.GetDisplayBounds(0)
		for i := 1; i < n; i++ {
			bounds = bounds.Union(screenshot.GetDisplayBounds(i))
		}
		return screenshot.CaptureRect(bounds)
	})
}

// Display captures one display. CursorDisplay picks the display under the
// pointer, falling back to the primary display.
func (c *Capturer) Display(index int) (string, error) {
	return c.run(KindDisplay, func() (image.Image, error) {
		n := screenshot.NumActiveDisplays()
		if n == 0 {
			return nil, ErrNoDisplays
		}
		if index == CursorDisplay {
			index = displayAtCursor(n)
		}
		if index < 0 || index >= n {
			return nil, fmt.Errorf("display %d out of range (have %d)", index, n)
		}
		return screenshot.CaptureDisplay(index)
	})
}

// Region captures an explicit rectangle in virtual screen coordinates.
func (c *Capturer) Region(r image.Rectangle) (string, error) {
	if r.Empty() {
		return "", fmt.Errorf("empty capture region %v", r)
	}
	return c.run(KindRegion, func() (image.Image, error) {
		return screenshot.CaptureRect(r)
	})
}

func (c *Capturer) run(kind Kind, grab func() (image.Image, error)) (string, error) {
	if !c.acquire() {
		return "", ErrBusy
	}
	defer c.release()

	img, err := grab()
	if err != nil {
		return "", fmt.Errorf("%s capture failed: %w", kind, err)
	}
	return c.save(kind, img)
}

func (c *Capturer) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	return true
}

func (c *Capturer) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// stagingPath reserves a collision-free file name for kind.
func (c *Capturer) stagingPath(kind Kind) (string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	return filing.UniquePath(filepath.Join(c.dir, FileName(kind, c.now()))), nil
}

func (c *Capturer) save(kind Kind, img image.Image) (string, error) {
	path, err := c.stagingPath(kind)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("encode image: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close image file: %w", err)
	}
	return path, nil
}

// FileName returns the staged name for a capture taken at t, for example
// 20240131_154501_full.png.
func FileName(kind Kind, t time.Time) string {
	return t.Format("20060102_150405") + "_" + string(kind) + ".png"
}

// ParseRect parses "x,y,w,h" into a rectangle.
func ParseRect(text string) (image.Rectangle, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("region %q: want x,y,width,height", text)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("region %q: %w", text, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("region %q: width and height must be positive", text)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

// CleanupStaging removes staged PNGs older than maxAge, returning how many
// were deleted. A missing directory is not an error.
func CleanupStaging(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func displayAtCursor(n int) int {
	x, y, err := cursorPosition()
	if err != nil {
		return 0
	}
	pt := image.Pt(x, y)
	for i := 0; i < n; i++ {
		if pt.In(screenshot.GetDisplayBounds(i)) {
			return i
		}
	}
	return 0
}

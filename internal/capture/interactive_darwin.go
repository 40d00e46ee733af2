//go:build darwin

package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Interactive lets the user drag a region with the system screencapture
// tool.
func (c *Capturer) Interactive(ctx context.Context) (string, error) {
	if !c.acquire() {
		return "", ErrBusy
	}
	defer c.release()

	path, err := c.stagingPath(KindRegion)
	if err != nil {
		return "", err
	}
	if err := exec.CommandContext(ctx, "screencapture", "-i", "-x", path).Run(); err != nil {
		return "", fmt.Errorf("screencapture: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", ErrCancelled
	}
	return path, nil
}

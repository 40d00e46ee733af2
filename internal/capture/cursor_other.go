//go:build !windows

package capture

import "errors"

func cursorPosition() (int, int, error) {
	return 0, 0, errors.New("cursor position unavailable")
}

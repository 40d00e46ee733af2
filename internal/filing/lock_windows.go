//go:build windows

package filing

import (
	"errors"

	"golang.org/x/sys/windows"
)

// Windows reports held files from the rename itself.
func sourceLocked(string) (bool, error) {
	return false, nil
}

func isLockError(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) ||
		errors.Is(err, windows.ERROR_LOCK_VIOLATION) ||
		errors.Is(err, windows.ERROR_ACCESS_DENIED)
}

func isCrossDevice(err error) bool {
	return errors.Is(err, windows.ERROR_NOT_SAME_DEVICE)
}

// Package startup toggles launching the tray app at login.
package startup

import (
	"errors"
	"os"
)

var ErrUnsupported = errors.New("start on boot is not supported on this platform")

const appName = "auditsnap"

// launchArgs are passed to the executable when it starts at login.
var launchArgs = []string{"tray"}

// IsEnabled reports whether a login entry exists.
func IsEnabled() bool {
	path, err := Path()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Disable removes the login entry. A missing entry is not an error.
func Disable() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

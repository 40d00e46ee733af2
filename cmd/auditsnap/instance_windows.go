//go:build windows

package main

import (
	"errors"

	"golang.org/x/sys/windows"

	"auditsnap/internal/app"
)

// acquireInstance holds a session-wide named mutex so a second tray icon
// cannot start even before the lock file directory exists.
func acquireInstance() (func(), error) {
	name, err := windows.UTF16PtrFromString(`Global\auditsnap-single-instance`)
	if err != nil {
		return nil, err
	}
	handle, err := windows.CreateMutex(nil, false, name)
	if err != nil {
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			if handle != 0 {
				_ = windows.CloseHandle(handle)
			}
			return nil, app.ErrAlreadyRunning
		}
		return nil, err
	}
	return func() { _ = windows.CloseHandle(handle) }, nil
}

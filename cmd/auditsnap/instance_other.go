//go:build !windows

package main

// acquireInstance is a no-op here; the organizer's lock file covers it.
func acquireInstance() (func(), error) {
	return func() {}, nil
}

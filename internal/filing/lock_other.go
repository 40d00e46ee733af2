//go:build !unix && !windows

package filing

func sourceLocked(string) (bool, error) { return false, nil }

func isLockError(error) bool { return false }

func isCrossDevice(error) bool { return false }

//go:build unix

package filing

import (
	"errors"
	"io/fs"
	"os"
	"syscall"

	"github.com/gofrs/flock"
)

// sourceLocked reports whether another process holds an advisory lock on
// path. The probe lock is released immediately.
func sourceLocked(path string) (bool, error) {
	probe := flock.New(path, flock.SetFlag(os.O_RDONLY))
	ok, err := probe.TryLock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, err
		}
		// Filesystems without flock support cannot report a holder.
		return false, nil
	}
	if !ok {
		return true, nil
	}
	return false, probe.Unlock()
}

func isLockError(err error) bool {
	return errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.ETXTBSY)
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

package filing

import (
	"fmt"
	"os"

	"auditsnap/internal/fileutil"
)

// Mover relocates a file. Implementations must wrap ErrLocked when the source
// is held by another process so the Filer can retry.
type Mover interface {
	Move(src, dst string) error
}

// FileMover moves files on the local filesystem, falling back to a verified
// copy and delete when src and dst are on different volumes.
type FileMover struct{}

func (FileMover) Move(src, dst string) error {
	locked, err := sourceLocked(src)
	if err != nil {
		return err
	}
	if locked {
		return fmt.Errorf("move %s: %w", src, ErrLocked)
	}

	err = os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if isLockError(err) {
		return fmt.Errorf("%w: %w", ErrLocked, err)
	}
	if !isCrossDevice(err) {
		return err
	}

	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		return fmt.Errorf("copy across volumes: %w", err)
	}
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		if isLockError(err) {
			return fmt.Errorf("%w: %w", ErrLocked, err)
		}
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

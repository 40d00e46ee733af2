// Package shell opens folders and URLs with the desktop's default handler.
package shell

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// Open launches the platform opener for target without waiting for it.
func Open(target string) error {
	if target == "" {
		return errors.New("nothing to open")
	}
	args := openerArgs(runtime.GOOS, target)
	cmd := exec.Command(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func openerArgs(goos, target string) []string {
	switch goos {
	case "windows":
		// The empty title stops start from treating a quoted path as the window title.
		return []string{"cmd", "/c", "start", "", target}
	case "darwin":
		return []string{"open", target}
	default:
		return []string{"xdg-open", target}
	}
}

package filing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UniquePath returns dest if nothing exists there, otherwise the first free
// "name (N).ext" for N = 1, 2, ...
func UniquePath(dest string) string {
	if !pathExists(dest) {
		return dest
	}
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if !pathExists(candidate) {
			return candidate
		}
	}
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

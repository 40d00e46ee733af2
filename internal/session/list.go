package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var folderPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+-[A-Za-z0-9_.-]+-[A-Za-z0-9_.-]+-\d{3,}$`)

// Summary describes a session folder found on disk.
type Summary struct {
	Name    string
	Path    string
	Files   int
	ModTime time.Time
}

// List scans outputDir for session folders. A missing outputDir yields an
// empty list.
func List(outputDir string) ([]Summary, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []Summary
	for _, entry := range entries {
		if !entry.IsDir() || !folderPattern.MatchString(entry.Name()) {
			continue
		}
		path := filepath.Join(outputDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		summary := Summary{Name: entry.Name(), Path: path, ModTime: info.ModTime()}
		if children, err := os.ReadDir(path); err == nil {
			for _, child := range children {
				if child.Type().IsRegular() && child.Name()[0] != '.' {
					summary.Files++
				}
			}
		}
		out = append(out, summary)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// LatestSequence returns the highest sequence among existing folders that
// share spec's year, project and audit type, or 0 when there are none.
func LatestSequence(outputDir string, spec Spec) (int, error) {
	spec.Sequence = 1
	normalized, err := Normalize(spec)
	if err != nil {
		return 0, err
	}
	prefix := fmt.Sprintf("%s-%s-%s-", normalized.Year, normalized.Project, normalized.AuditType)

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	latest := 0
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		digits := name[len(prefix):]
		if len(digits) < 3 || strings.Trim(digits, "0123456789") != "" {
			continue
		}
		if n, err := strconv.Atoi(digits); err == nil && n > latest {
			latest = n
		}
	}
	return latest, nil
}

package manifest

import (
	"fmt"
	"path/filepath"

	"auditsnap/internal/fileutil"
)

// Report summarises a successful verification.
type Report struct {
	Path    string
	Entries int
	Bytes   int64
}

// Verify checks the hash chain of the manifest in sessionDir and re-hashes
// every recorded file. It returns an error describing the first violation.
func Verify(sessionDir, fileName string) (Report, error) {
	if fileName == "" {
		fileName = DefaultFileName
	}
	path := filepath.Join(sessionDir, fileName)
	report := Report{Path: path}

	entries, err := Read(path)
	if err != nil {
		return report, err
	}

	expectedPrev := genesisHash()
	var prevSeq uint64
	for i, e := range entries {
		line := i + 1
		if e.Seq != prevSeq+1 {
			return report, fmt.Errorf("line %d: sequence gap: expected %d, got %d", line, prevSeq+1, e.Seq)
		}
		if e.PrevHash != expectedPrev {
			return report, fmt.Errorf("line %d: prev_hash mismatch: expected %s, got %s", line, short(expectedPrev), short(e.PrevHash))
		}
		if computed := computeHash(e); e.Hash != computed {
			return report, fmt.Errorf("line %d: hash mismatch: expected %s, got %s", line, short(computed), short(e.Hash))
		}
		if e.Name != filepath.Base(e.Name) {
			return report, fmt.Errorf("line %d: name %q escapes the session folder", line, e.Name)
		}

		sum, size, err := fileutil.HashFile(filepath.Join(sessionDir, e.Name))
		if err != nil {
			return report, fmt.Errorf("line %d: %s: %w", line, e.Name, err)
		}
		if size != e.Size || sum != e.SHA256 {
			return report, fmt.Errorf("line %d: %s content changed since it was filed", line, e.Name)
		}

		expectedPrev = e.Hash
		prevSeq = e.Seq
		report.Entries++
		report.Bytes += size
	}
	return report, nil
}

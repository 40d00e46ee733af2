package manifest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"auditsnap/internal/fileutil"
	"auditsnap/internal/filing"
	"auditsnap/internal/logging"
)

type chain struct {
	seq      uint64
	prevHash string
}

// Recorder appends an entry to the manifest of the session a file was moved
// into. It keeps one chain per session directory.
type Recorder struct {
	fileName string
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	chains map[string]*chain
}

func NewRecorder(fileName string, logger *slog.Logger) *Recorder {
	if fileName == "" {
		fileName = DefaultFileName
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{
		fileName: fileName,
		logger:   logger.With(logging.String("component", "manifest")),
		now:      time.Now,
		chains:   make(map[string]*chain),
	}
}

// Path returns the manifest path for a session directory.
func (r *Recorder) Path(sessionDir string) string {
	return filepath.Join(sessionDir, r.fileName)
}

// Observe is a filing result hook. Only moved files are recorded; failures
// are logged.
func (r *Recorder) Observe(res filing.Result) {
	if res.State != filing.StateMoved {
		return
	}
	if _, err := r.Record(res); err != nil {
		r.logger.Error("manifest append failed",
			logging.String(logging.FieldItemID, res.Item.ID),
			logging.String(logging.FieldSession, res.SessionDir),
			logging.Error(err),
		)
	}
}

// Record hashes the filed file and appends it to its session manifest.
func (r *Recorder) Record(res filing.Result) (Entry, error) {
	if res.State != filing.StateMoved || res.Destination == "" {
		return Entry{}, fmt.Errorf("record %s: item was not filed", res.Item.Path)
	}
	sum, size, err := fileutil.HashFile(res.Destination)
	if err != nil {
		return Entry{}, fmt.Errorf("hash filed file: %w", err)
	}

	dir := filepath.Dir(res.Destination)

	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.chainFor(dir)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		Seq:      c.seq + 1,
		Time:     r.now().UTC(),
		PrevHash: c.prevHash,
		ItemID:   res.Item.ID,
		Origin:   string(res.Item.Origin),
		Source:   res.Item.Path,
		Name:     filepath.Base(res.Destination),
		Size:     size,
		SHA256:   sum,
	}
	entry.Hash = computeHash(entry)

	data, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal manifest entry: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(r.Path(dir), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Entry{}, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return Entry{}, fmt.Errorf("write manifest entry: %w", err)
	}

	c.seq, c.prevHash = entry.Seq, entry.Hash
	r.logger.Debug("manifest entry appended",
		logging.String(logging.FieldSession, dir),
		logging.String("name", entry.Name),
		logging.Int("seq", int(entry.Seq)),
	)
	return entry, nil
}

// chainFor resumes the chain from the last line of an existing manifest.
func (r *Recorder) chainFor(dir string) (*chain, error) {
	if c, ok := r.chains[dir]; ok {
		return c, nil
	}
	c := &chain{prevHash: genesisHash()}
	entries, err := Read(r.Path(dir))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	case len(entries) > 0:
		last := entries[len(entries)-1]
		c.seq, c.prevHash = last.Seq, last.Hash
	}
	r.chains[dir] = c
	return c, nil
}

// Read returns every entry in the manifest at path.
func Read(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}
	return entries, nil
}

// Tail returns the last n entries of the manifest at path.
func Tail(path string, n int) ([]Entry, error) {
	entries, err := Read(path)
	if err != nil {
		return nil, err
	}
	if n < len(entries) {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

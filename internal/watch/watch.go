// Package watch reports image files created in a single directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"auditsnap/internal/logging"
)

const DefaultPollInterval = 500 * time.Millisecond

var ErrNotDirectory = errors.New("watch path is not a directory")

// Handler receives the path of each newly created matching file. It is
// called from the watcher goroutine and must not block.
type Handler func(path string)

// Options configures a Watcher.
type Options struct {
	Dir          string
	Extensions   []string
	Poll         bool
	PollInterval time.Duration
}

// Watcher observes Dir non-recursively. It prefers fsnotify and falls back
// to polling when a notifier cannot be created.
type Watcher struct {
	opts    Options
	handler Handler
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	mode   string
}

func New(opts Options, handler Handler, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".png"}
	}
	return &Watcher{
		opts:    opts,
		handler: handler,
		logger:  logger.With(logging.String("component", "watch")),
	}
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.opts.Dir }

// Start begins watching. Calling Start on a running watcher is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return nil
	}

	info, err := os.Stat(w.opts.Dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.opts.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: %w", w.opts.Dir, ErrNotDirectory)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	var notifier *fsnotify.Watcher
	if !w.opts.Poll {
		notifier, err = newNotifier(w.opts.Dir)
		if err != nil {
			w.logger.Warn("fsnotify unavailable, polling instead", logging.Error(err))
		}
	}

	if notifier != nil {
		w.mode = "fsnotify"
		go func() {
			defer close(done)
			w.runNotify(runCtx, notifier)
		}()
	} else {
		w.mode = "poll"
		seen := w.snapshot()
		go func() {
			defer close(done)
			w.runPoll(runCtx, seen)
		}()
	}

	w.cancel, w.done = cancel, done
	w.logger.Info("watching", logging.String("dir", w.opts.Dir), logging.String("mode", w.mode))
	return nil
}

// Stop ends the watch and waits for the watcher goroutine. Files already
// handed to the handler are unaffected.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	w.logger.Info("stopped watching", logging.String("dir", w.opts.Dir))
}

// Running reports whether the watcher is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

// Mode reports "fsnotify" or "poll" for the last Start.
func (w *Watcher) Mode() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// Matches reports whether name has one of exts, compared case-insensitively.
func Matches(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

func newNotifier(dir string) (*fsnotify.Watcher, error) {
	n, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := n.Add(dir); err != nil {
		_ = n.Close()
		return nil, err
	}
	return n, nil
}

func (w *Watcher) runNotify(ctx context.Context, n *fsnotify.Watcher) {
	defer n.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-n.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			w.emit(event.Name)
		case err, ok := <-n.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) runPoll(ctx context.Context, seen map[string]struct{}) {
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seen = w.scan(seen)
		}
	}
}

// snapshot records the files present before polling starts so they are not
// reported as new.
func (w *Watcher) snapshot() map[string]struct{} {
	seen := make(map[string]struct{})
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		return seen
	}
	for _, e := range entries {
		seen[e.Name()] = struct{}{}
	}
	return seen
}

func (w *Watcher) scan(seen map[string]struct{}) map[string]struct{} {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		w.logger.Warn("poll failed", logging.Error(err))
		return seen
	}
	current := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		name := e.Name()
		current[name] = struct{}{}
		if _, ok := seen[name]; ok {
			continue
		}
		if e.IsDir() {
			continue
		}
		w.emit(filepath.Join(w.opts.Dir, name))
	}
	return current
}

func (w *Watcher) emit(path string) {
	if !Matches(path, w.opts.Extensions) {
		return
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return
	}
	w.logger.Debug("file created", logging.String("path", path))
	if w.handler != nil {
		w.handler(path)
	}
}

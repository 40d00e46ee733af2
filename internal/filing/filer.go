package filing

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"auditsnap/internal/logging"
	"auditsnap/internal/status"
)

const (
	DefaultSettleDelay    = 300 * time.Millisecond
	DefaultLockRetries    = 12
	DefaultLockRetryDelay = 250 * time.Millisecond
)

// Sessions exposes the active session directory. An empty string means no
// session is active.
type Sessions interface {
	ActivePath() string
}

// Options tunes the Filer.
type Options struct {
	// SettleDelay is measured from discovery and lets the writer finish
	// before the first move attempt. Capture items skip it.
	SettleDelay    time.Duration
	LockRetries    int
	LockRetryDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.LockRetries <= 0 {
		o.LockRetries = DefaultLockRetries
	}
	if o.LockRetryDelay < 0 {
		o.LockRetryDelay = 0
	}
	return o
}

// Filer is the single consumer of an Inbox.
type Filer struct {
	inbox    *Inbox
	sessions Sessions
	mover    Mover
	status   *status.Log
	logger   *slog.Logger
	opts     Options

	sleep func(time.Duration)
	now   func() time.Time

	mu       sync.Mutex
	handlers []func(Result)
}

// NewFiler wires a Filer. A nil mover uses FileMover; a nil status log or
// logger disables that output.
func NewFiler(inbox *Inbox, sessions Sessions, mover Mover, log *status.Log, logger *slog.Logger, opts Options) *Filer {
	if mover == nil {
		mover = FileMover{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Filer{
		inbox:    inbox,
		sessions: sessions,
		mover:    mover,
		status:   log,
		logger:   logger.With(logging.String("component", "filer")),
		opts:     opts.withDefaults(),
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// OnResult registers a callback invoked on the Filer goroutine for every
// terminal result.
func (f *Filer) OnResult(fn func(Result)) {
	f.mu.Lock()
	f.handlers = append(f.handlers, fn)
	f.mu.Unlock()
}

// Run drains the inbox until ctx is done. An item that has been dequeued
// always reaches a terminal state before Run checks ctx again.
func (f *Filer) Run(ctx context.Context) error {
	f.logger.Debug("filer started")
	for {
		item, err := f.inbox.Next(ctx)
		if err != nil {
			f.logger.Debug("filer stopped", logging.Int("pending", f.inbox.Len()))
			return err
		}
		f.Process(item)
	}
}

// Process files a single item and reports the result to registered
// callbacks.
func (f *Filer) Process(item Item) Result {
	res := f.file(item)
	f.logger.Debug("item resolved",
		logging.String(logging.FieldItemID, item.ID),
		logging.String("path", item.Path),
		logging.String("state", res.State.String()),
		logging.Int("attempts", res.Attempts),
	)

	f.mu.Lock()
	handlers := slices.Clone(f.handlers)
	f.mu.Unlock()
	for _, fn := range handlers {
		fn(res)
	}
	return res
}

func (f *Filer) file(item Item) Result {
	if item.Origin != OriginCapture {
		if wait := f.opts.SettleDelay - f.now().Sub(item.DiscoveredAt); wait > 0 {
			f.sleep(wait)
		}
	}

	res := Result{Item: item}
	name := filepath.Base(item.Path)

	for res.Attempts < f.opts.LockRetries {
		res.Attempts++

		if _, err := os.Lstat(item.Path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				res.State, res.Err = StateDiscardedMissing, ErrMissingSource
				return res
			}
			res.State, res.Err = StateFailed, err
			f.pushError("Error moving file: %v", err)
			return res
		}

		dir := f.sessions.ActivePath()
		if dir == "" {
			res.State, res.Err = StateDiscardedNoSession, ErrNoActiveSession
			f.pushWarn("No active session. Start a session first.")
			return res
		}
		res.SessionDir = dir

		dest := UniquePath(filepath.Join(dir, name))
		err := f.mover.Move(item.Path, dest)
		switch {
		case err == nil:
			res.State, res.Destination, res.Err = StateMoved, dest, nil
			f.pushInfo("Moved: %s → %s", filepath.Base(dest), dir)
			return res
		case errors.Is(err, ErrLocked):
			res.Err = err
			if res.Attempts < f.opts.LockRetries {
				f.logger.Debug("source locked, retrying",
					logging.String(logging.FieldItemID, item.ID),
					logging.Int("attempt", res.Attempts),
					logging.Duration("delay", f.opts.LockRetryDelay),
				)
				f.sleep(f.opts.LockRetryDelay)
			}
		case errors.Is(err, ErrMissingSource) || !pathExists(item.Path):
			res.State, res.Err = StateDiscardedMissing, ErrMissingSource
			return res
		default:
			res.State, res.Err = StateFailed, err
			f.pushError("Error moving file: %v", err)
			return res
		}
	}

	res.State = StateSkippedLocked
	if res.Err == nil {
		res.Err = ErrLocked
	}
	f.pushWarn("Skipped (file still locked): %s", name)
	return res
}

func (f *Filer) pushInfo(format string, args ...any) {
	if f.status != nil {
		f.status.Infof(format, args...)
	}
}

func (f *Filer) pushWarn(format string, args ...any) {
	if f.status != nil {
		f.status.Warnf(format, args...)
	}
}

func (f *Filer) pushError(format string, args ...any) {
	if f.status != nil {
		f.status.Errorf(format, args...)
	}
}

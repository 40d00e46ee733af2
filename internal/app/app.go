// Package app wires the session manager, filing queue, status log and the
// optional capture, watch, manifest and preview components into one
// organizer shared by the tray and headless commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"auditsnap/internal/capture"
	"auditsnap/internal/clipboard"
	"auditsnap/internal/config"
	"auditsnap/internal/filing"
	"auditsnap/internal/logging"
	"auditsnap/internal/manifest"
	"auditsnap/internal/preview"
	"auditsnap/internal/session"
	"auditsnap/internal/status"
	"auditsnap/internal/watch"
)

// stagingMaxAge bounds how long an unfiled capture may sit in the staging
// directory before startup cleanup removes it.
const stagingMaxAge = 24 * time.Hour

var ErrAlreadyRunning = errors.New("another auditsnap instance is already running")

// App is the organizer.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	sessions  *session.Manager
	inbox     *filing.Inbox
	filer     *filing.Filer
	statusLog *status.Log
	view      *status.View
	refresher *status.Refresher
	capturer  *capture.Capturer
	recorder  *manifest.Recorder
	preview   *preview.Server

	lockPath string
	lock     *flock.Flock

	watchMu sync.Mutex
	watcher *watch.Watcher

	copyToClipboard atomic.Bool

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New builds an organizer from cfg. Nothing runs until Start.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app requires a config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	statusLog := status.NewLog(cfg.Status.MaxLines, logger.With(logging.String("component", "status")))
	view := status.NewView(cfg.Status.MaxLines)
	sessions := session.NewManager(cfg.Paths.OutputDir, session.Spec{
		Year:      cfg.Session.Year,
		Project:   cfg.Session.Project,
		AuditType: cfg.Session.AuditType,
		Sequence:  cfg.Session.StartSequence,
	})
	inbox := filing.NewInbox()
	filer := filing.NewFiler(inbox, sessions, nil, statusLog, logger, filing.Options{
		SettleDelay:    cfg.SettleDelay(),
		LockRetries:    cfg.Filing.LockRetries,
		LockRetryDelay: cfg.LockRetryDelay(),
	})

	a := &App{
		cfg:       cfg,
		logger:    logger.With(logging.String("component", "app")),
		sessions:  sessions,
		inbox:     inbox,
		filer:     filer,
		statusLog: statusLog,
		view:      view,
		refresher: status.NewRefresher(statusLog, view, cfg.StatusRefreshInterval()),
		capturer:  capture.New(cfg.Paths.StagingDir),
		preview:   preview.New(cfg.Preview.Bind, sessions, view, logger),
		lockPath:  filepath.Join(cfg.Paths.LogDir, "auditsnap.lock"),
	}
	a.lock = flock.New(a.lockPath)
	a.copyToClipboard.Store(cfg.Capture.CopyToClipboard)

	if cfg.Manifest.Enabled {
		a.recorder = manifest.NewRecorder(cfg.Manifest.FileName, logger)
		filer.OnResult(a.recorder.Observe)
	}
	filer.OnResult(a.preview.Observe)
	a.refresher.AddSink(a.preview.StatusSink)
	return a, nil
}

// Start takes the single-instance lock and launches the filing consumer and
// status refresher.
func (a *App) Start(ctx context.Context) error {
	if a.running.Load() {
		return errors.New("organizer already running")
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := a.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := a.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	if n, err := capture.CleanupStaging(a.cfg.Paths.StagingDir, stagingMaxAge); err != nil {
		a.logger.Warn("staging cleanup failed", logging.Error(err))
	} else if n > 0 {
		a.logger.Info("removed stale captures", logging.Int("count", n))
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		_ = a.filer.Run(runCtx)
	}()
	go func() {
		defer a.wg.Done()
		a.refresher.Run(runCtx)
	}()

	if a.cfg.Preview.Enabled {
		if err := a.preview.Start(); err != nil {
			a.logger.Warn("preview unavailable", logging.Error(err))
		}
	}

	a.running.Store(true)
	a.logger.Info("organizer started",
		logging.String("lock", a.lockPath),
		logging.Bool("manifest", a.recorder != nil),
		logging.Bool("preview", a.preview.Running()),
	)
	return nil
}

// Stop stops watching, lets the filer finish the item in hand, flushes the
// status log and releases the lock. Items still queued are dropped.
func (a *App) Stop() {
	if !a.running.Load() {
		return
	}
	a.StopWatching()

	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.preview.Shutdown(ctx); err != nil {
		a.logger.Warn("preview shutdown", logging.Error(err))
	}

	if err := a.lock.Unlock(); err != nil {
		a.logger.Warn("failed to release lock", logging.Error(err))
	}
	a.running.Store(false)
	a.logger.Info("organizer stopped", logging.Int("dropped", a.inbox.Len()))
}

// Running reports whether Start has succeeded and Stop has not been called.
func (a *App) Running() bool { return a.running.Load() }

func (a *App) Config() *config.Config          { return a.cfg }
func (a *App) Sessions() *session.Manager      { return a.sessions }
func (a *App) Status() *status.Log             { return a.statusLog }
func (a *App) Preview() *preview.Server        { return a.preview }
func (a *App) AddStatusSink(sink status.Sink)  { a.refresher.AddSink(sink) }
func (a *App) OnResult(fn func(filing.Result)) { a.filer.OnResult(fn) }

// FlushStatus drains pending status entries to the view and sinks. Commands
// that never Start call it before exiting.
func (a *App) FlushStatus() { a.refresher.Flush() }

// CreateSession makes spec the active session.
func (a *App) CreateSession(spec session.Spec) (*session.Session, error) {
	s, err := a.sessions.Create(spec)
	if err != nil {
		return nil, err
	}
	a.statusLog.Infof("Session folder created: %s", s.Path)
	return s, nil
}

// StartSession creates the session and begins watching, like the Start
// Session button.
func (a *App) StartSession(spec session.Spec) (*session.Session, error) {
	s, err := a.CreateSession(spec)
	if err != nil {
		return nil, err
	}
	return s, a.StartWatching()
}

// NextSession advances the sequence and activates the new session.
func (a *App) NextSession() (*session.Session, error) {
	s, err := a.sessions.Advance()
	if err != nil {
		return nil, err
	}
	a.statusLog.Infof("Session folder created: %s", s.Path)
	a.statusLog.Infof("Started new session: %s", s.Path)
	return s, nil
}

// StartWatching begins feeding new files in the watch directory into the
// filing queue.
func (a *App) StartWatching() error {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()

	if a.watcher != nil && a.watcher.Running() {
		a.statusLog.Infof("Watcher already active.")
		return nil
	}

	w := watch.New(watch.Options{
		Dir:          a.cfg.Paths.WatchDir,
		Extensions:   a.cfg.Watch.Extensions,
		Poll:         a.cfg.Watch.Poll,
		PollInterval: a.cfg.PollInterval(),
	}, a.enqueueWatched, a.logger)
	if err := w.Start(context.Background()); err != nil {
		a.statusLog.Errorf("Source folder not found: %s", a.cfg.Paths.WatchDir)
		return err
	}
	a.watcher = w
	a.statusLog.Infof("Started watching: %s", a.cfg.Paths.WatchDir)
	return nil
}

// StopWatching stops new enqueues. Queued items are still filed.
func (a *App) StopWatching() {
	a.watchMu.Lock()
	w := a.watcher
	a.watcher = nil
	a.watchMu.Unlock()

	if w == nil || !w.Running() {
		return
	}
	w.Stop()
	a.statusLog.Infof("Stopped watching.")
}

// Watching reports whether the watcher is active.
func (a *App) Watching() bool {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	return a.watcher != nil && a.watcher.Running()
}

func (a *App) enqueueWatched(path string) {
	a.inbox.Enqueue(filing.NewItem(path, filing.OriginWatch))
}

// CopyToClipboard reports whether captures are copied to the clipboard.
func (a *App) CopyToClipboard() bool { return a.copyToClipboard.Load() }

// SetCopyToClipboard toggles clipboard copies for later captures.
func (a *App) SetCopyToClipboard(enabled bool) {
	a.copyToClipboard.Store(enabled)
	a.cfg.Capture.CopyToClipboard = enabled
}

// SetPreviewEnabled starts or stops the session viewer.
func (a *App) SetPreviewEnabled(enabled bool) error {
	a.cfg.Preview.Enabled = enabled
	if enabled {
		return a.preview.Start()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return a.preview.Shutdown(ctx)
}

// Capture grabs the screen and queues the image for filing into the
// active session. A session is created from the stored fields when none is
// active yet.
func (a *App) Capture(ctx context.Context, kind capture.Kind, region image.Rectangle) (filing.Item, error) {
	item, err := a.stage(ctx, kind, region)
	if err != nil {
		return filing.Item{}, err
	}
	a.inbox.Enqueue(item)
	return item, nil
}

// CaptureNow grabs the screen and files the image before returning. It is
// for one-shot commands and must not be used while the organizer is
// running, since the filer is the only consumer of the queue.
func (a *App) CaptureNow(ctx context.Context, kind capture.Kind, region image.Rectangle) (filing.Result, error) {
	if a.Running() {
		return filing.Result{}, errors.New("organizer is running; use Capture")
	}
	item, err := a.stage(ctx, kind, region)
	if err != nil {
		return filing.Result{}, err
	}
	return a.filer.Process(item), nil
}

func (a *App) stage(ctx context.Context, kind capture.Kind, region image.Rectangle) (filing.Item, error) {
	if _, err := a.sessions.Ensure(); err != nil {
		a.statusLog.Errorf("Capture error: %v", err)
		return filing.Item{}, err
	}

	path, err := a.grab(ctx, kind, region)
	switch {
	case errors.Is(err, capture.ErrCancelled):
		a.statusLog.Infof("Region capture cancelled.")
		return filing.Item{}, err
	case errors.Is(err, capture.ErrBusy):
		a.logger.Debug("capture skipped, another is in progress")
		return filing.Item{}, err
	case err != nil:
		a.statusLog.Errorf("Capture error: %v", err)
		return filing.Item{}, err
	}
	a.statusLog.Infof("Saved: %s", filepath.Base(path))

	if a.copyToClipboard.Load() {
		if err := clipboard.CopyImage(path); err != nil {
			a.logger.Warn("clipboard copy failed", logging.Error(err))
		}
	}
	return filing.NewItem(path, filing.OriginCapture), nil
}

func (a *App) grab(ctx context.Context, kind capture.Kind, region image.Rectangle) (string, error) {
	switch kind {
	case capture.KindFull:
		return a.capturer.Full()
	case capture.KindDisplay:
		return a.capturer.Display(a.cfg.Capture.Display)
	case capture.KindRegion:
		if !region.Empty() {
			return a.capturer.Region(region)
		}
		path, err := a.capturer.Interactive(ctx)
		if errors.Is(err, capture.ErrUnsupported) {
			return a.capturer.Display(capture.CursorDisplay)
		}
		return path, err
	default:
		return "", fmt.Errorf("unknown capture kind %q", kind)
	}
}

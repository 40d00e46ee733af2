//go:build !notray

package main

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"
	"github.com/spf13/cobra"

	"auditsnap/internal/app"
	"auditsnap/internal/assets"
	"auditsnap/internal/capture"
	"auditsnap/internal/config"
	"auditsnap/internal/hotkey"
	"auditsnap/internal/logging"
	"auditsnap/internal/shell"
	"auditsnap/internal/startup"
	"auditsnap/internal/status"
)

const tooltipMax = 120

func newTrayCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tray",
		Short: "Run in the system tray (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(ctx)
		},
	}
}

type trayApp struct {
	ctx     *commandContext
	app     *app.App
	logger  *slog.Logger
	hotkeys *hotkey.Manager

	mu  sync.Mutex
	err error

	mSession   *systray.MenuItem
	mWatch     *systray.MenuItem
	mView      *systray.MenuItem
	mPreview   *systray.MenuItem
	mClipboard *systray.MenuItem
	mStartup   *systray.MenuItem
}

func runTray(ctx *commandContext) error {
	a, err := ctx.newApp()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	release, err := acquireInstance()
	if err != nil {
		return err
	}
	defer release()

	t := &trayApp{
		ctx:     ctx,
		app:     a,
		logger:  logger.With(logging.String("component", "tray")),
		hotkeys: hotkey.NewManager(logger),
	}
	systray.Run(t.onReady, t.onExit)
	return t.runErr()
}

func (t *trayApp) fail(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
	systray.Quit()
}

func (t *trayApp) runErr() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *trayApp) onReady() {
	a := t.app
	cfg := a.Config()

	systray.SetIcon(assets.Icon())
	systray.SetTitle("auditsnap")
	systray.SetTooltip("auditsnap - " + cfg.Capture.Hotkey + " to capture")

	if err := a.Start(context.Background()); err != nil {
		t.fail(err)
		return
	}
	a.AddStatusSink(t.statusSink)

	t.mSession = systray.AddMenuItem("Session: none", "Active session folder")
	t.mSession.Disable()
	systray.AddSeparator()

	mStart := systray.AddMenuItem("Start Session", "Create the session folder and start watching")
	mNext := systray.AddMenuItem("New Session", "Advance the sequence and create the next session folder")
	t.mWatch = systray.AddMenuItem("Start Watching", "Watch "+cfg.Paths.WatchDir+" for new screenshots")
	systray.AddSeparator()

	mFull := systray.AddMenuItem("Capture Full Screen", "Capture all displays into the session")
	mRegion := systray.AddMenuItem("Capture Region", "Capture a region into the session")
	systray.AddSeparator()

	mOpen := systray.AddMenuItem("Open Session Folder", "Open the active session folder")
	t.mView = systray.AddMenuItem("View Session", "Open the session viewer in the browser")
	t.mPreview = systray.AddMenuItemCheckbox("Enable Viewer", "Serve the session viewer", cfg.Preview.Enabled)
	systray.AddSeparator()

	t.mClipboard = systray.AddMenuItemCheckbox("Copy to Clipboard", "Copy each capture to the clipboard", a.CopyToClipboard())
	t.mStartup = systray.AddMenuItemCheckbox("Start on Boot", "Start auditsnap at login", startup.IsEnabled())
	systray.AddSeparator()

	mQuit := systray.AddMenuItem("Quit", "Quit auditsnap")

	if !cfg.Preview.Enabled {
		t.mView.Disable()
	}

	err := t.hotkeys.Register(
		hotkey.Binding{Name: "capture", Hotkey: cfg.Capture.Hotkey, Handler: func() { t.capture(capture.KindFull) }},
		hotkey.Binding{Name: "region", Hotkey: cfg.Capture.RegionHotkey, Handler: func() { t.capture(capture.KindRegion) }},
		hotkey.Binding{Name: "session", Hotkey: cfg.Capture.SessionHotkey, Handler: t.nextSession},
	)
	if err != nil {
		t.logger.Warn("hotkeys unavailable; use the tray menu", logging.Error(err))
	}

	go func() {
		for {
			select {
			case <-mStart.ClickedCh:
				t.startSession()
			case <-mNext.ClickedCh:
				t.nextSession()
			case <-t.mWatch.ClickedCh:
				t.toggleWatch()
			case <-mFull.ClickedCh:
				go t.capture(capture.KindFull)
			case <-mRegion.ClickedCh:
				go t.capture(capture.KindRegion)
			case <-mOpen.ClickedCh:
				t.openSessionFolder()
			case <-t.mView.ClickedCh:
				t.openViewer()
			case <-t.mPreview.ClickedCh:
				t.togglePreview()
			case <-t.mClipboard.ClickedCh:
				t.toggleClipboard()
			case <-t.mStartup.ClickedCh:
				t.toggleStartup()
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *trayApp) onExit() {
	t.hotkeys.Unregister()
	t.app.Stop()
}

func (t *trayApp) statusSink(entry status.Entry) {
	tip := "auditsnap - " + entry.Message
	if len(tip) > tooltipMax {
		tip = tip[:tooltipMax-3] + "..."
	}
	systray.SetTooltip(tip)
}

func (t *trayApp) refreshSession() {
	if s := t.app.Sessions().Active(); s != nil {
		t.mSession.SetTitle("Session: " + s.Name)
	}
	if t.app.Watching() {
		t.mWatch.SetTitle("Stop Watching")
	} else {
		t.mWatch.SetTitle("Start Watching")
	}
}

func (t *trayApp) startSession() {
	if t.app.Watching() {
		t.app.Status().Infof("Session already running!")
		return
	}
	if _, err := t.app.StartSession(t.ctx.sessionSpec()); err != nil {
		t.app.Status().Errorf("Could not start session: %v", err)
	}
	t.refreshSession()
}

func (t *trayApp) nextSession() {
	if _, err := t.app.NextSession(); err != nil {
		t.app.Status().Errorf("Could not create session: %v", err)
	}
	t.refreshSession()
}

func (t *trayApp) toggleWatch() {
	if t.app.Watching() {
		t.app.StopWatching()
	} else if err := t.app.StartWatching(); err != nil {
		t.logger.Warn("start watching failed", logging.Error(err))
	}
	t.refreshSession()
}

func (t *trayApp) capture(kind capture.Kind) {
	_, err := t.app.Capture(context.Background(), kind, image.Rectangle{})
	if err != nil && !errors.Is(err, capture.ErrBusy) {
		t.logger.Debug("capture failed", logging.String("kind", string(kind)), logging.Error(err))
	}
	t.refreshSession()
}

func (t *trayApp) openSessionFolder() {
	path := t.app.Sessions().ActivePath()
	if path == "" {
		t.app.Status().Warnf("No active session. Start a session first.")
		return
	}
	if err := shell.Open(path); err != nil {
		t.logger.Warn("open session folder failed", logging.Error(err))
	}
}

func (t *trayApp) openViewer() {
	if url := t.app.Preview().URL(); url != "" {
		if err := shell.Open(url); err != nil {
			t.logger.Warn("open viewer failed", logging.Error(err))
		}
	}
}

func (t *trayApp) togglePreview() {
	enable := !t.mPreview.Checked()
	if err := t.app.SetPreviewEnabled(enable); err != nil {
		t.logger.Warn("toggle viewer failed", logging.Error(err))
		return
	}
	if enable {
		t.mPreview.Check()
		t.mView.Enable()
	} else {
		t.mPreview.Uncheck()
		t.mView.Disable()
	}
	t.saveConfig(func(c *config.Config) { c.Preview.Enabled = enable })
}

func (t *trayApp) toggleClipboard() {
	enable := !t.mClipboard.Checked()
	t.app.SetCopyToClipboard(enable)
	if enable {
		t.mClipboard.Check()
	} else {
		t.mClipboard.Uncheck()
	}
	t.saveConfig(func(c *config.Config) { c.Capture.CopyToClipboard = enable })
}

func (t *trayApp) toggleStartup() {
	if t.mStartup.Checked() {
		if err := startup.Disable(); err != nil {
			t.logger.Warn("disable start on boot failed", logging.Error(err))
			return
		}
		t.mStartup.Uncheck()
		return
	}
	if err := startup.Enable(); err != nil {
		t.logger.Warn("enable start on boot failed", logging.Error(err))
		return
	}
	t.mStartup.Check()
}

// saveConfig persists a tray toggle without writing back flag overrides
// or expanded paths.
func (t *trayApp) saveConfig(mutate func(*config.Config)) {
	path := t.ctx.configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			t.logger.Warn("resolve config path", logging.Error(err))
			return
		}
		path = p
	}
	if err := config.Update(path, mutate); err != nil {
		t.logger.Warn("save config failed", logging.Error(err))
	}
}

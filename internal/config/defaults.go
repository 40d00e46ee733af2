package config

import (
	"strconv"
	"time"
)

const (
	defaultProject           = "CSP"
	defaultAuditType         = "Annual"
	defaultWatchDir          = "~/Pictures/Screenshots"
	defaultOutputDir         = "~/Documents/Evidence"
	defaultStagingDir        = "~/.local/share/auditsnap/staging"
	defaultLogDir            = "~/.local/share/auditsnap/logs"
	defaultPollIntervalMS    = 500
	defaultSettleDelayMS     = 300
	defaultLockRetries       = 12
	defaultLockRetryDelayMS  = 250
	defaultStatusMaxLines    = 400
	defaultStatusRefreshMS   = 60
	defaultHotkey            = "Ctrl+Shift+S"
	defaultRegionHotkey      = "Ctrl+Shift+R"
	defaultSessionHotkey     = "Ctrl+Shift+N"
	defaultPreviewBind       = "127.0.0.1:8765"
	defaultManifestFileName  = ".auditsnap-manifest.jsonl"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultDisplayUnderMouse = -1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Session: Session{
			Year:          strconv.Itoa(time.Now().Year()),
			Project:       defaultProject,
			AuditType:     defaultAuditType,
			StartSequence: 1,
		},
		Paths: Paths{
			WatchDir:   defaultWatchDir,
			OutputDir:  defaultOutputDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Watch: Watch{
			Extensions:     []string{".png"},
			PollIntervalMS: defaultPollIntervalMS,
		},
		Filing: Filing{
			SettleDelayMS:    defaultSettleDelayMS,
			LockRetries:      defaultLockRetries,
			LockRetryDelayMS: defaultLockRetryDelayMS,
		},
		Status: Status{
			MaxLines:          defaultStatusMaxLines,
			RefreshIntervalMS: defaultStatusRefreshMS,
		},
		Capture: Capture{
			Hotkey:        defaultHotkey,
			RegionHotkey:  defaultRegionHotkey,
			SessionHotkey: defaultSessionHotkey,
			Display:       defaultDisplayUnderMouse,
		},
		Preview: Preview{
			Bind: defaultPreviewBind,
		},
		Manifest: Manifest{
			FileName: defaultManifestFileName,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

// Session holds the naming fields used to derive session folders.
type Session struct {
	Year          string `toml:"year"`
	Project       string `toml:"project"`
	AuditType     string `toml:"audit_type"`
	StartSequence int    `toml:"start_sequence"`
}

// Paths contains the directories auditsnap reads from and writes to.
type Paths struct {
	WatchDir   string `toml:"watch_dir"`
	OutputDir  string `toml:"output_dir"`
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Watch configures new-file detection in WatchDir.
type Watch struct {
	Extensions     []string `toml:"extensions"`
	Poll           bool     `toml:"poll"`
	PollIntervalMS int      `toml:"poll_interval_ms"`
}

// Filing configures the filing consumer.
type Filing struct {
	SettleDelayMS    int `toml:"settle_delay_ms"`
	LockRetries      int `toml:"lock_retries"`
	LockRetryDelayMS int `toml:"lock_retry_delay_ms"`
}

// Status configures the operator status log.
type Status struct {
	MaxLines          int `toml:"max_lines"`
	RefreshIntervalMS int `toml:"refresh_interval_ms"`
}

// Capture configures screen capture and its hotkeys.
type Capture struct {
	Hotkey          string `toml:"hotkey"`
	RegionHotkey    string `toml:"region_hotkey"`
	SessionHotkey   string `toml:"session_hotkey"`
	Display         int    `toml:"display"`
	CopyToClipboard bool   `toml:"copy_to_clipboard"`
}

// Preview configures the local session viewer.
type Preview struct {
	Enabled bool   `toml:"enabled"`
	Bind    string `toml:"bind"`
}

// Manifest configures the per-session evidence manifest.
type Manifest struct {
	Enabled  bool   `toml:"enabled"`
	FileName string `toml:"file_name"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for auditsnap.
type Config struct {
	Session  Session  `toml:"session"`
	Paths    Paths    `toml:"paths"`
	Watch    Watch    `toml:"watch"`
	Filing   Filing   `toml:"filing"`
	Status   Status   `toml:"status"`
	Capture  Capture  `toml:"capture"`
	Preview  Preview  `toml:"preview"`
	Manifest Manifest `toml:"manifest"`
	Logging  Logging  `toml:"logging"`
}

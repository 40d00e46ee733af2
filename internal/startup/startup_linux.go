//go:build linux

package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Path returns the XDG autostart desktop entry.
func Path() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "autostart", appName+".desktop"), nil
}

// Enable writes an autostart entry for the running executable.
func Enable() error {
	exePath, err := os.Executable()
	if err != nil {
		return err
	}
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}
	return os.WriteFile(path, []byte(desktopEntry(exePath)), 0o644)
}

func desktopEntry(exePath string) string {
	fields := append([]string{execQuote(exePath)}, launchArgs...)
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=" + appName + "\n")
	b.WriteString("Comment=File audit screenshots into session folders\n")
	b.WriteString("Exec=" + strings.Join(fields, " ") + "\n")
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

// execQuote applies the desktop entry quoting rules for the Exec key.
func execQuote(arg string) string {
	if !strings.ContainsAny(arg, " \t\"'\\$`") {
		return arg
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return `"` + r.Replace(arg) + `"`
}

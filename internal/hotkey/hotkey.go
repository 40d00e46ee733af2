// Package hotkey registers global keyboard shortcuts.
package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"auditsnap/internal/logging"
)

var ErrUnsupported = errors.New("global hotkeys are not supported on this platform")

// Modifier bits match the Win32 RegisterHotKey flags.
type Modifier uint32

const (
	ModAlt   Modifier = 0x0001
	ModCtrl  Modifier = 0x0002
	ModShift Modifier = 0x0004
	ModWin   Modifier = 0x0008
)

// Handler runs on its own goroutine each time the combo is pressed.
type Handler func()

// Combo is a parsed shortcut. Key is a Windows virtual-key code.
type Combo struct {
	Modifiers Modifier
	Key       uint32
	Text      string
}

// Binding ties a shortcut string to a handler.
type Binding struct {
	Name    string
	Hotkey  string
	Handler Handler
}

var namedKeys = map[string]uint32{
	"printscreen": 0x2C,
	"prtsc":       0x2C,
	"space":       0x20,
	"pageup":      0x21,
	"pagedown":    0x22,
	"end":         0x23,
	"home":        0x24,
	"insert":      0x2D,
	"delete":      0x2E,
}

// Parse reads shortcuts such as "Ctrl+Shift+S", "Alt+F9" or "PrintScreen".
// Names are case-insensitive and exactly one non-modifier key is required.
func Parse(text string) (Combo, error) {
	combo := Combo{Text: strings.TrimSpace(text)}
	if combo.Text == "" {
		return Combo{}, errors.New("empty hotkey")
	}

	haveKey := false
	for _, part := range strings.Split(combo.Text, "+") {
		token := strings.ToLower(strings.TrimSpace(part))
		switch token {
		case "ctrl", "control":
			combo.Modifiers |= ModCtrl
			continue
		case "shift":
			combo.Modifiers |= ModShift
			continue
		case "alt":
			combo.Modifiers |= ModAlt
			continue
		case "win", "super", "cmd":
			combo.Modifiers |= ModWin
			continue
		}

		key, ok := keyCode(token)
		if !ok {
			return Combo{}, fmt.Errorf("hotkey %q: unknown key %q", text, part)
		}
		if haveKey {
			return Combo{}, fmt.Errorf("hotkey %q: more than one key", text)
		}
		combo.Key, haveKey = key, true
	}
	if !haveKey {
		return Combo{}, fmt.Errorf("hotkey %q: missing key", text)
	}
	return combo, nil
}

func keyCode(token string) (uint32, bool) {
	if code, ok := namedKeys[token]; ok {
		return code, true
	}
	if len(token) == 1 {
		c := token[0]
		switch {
		case c >= 'a' && c <= 'z':
			return uint32(c-'a') + 0x41, true
		case c >= '0' && c <= '9':
			return uint32(c-'0') + 0x30, true
		}
	}
	if len(token) >= 2 && token[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(token[1:], "%d", &n); err == nil && n >= 1 && n <= 24 && fmt.Sprint(n) == token[1:] {
			return 0x70 + uint32(n-1), true
		}
	}
	return 0, false
}

type registered struct {
	Binding
	combo Combo
}

// Manager owns a set of registered bindings.
type Manager struct {
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	threadID uint32
	done     chan struct{}
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{logger: logger.With(logging.String("component", "hotkey"))}
}

// Register parses and registers every binding, replacing any earlier set.
// Bindings with an empty Hotkey are skipped.
func (m *Manager) Register(bindings ...Binding) error {
	var regs []registered
	for _, b := range bindings {
		if strings.TrimSpace(b.Hotkey) == "" {
			continue
		}
		combo, err := Parse(b.Hotkey)
		if err != nil {
			return fmt.Errorf("%s: %w", b.Name, err)
		}
		regs = append(regs, registered{Binding: b, combo: combo})
	}
	m.Unregister()
	if len(regs) == 0 {
		return nil
	}
	return m.register(regs)
}

// Unregister removes all bindings. It is safe to call when nothing is
// registered.
func (m *Manager) Unregister() {
	m.unregister()
}

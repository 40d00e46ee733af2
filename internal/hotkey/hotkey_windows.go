//go:build windows

package hotkey

import (
	"fmt"
	"runtime"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"auditsnap/internal/logging"
)

const (
	modNoRepeat = 0x4000
	wmHotkey    = 0x0312
	wmQuit      = 0x0012
)

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procRegisterHotKey     = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32.NewProc("UnregisterHotKey")
	procGetMessage         = user32.NewProc("GetMessageW")
	procPostThreadMessage  = user32.NewProc("PostThreadMessageW")
	procGetCurrentThreadId = kernel32.NewProc("GetCurrentThreadId")
)

type msg struct {
	HWnd     uintptr
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       struct{ X, Y int32 }
	LPrivate uint32
}

// register runs the message loop on a locked OS thread because Win32 binds
// thread-level hotkeys to the registering thread.
func (m *Manager) register(regs []registered) error {
	result := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)

		for i, r := range regs {
			ret, _, err := procRegisterHotKey.Call(0, uintptr(i+1), uintptr(uint32(r.combo.Modifiers)|modNoRepeat), uintptr(r.combo.Key))
			if ret == 0 {
				for j := 0; j < i; j++ {
					procUnregisterHotKey.Call(0, uintptr(j+1))
				}
				result <- fmt.Errorf("register %s (%s): %v", r.Name, r.Hotkey, err)
				return
			}
			m.logger.Info("hotkey registered", logging.String("name", r.Name), logging.String("hotkey", r.Hotkey))
		}

		tid, _, _ := procGetCurrentThreadId.Call()
		m.mu.Lock()
		m.running, m.threadID, m.done = true, uint32(tid), done
		m.mu.Unlock()
		result <- nil

		m.loop(regs)

		for i := range regs {
			procUnregisterHotKey.Call(0, uintptr(i+1))
		}
	}()

	return <-result
}

func (m *Manager) loop(regs []registered) {
	var message msg
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&message)), 0, 0, 0)
		if int32(ret) <= 0 {
			m.logger.Debug("hotkey loop exiting", logging.Int("ret", int(int32(ret))))
			return
		}
		if message.Message != wmHotkey {
			continue
		}
		id := int(message.WParam)
		if id < 1 || id > len(regs) {
			continue
		}
		r := regs[id-1]
		m.logger.Debug("hotkey pressed", logging.String("name", r.Name))
		if r.Handler != nil {
			go r.Handler()
		}
	}
}

func (m *Manager) unregister() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	tid, done := m.threadID, m.done
	m.running, m.threadID, m.done = false, 0, nil
	m.mu.Unlock()

	procPostThreadMessage.Call(uintptr(tid), wmQuit, 0, 0)
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		m.logger.Warn("hotkey loop did not exit within timeout")
	}
}

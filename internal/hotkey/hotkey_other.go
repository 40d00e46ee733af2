//go:build !windows

package hotkey

func (m *Manager) register([]registered) error {
	return ErrUnsupported
}

func (m *Manager) unregister() {}

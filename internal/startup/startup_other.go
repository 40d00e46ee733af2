//go:build !windows && !linux

package startup

func Path() (string, error) {
	return "", ErrUnsupported
}

func Enable() error {
	return ErrUnsupported
}

//go:build !windows

package clipboard

func copyDIB([]byte) error {
	return ErrUnsupported
}

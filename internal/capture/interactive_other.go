//go:build !darwin

package capture

import "context"

// Interactive is only available where the OS ships a region picker.
func (c *Capturer) Interactive(context.Context) (string, error) {
	return "", ErrUnsupported
}

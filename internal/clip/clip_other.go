//go:build !darwin && !windows && !linux

package clip

import "fmt"

// newSystem reports that platforms other than macOS, Windows and Linux have
// no system clipboard (containers, BSDs, wasm).
func newSystem() (Backend, error) {
	return nil, fmt.Errorf("%w: system: unsupported platform", ErrUnavailable)
}

package clip

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// execBackend stores text through the platform's clipboard utilities
// (pbcopy/pbpaste, xclip, xsel, wl-copy, clip.exe). It needs no cgo but can
// only hold text, so URI clips are written as their URI string.
type execBackend struct{}

func newExec() (Backend, error) {
	if clipboard.Unsupported {
		return nil, fmt.Errorf("%w: exec: no clipboard utility found", ErrUnavailable)
	}
	return execBackend{}, nil
}

func (execBackend) Name() string { return "clipboard utilities" }

func (execBackend) Primary() (*Clip, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return FromText(text), nil
}

func (execBackend) SetPrimary(c *Clip) error {
	it, ok := c.First()
	if !ok {
		return errEmptyClip
	}
	if len(it.Data) > 0 {
		return fmt.Errorf("unsupported MIME type: %s", it.DataMIME)
	}
	if err := clipboard.WriteAll(it.CoerceToText()); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (execBackend) Close() {}

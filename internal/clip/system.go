//go:build darwin || windows || linux

package clip

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// systemBackend writes through golang.design/x/clipboard, which stores one
// format at a time: text or PNG image. URI clips that reference a staged PNG
// file are written as the image itself; other URIs are written as text and
// recognised again on read by FromText.
type systemBackend struct {
	mu        sync.Mutex
	lastURI   *Clip
	lastImage []byte
}

// newSystem initialises the system clipboard. clipboard.Init is called here
// rather than in init() so that CLI sub-commands that never open a backend
// don't fail on headless systems.
func newSystem() (Backend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("%w: system: %v", ErrUnavailable, err)
	}
	return &systemBackend{}, nil
}

func (b *systemBackend) Name() string { return "system clipboard" }

func (b *systemBackend) Primary() (*Clip, error) {
	if img := clipboard.Read(clipboard.FmtImage); len(img) > 0 {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.lastURI != nil && bytes.Equal(img, b.lastImage) {
			return b.lastURI, nil
		}
		return NewBinary("", "image/png", img), nil
	}
	text := clipboard.Read(clipboard.FmtText)
	if len(text) == 0 {
		return nil, nil
	}
	return FromText(string(text)), nil
}

func (b *systemBackend) SetPrimary(c *Clip) error {
	it, ok := c.First()
	if !ok {
		return errEmptyClip
	}

	switch {
	case it.URI != "":
		if img := stagedImage(it.URI); img != nil {
			if err := write(clipboard.FmtImage, img); err != nil {
				return err
			}
			b.remember(c, img)
			return nil
		}
		b.remember(nil, nil)
		return write(clipboard.FmtText, []byte(it.URI))
	case len(it.Data) > 0:
		if it.DataMIME != "image/png" {
			return fmt.Errorf("unsupported MIME type: %s", it.DataMIME)
		}
		b.remember(nil, nil)
		return write(clipboard.FmtImage, it.Data)
	default:
		b.remember(nil, nil)
		return write(clipboard.FmtText, []byte(it.Text))
	}
}

func (b *systemBackend) Close() {}

func (b *systemBackend) remember(c *Clip, img []byte) {
	b.mu.Lock()
	b.lastURI = c
	b.lastImage = img
	b.mu.Unlock()
}

// write returns an error when the library reports the write was refused,
// which it signals with a nil change channel.
func write(f clipboard.Format, data []byte) error {
	if clipboard.Write(f, data) == nil {
		return errors.New("clipboard write refused")
	}
	return nil
}

// Package clip models the primary clip and provides the clipboard backends
// that hold it. Build constraints select the system implementation:
//
//	system.go    — golang.design/x/clipboard (macOS, Windows, Linux X11)
//	exec.go      — atotto/clipboard, shelling out to pbcopy/xclip/xsel/wl-copy
//	memory.go    — in-process clip, for tests and headless hosts
//	clip_other.go — platforms with no system clipboard
package clip

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.klb.dev/capclip/internal/payload"
)

// MIME descriptors carried by a clip description.
const (
	MIMETextPlain   = "text/plain"
	MIMETextURIList = "text/uri-list"
)

// ErrUnavailable is returned by Open when no backend can reach a clipboard.
var ErrUnavailable = errors.New("clipboard unavailable")

var errEmptyClip = errors.New("empty clip")

// Description is the label and MIME types of a clip.
type Description struct {
	Label     string
	MIMETypes []string
}

// HasMIMEType reports whether the description declares mime.
func (d Description) HasMIMEType(mime string) bool {
	return slices.Contains(d.MIMETypes, mime)
}

// Item is one unit of clip content. Exactly one of Text, URI or Data is set.
type Item struct {
	Text     string
	URI      string
	Data     []byte
	DataMIME string
}

// CoerceToText returns the best text representation of the item: its text,
// else its URI, else its binary data as a base64 data URL.
func (it Item) CoerceToText() string {
	switch {
	case it.Text != "":
		return it.Text
	case it.URI != "":
		return it.URI
	case len(it.Data) > 0:
		return payload.EncodeDataURL(it.DataMIME, it.Data)
	}
	return ""
}

// Clip is the system's single current clipboard entry. It is replaced
// wholesale on each write; only the first item is ever consulted.
type Clip struct {
	Description
	Items []Item
}

// NewPlainText returns a text/plain clip.
func NewPlainText(label, text string) *Clip {
	return &Clip{
		Description: Description{Label: label, MIMETypes: []string{MIMETextPlain}},
		Items:       []Item{{Text: text}},
	}
}

// NewURI returns a text/uri-list clip referencing uri. The reference is
// opaque and stored exactly as given; an empty uri yields nil.
func NewURI(label, uri string) *Clip {
	if uri == "" {
		return nil
	}
	return &Clip{
		Description: Description{Label: label, MIMETypes: []string{MIMETextURIList}},
		Items:       []Item{{URI: uri}},
	}
}

// NewBinary returns a clip holding raw bytes of the given MIME type.
func NewBinary(label, mime string, data []byte) *Clip {
	return &Clip{
		Description: Description{Label: label, MIMETypes: []string{mime}},
		Items:       []Item{{Data: data, DataMIME: mime}},
	}
}

// FromText rebuilds a clip from clipboard text. Text that is exactly one
// content:// or file:// reference, with no surrounding whitespace and no line
// break, becomes a URI clip; anything else is plain text, unchanged. Backends
// that can only store text use this on read.
func FromText(text string) *Clip {
	if payload.IsReference(text) && text == strings.TrimSpace(text) && !strings.ContainsAny(text, "\r\n") {
		return NewURI("", text)
	}
	return NewPlainText("", text)
}

// First returns the first item of the clip.
func (c *Clip) First() (Item, bool) {
	if c == nil || len(c.Items) == 0 {
		return Item{}, false
	}
	return c.Items[0], true
}

// Backend is the interface that all clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Primary returns the current primary clip.
	// Returns nil, nil if the clipboard is empty.
	Primary() (*Clip, error)

	// SetPrimary replaces the primary clip.
	SetPrimary(c *Clip) error

	// Close releases any resources held by the backend.
	Close()
}

// Kind selects a backend implementation.
type Kind string

const (
	KindAuto   Kind = "auto"
	KindSystem Kind = "system"
	KindExec   Kind = "exec"
	KindMemory Kind = "memory"
)

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindAuto, KindSystem, KindExec, KindMemory:
		return k, nil
	case "":
		return KindAuto, nil
	default:
		return "", fmt.Errorf("unknown clipboard backend %q", s)
	}
}

// Open returns the backend for kind. KindAuto tries the system clipboard
// first and falls back to the exec backend. The error wraps ErrUnavailable
// when no clipboard can be reached.
func Open(kind Kind) (Backend, error) {
	switch kind {
	case KindMemory:
		return NewMemory(), nil
	case KindSystem:
		return newSystem()
	case KindExec:
		return newExec()
	}

	b, sysErr := newSystem()
	if sysErr == nil {
		return b, nil
	}
	b, execErr := newExec()
	if execErr == nil {
		return b, nil
	}
	return nil, errors.Join(sysErr, execErr)
}

// Package clipboard writes classified content to a clip backend and reads
// the primary clip back as a value and MIME type.
package clipboard

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"go.klb.dev/capclip/internal/clip"
	"go.klb.dev/capclip/internal/payload"
)

// User-facing failure messages, returned verbatim in WriteResponse.
const (
	MsgUnavailable = "Problem getting a reference to the system clipboard"
	MsgFormat      = "Problem formatting data"
	MsgWriteFailed = "Writing to the clipboard failed"
)

var (
	ErrUnavailable = errors.New("clipboard unavailable")
	ErrFormat      = errors.New("clip could not be built")
	ErrWriteFailed = errors.New("clipboard write failed")
)

// TypeURI is reported for every URI clip. URI clips are assumed to be images.
const TypeURI = "image/*"

// Outcome distinguishes the ways a write can end.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeWritten
	// OutcomeTextFallback means an image payload could not be decoded or
	// staged and the raw string was written as plain text instead.
	OutcomeTextFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWritten:
		return "written"
	case OutcomeTextFallback:
		return "text-fallback"
	default:
		return "failed"
	}
}

// ParseOutcome is the inverse of Outcome.String. Unknown names are
// OutcomeFailed.
func ParseOutcome(s string) Outcome {
	switch s {
	case "written":
		return OutcomeWritten
	case "text-fallback":
		return OutcomeTextFallback
	}
	return OutcomeFailed
}

// WriteResponse is the result of a write request.
type WriteResponse struct {
	Success      bool
	ErrorMessage string
	Outcome      Outcome
	// Err is one of ErrUnavailable, ErrFormat or ErrWriteFailed on failure.
	Err error
}

func failed(msg string, err error) WriteResponse {
	return WriteResponse{ErrorMessage: msg, Outcome: OutcomeFailed, Err: err}
}

// Data is the content of the primary clip.
type Data struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// ImageStager turns a data-URL image into a URI a clip can reference.
type ImageStager interface {
	StageDataURL(content string) (*url.URL, error)
}

// Clipboard is the accessor for one clip backend.
type Clipboard struct {
	backend clip.Backend
	stager  ImageStager
}

// New returns a Clipboard over backend. A nil backend means the clipboard
// service could not be reached: writes fail and reads find nothing.
func New(backend clip.Backend, stager ImageStager) *Clipboard {
	return &Clipboard{backend: backend, stager: stager}
}

// Backend returns the name of the backend, or "" when there is none.
func (c *Clipboard) Backend() string {
	if c.backend == nil {
		return ""
	}
	return c.backend.Name()
}

// Write classifies content and sets it as the primary clip.
func (c *Clipboard) Write(label, content string) WriteResponse {
	var (
		data    *clip.Clip
		outcome = OutcomeWritten
	)

	p := payload.Classify(content)
	switch p.Kind {
	case payload.KindReference:
		data = clip.NewURI(label, content)
	case payload.KindImage:
		data, outcome = c.imageClip(label, content)
	default:
		data = clip.NewPlainText(label, content)
	}

	resp := c.setPrimary(data)
	if resp.Success {
		resp.Outcome = outcome
	}
	return resp
}

// imageClip stages an inline image and returns a URI clip for it. On any
// failure the raw content is kept as plain text.
func (c *Clipboard) imageClip(label, content string) (*clip.Clip, Outcome) {
	if c.stager == nil {
		slog.Warn("no image stager, writing image as text")
		return clip.NewPlainText(label, content), OutcomeTextFallback
	}
	u, err := c.stager.StageDataURL(content)
	if err != nil {
		slog.Error("error handling base64 image", "err", err)
		return clip.NewPlainText(label, content), OutcomeTextFallback
	}
	return clip.NewURI(label, u.String()), OutcomeWritten
}

func (c *Clipboard) setPrimary(data *clip.Clip) (resp WriteResponse) {
	switch {
	case c.backend == nil:
		return failed(MsgUnavailable, ErrUnavailable)
	case data == nil:
		return failed(MsgFormat, ErrFormat)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("error writing to the clipboard", "panic", r)
			resp = failed(MsgWriteFailed, fmt.Errorf("%w: %v", ErrWriteFailed, r))
		}
	}()
	if err := c.backend.SetPrimary(data); err != nil {
		slog.Error("error writing to the clipboard", "backend", c.backend.Name(), "err", err)
		return failed(MsgWriteFailed, fmt.Errorf("%w: %w", ErrWriteFailed, err))
	}
	clip.LogClip("clipboard written", c.backend.Name(), data)
	return WriteResponse{Success: true, Outcome: OutcomeWritten}
}

// Read returns the primary clip as a value and MIME type. ok is false when
// there is no backend or nothing on the clipboard.
func (c *Clipboard) Read() (Data, bool) {
	if c.backend == nil {
		return Data{}, false
	}
	primary, err := c.backend.Primary()
	if err != nil {
		slog.Error("error reading the clipboard", "backend", c.backend.Name(), "err", err)
		return Data{}, false
	}
	item, ok := primary.First()
	if !ok {
		return Data{}, false
	}
	clip.LogClip("clipboard read", c.backend.Name(), primary)

	out := Data{Type: clip.MIMETextPlain}
	isURI := false
	switch {
	case primary.HasMIMEType(clip.MIMETextPlain):
		slog.Debug("got plaintext")
		out.Value = item.Text
	case primary.HasMIMEType(clip.MIMETextURIList):
		slog.Debug("got URI list")
		out.Value = item.URI
		out.Type = TypeURI
		isURI = true
	default:
		slog.Debug("not plaintext or URI", "types", primary.MIMETypes)
		out.Value = item.CoerceToText()
	}

	if !isURI {
		if mime, ok := payload.DataURLMIME(out.Value); ok && mime != "" {
			out.Type = mime
		}
	}
	return out, true
}

package clip

import (
	"context"
	"log/slog"
)

const previewLen = 120

// LogClip logs a clipboard event at INFO (backend, label, mime types) and
// DEBUG (text preview up to 120 chars, or byte size for binary items).
func LogClip(event, backend string, c *Clip) {
	if c == nil {
		return
	}
	slog.Info(event, "backend", backend, "label", c.Label, "types", c.MIMETypes)

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, it := range c.Items {
		switch {
		case it.Data != nil:
			slog.Debug("clip item", "mime", it.DataMIME, "size_bytes", len(it.Data))
		case it.URI != "":
			slog.Debug("clip item", "mime", MIMETextURIList, "uri", it.URI)
		default:
			slog.Debug("clip item", "mime", MIMETextPlain, "preview", preview(it.Text))
		}
	}
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewLen {
		return string(r[:previewLen]) + "…"
	}
	return s
}

// Package logging builds the slog logger capclip commands write to. Logs
// always go to stderr: stdout carries command output and the stdio bridge
// protocol.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var formatNames = map[string]Format{
	"text":  FormatText,
	"tint":  FormatText,
	"human": FormatText,
	"json":  FormatJSON,
}

// ParseFormat maps a --log-format value to a Format. Unknown values are auto.
func ParseFormat(s string) Format {
	if f, ok := formatNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f
	}
	return FormatAuto
}

// ParseLevel maps a --log-level value to a level. "warning" and "err" are
// accepted next to the slog names; anything else unparsable is info.
func ParseLevel(s string) slog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "warning":
		return slog.LevelWarn
	case "err":
		return slog.LevelError
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// IsTTY reports whether w is a terminal. Writers without a file descriptor
// never are.
func IsTTY(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// New returns a logger on w. Auto picks tinter on a terminal and JSON
// elsewhere; tinter output to a non-terminal is left uncoloured. JSON records
// carry the source position at debug level.
func New(w io.Writer, format Format, level slog.Level) *slog.Logger {
	tty := IsTTY(w)
	if format == FormatJSON || (format == FormatAuto && !tty) {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: level <= slog.LevelDebug,
		}))
	}
	return slog.New(tinter.NewHandler(w, &tinter.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !tty,
	}))
}

// Setup installs a stderr logger as the slog default. Call once after flag
// and config parsing.
func Setup(format Format, level slog.Level) {
	slog.SetDefault(New(os.Stderr, format, level))
}

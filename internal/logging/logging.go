// Package logging configures slog for the xlcheck command.
//
// Levels are parsed case-insensitively (debug, info, warn/warning, error);
// anything else falls back to info. Logs go to stderr so reports written to
// stdout stay machine-readable.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Format represents logger output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to w. Debug level adds source locations.
func New(w io.Writer, format Format, level string, attrs ...slog.Attr) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	}

	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	if len(attrs) > 0 {
		h = h.WithAttrs(attrs)
	}
	return slog.New(h)
}

// SetDefault installs a logger tagged with the module name and version as
// the slog default.
func SetDefault(w io.Writer, format Format, module, version, level string) *slog.Logger {
	l := New(w, format, level, slog.String("module", module), slog.String("version", version))
	slog.SetDefault(l)
	return l
}

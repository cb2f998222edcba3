// Package logging builds the structured JSON logger used across the service.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel converts a level name (debug, info, warn, warning, error) into a slog.Level.
// Unknown or empty names yield slog.LevelInfo.
func ParseLevel(name string) slog.Level {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// New returns a JSON logger writing to w. Debug level adds source locations.
func New(w io.Writer, module, version string, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	})
	return slog.New(handler).With(
		slog.String("module", module),
		slog.String("version", version),
	)
}

// SetDefault installs a stderr JSON logger as the slog default and returns it.
func SetDefault(module, version, level string) *slog.Logger {
	logger := New(os.Stderr, module, version, ParseLevel(level))
	slog.SetDefault(logger)
	return logger
}

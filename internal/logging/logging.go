// Package logging builds the process logger from the environment:
//
//   - LEDGERVIEW_LOG_LEVEL: debug, info, warn, error (default: info)
//   - LEDGERVIEW_LOG_FORMAT: json or text (default: text)
//   - LEDGERVIEW_LOG_OUTPUT: stdout, stderr, or a file path (default: stderr)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvLevel  = "LEDGERVIEW_LOG_LEVEL"
	EnvFormat = "LEDGERVIEW_LOG_FORMAT"
	EnvOutput = "LEDGERVIEW_LOG_OUTPUT"
)

// Config selects the handler. Zero values mean the defaults.
type Config struct {
	Level  string
	Format string
	Output string
}

// FromEnv reads Config from the LEDGERVIEW_LOG_* variables.
func FromEnv() Config {
	return Config{
		Level:  os.Getenv(EnvLevel),
		Format: os.Getenv(EnvFormat),
		Output: os.Getenv(EnvOutput),
	}
}

// New returns a logger for cfg and a close function for any opened file.
// An output file that cannot be opened falls back to stderr.
func New(cfg Config) (*slog.Logger, func() error) {
	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }
	switch out := cfg.Output; out {
	case "", "stderr":
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			w = f
			closeFn = f.Close
		}
	}
	return NewWriter(w, cfg), closeFn
}

// NewWriter returns a logger writing to w, ignoring cfg.Output.
func NewWriter(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel maps a level name onto a slog.Level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

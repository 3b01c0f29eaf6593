package gallery

import (
	"gallery-go/internal/manifest"
	"gallery-go/internal/retry"
)

// Logger provides structured logging for builds.
// The args follow slog conventions: alternating key/value pairs.
// The same logger is handed to the migrator and the retry loop.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	_ manifest.Logger = Logger(nil)
	_ retry.Logger    = Logger(nil)
)

// NopLogger discards all output. NewBuilder falls back to it when no logger is given.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

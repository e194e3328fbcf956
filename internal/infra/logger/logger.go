package logger

import (
	"io"
	"log/slog"
	"os"
)

// New собирает логгер сервиса: в dev: читаемый текст и debug, иначе JSON.
func New(env, service string) *slog.Logger {
	return NewWithWriter(os.Stdout, env, service)
}

// NewWithWriter: то же, что New, но в произвольный writer (CLI пишет в stderr).
func NewWithWriter(w io.Writer, env, service string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler
	if env == "dev" {
		opts.Level = slog.LevelDebug
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With("service", service)
}

// Package logging builds the process logger and threads it through
// context.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Options selects where log records go and how chatty they are.
type Options struct {
	Verbose bool   // include debug records
	Quiet   bool   // drop records unless a file is configured
	File    string // append records to this path instead of stderr
}

// New returns a logger configured with a text handler, plus a close
// func for any log file it opened. Quiet keeps stderr clean while the
// TUI owns the terminal.
func New(opts Options) (*slog.Logger, func() error, error) {
	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }
	switch {
	case opts.File != "":
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = f.Close
	case opts.Quiet:
		w = io.Discard
	}
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

type ctxKey struct{}

// NewContext returns a copy of ctx with the logger stored.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves a logger from ctx or returns slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// Package xlog wraps slog.Logger with the handler and construction
// conventions the reference repo's qlog package uses: a compact,
// CLI-friendly single-line format and a handful of named constructors for
// the common verbosity levels.
package xlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with a couple of process-exit convenience
// methods.
type Logger struct {
	*slog.Logger
}

// lineHandler formats each record as "LEVEL message key=value key=value".
type lineHandler struct {
	level  slog.Level
	output io.Writer
	attrs  []slog.Attr
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	switch r.Level {
	case slog.LevelDebug:
		b.WriteString("DEBUG ")
	case slog.LevelInfo:
		b.WriteString("INFO  ")
	case slog.LevelWarn:
		b.WriteString("WARN  ")
	case slog.LevelError:
		b.WriteString("ERROR ")
	}

	b.WriteString(r.Message)

	writeAttr := func(a slog.Attr) {
		b.WriteString(" ")
		b.WriteString(a.Key)
		b.WriteString("=")
		b.WriteString(a.Value.String())
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})

	b.WriteString("\n")
	_, err := h.output.Write([]byte(b.String()))
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &lineHandler{level: h.level, output: h.output, attrs: merged}
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	// Groups are not supported by this handler; attributes stay flat.
	return h
}

// New creates a Logger at the given level, writing to output (os.Stdout
// when output is nil).
func New(level slog.Level, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}
	return &Logger{Logger: slog.New(&lineHandler{level: level, output: output})}
}

// Default creates a Logger at INFO level writing to stdout.
func Default() *Logger { return New(slog.LevelInfo, os.Stdout) }

// Quiet creates a Logger at WARN level, suppressing info/debug noise —
// useful for the scaling loop once it's been observed to behave.
func Quiet() *Logger { return New(slog.LevelWarn, os.Stdout) }

// Verbose creates a Logger at DEBUG level.
func Verbose() *Logger { return New(slog.LevelDebug, os.Stdout) }

// Fatal logs msg at ERROR level and exits the process with status 1.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

// Fatalf formats msg and exits the process with status 1.
func (l *Logger) Fatalf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}

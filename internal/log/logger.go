// Package log is a small structured logger used by the squire
// command-line tools. It logs in JSON format on top of log/slog.
package log

import (
	"io"
	"log/slog"
)

// Logger is a structured logger that writes one JSON object per line.
type Logger struct {
	slogger *slog.Logger
	ns      string
}

// NewLogger creates a new Logger that writes to the given writer,
// typically os.Stderr.
func NewLogger(writer io.Writer) Logger {
	return Logger{
		slogger: slog.New(slog.NewJSONHandler(writer, nil)),
	}
}

// Debug logs a structured debug message with optional key-value pairs.
func (l *Logger) Debug(msg string, keyVals ...KV) {
	l.slogger.Debug(msg, l.args(keyVals...)...)
}

// Info logs a structured info message with optional key-value pairs.
func (l *Logger) Info(msg string, keyVals ...KV) {
	l.slogger.Info(msg, l.args(keyVals...)...)
}

// Warn logs a structured warning message with optional key-value pairs.
func (l *Logger) Warn(msg string, keyVals ...KV) {
	l.slogger.Warn(msg, l.args(keyVals...)...)
}

// Error logs a structured error message with optional key-value pairs.
func (l *Logger) Error(msg string, keyVals ...KV) {
	l.slogger.Error(msg, l.args(keyVals...)...)
}

// Ns returns a logger whose messages lead with the given namespace as
// an "ns" attribute, to differentiate logs from different parts of a
// program.
func (l *Logger) Ns(namespace string) Logger {
	return Logger{slogger: l.slogger, ns: namespace}
}

func (l *Logger) args(keyVals ...KV) []any {
	if l.ns != "" {
		return kvToArgsNs(l.ns, keyVals...)
	}
	return kvToArgs(keyVals...)
}

package logger

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

// Diagnostics go to stderr so report output on stdout stays pipeable.
// Debug lines are gated on the process-wide verbose flag; warnings and
// errors always print.

var verbose atomic.Bool

// SetVerbose toggles debug output for the whole process.
func SetVerbose(on bool) {
	verbose.Store(on)
}

// Verbose reports whether debug output is enabled.
func Verbose() bool {
	return verbose.Load()
}

// Logger writes timestamped diagnostic lines for one component.
type Logger struct {
	component string
	writer    io.Writer
}

// New creates a logger for the named component.
func New(component string) *Logger {
	return &Logger{component: component, writer: os.Stderr}
}

// WithWriter redirects output, mainly for tests.
func (l *Logger) WithWriter(w io.Writer) *Logger {
	return &Logger{component: l.component, writer: w}
}

// Debugf logs only when verbose output is enabled.
func (l *Logger) Debugf(format string, args ...any) {
	if Verbose() {
		l.emit("DEBUG", format, args...)
	}
}

// Warnf always logs.
func (l *Logger) Warnf(format string, args ...any) {
	l.emit("WARN", format, args...)
}

// Errorf always logs.
func (l *Logger) Errorf(format string, args ...any) {
	l.emit("ERROR", format, args...)
}

func (l *Logger) emit(level, format string, args ...any) {
	component := l.component
	if component == "" {
		component = "main"
	}
	fmt.Fprintf(l.writer, "[%s] %s [%s] %s\n",
		time.Now().Format("15:04:05.000"), level, component,
		fmt.Sprintf(format, args...))
}

package utils

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Logger provides structured logging for the application
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	debug  bool
}

// NewLogger creates a new logger writing to stdout and stderr
func NewLogger(debug bool) *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr, debug)
}

// NewLoggerTo creates a logger with explicit writers
func NewLoggerTo(out, errOut io.Writer, debug bool) *Logger {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = out
	}
	return &Logger{out: out, errOut: errOut, debug: debug}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewLoggerTo(io.Discard, io.Discard, false)
}

// Success logs a success message in green
func (l *Logger) Success(msg string, args ...interface{}) {
	green := color.New(color.FgGreen).SprintFunc()
	l.write(l.out, green("✓ "+msg)+"\n", args...)
}

// Info logs an informational message in cyan
func (l *Logger) Info(msg string, args ...interface{}) {
	cyan := color.New(color.FgCyan).SprintFunc()
	l.write(l.out, cyan(msg)+"\n", args...)
}

// Warning logs a warning message in yellow
func (l *Logger) Warning(msg string, args ...interface{}) {
	yellow := color.New(color.FgYellow).SprintFunc()
	l.write(l.out, yellow("⚠ "+msg)+"\n", args...)
}

// Error logs an error message in red
func (l *Logger) Error(msg string, err error, args ...interface{}) {
	red := color.New(color.FgRed).SprintFunc()
	if err != nil {
		l.write(l.errOut, red("✗ "+msg+": %v")+"\n", append(args, err)...)
	} else {
		l.write(l.errOut, red("✗ "+msg)+"\n", args...)
	}
}

// Debug logs a debug message in dim/gray
func (l *Logger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	dim := color.New(color.Faint).SprintFunc()
	l.write(l.out, dim(msg)+"\n", args...)
}

// DryRun logs a dry-run action in yellow
func (l *Logger) DryRun(action string, msg string, args ...interface{}) {
	yellow := color.New(color.FgYellow).SprintFunc()
	l.write(l.out, yellow("[DRY-RUN] %s: "+msg)+"\n", append([]interface{}{action}, args...)...)
}

// fan-out workers log concurrently; keep lines whole
func (l *Logger) write(w io.Writer, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

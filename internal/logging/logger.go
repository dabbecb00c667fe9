package logging

import (
	"fmt"
	"io"
	logpkg "log"
	"strings"
)

// Level defines severity for logger output.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel maps a level name to its value. Unknown names yield LevelInfo.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToLower(name) {
	case "error":
		return LevelError, true
	case "warn", "warning":
		return LevelWarn, true
	case "info", "":
		return LevelInfo, true
	case "debug":
		return LevelDebug, true
	}
	return LevelInfo, false
}

// Logger provides leveled logging on top of the standard library logger.
// A nil *Logger discards everything.
type Logger struct {
	level  Level
	logger *logpkg.Logger
}

// New creates a logger writing to w.
func New(w io.Writer, level Level, prefix string) *Logger {
	return &Logger{
		level:  level,
		logger: logpkg.New(w, prefix, logpkg.LstdFlags|logpkg.Lmicroseconds),
	}
}

// Discard returns a logger that drops all output.
func Discard() *Logger {
	return New(io.Discard, LevelError, "")
}

// SetLevel adjusts current logging level.
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.level = level
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelError
	}
	return l.level
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level <= l.level
}

func (l *Logger) logf(target Level, format string, args ...any) {
	if !l.Enabled(target) {
		return
	}
	l.logger.Output(3, fmt.Sprintf(format, args...))
}

// Debugf prints debug messages.
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, format, args...)
}

// Infof prints info messages.
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, format, args...)
}

// Warnf prints warning messages.
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelWarn, format, args...)
}

// Errorf prints error messages.
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, format, args...)
}

// Package logx provides the small leveled logger used across the prefab
// pipeline. It wraps the standard library's log.Logger rather than pulling
// in a structured logging framework, matching the plain stdlib-backed
// logging style the example pack's service code uses for its own
// diagnostics.
package logx

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level selects which messages a Logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
	LevelSilent
)

// Logger is a minimal leveled logger. The zero value, like a nil *Logger,
// discards every message; New and Default return loggers that write.
type Logger struct {
	out   *log.Logger
	level Level
}

// New creates a Logger writing to w at the given level.
func New(w io.Writer, level Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		out:   log.New(w, "", log.LstdFlags),
		level: level,
	}
}

// Default returns a Logger writing to os.Stderr at LevelInfo.
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

func (l *Logger) log(level Level, tag, format string, args ...any) {
	if l == nil || l.out == nil || level < l.level {
		return
	}
	l.out.Output(3, tag+" "+fmt.Sprintf(format, args...))
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, args ...any) {
	l.log(LevelDebug, "DEBUG", format, args...)
}

// Infof logs an info-level message.
func (l *Logger) Infof(format string, args ...any) {
	l.log(LevelInfo, "INFO ", format, args...)
}

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, args ...any) {
	l.log(LevelError, "ERROR", format, args...)
}

// Package logger provides the leveled, optionally colored logger used by
// the command-line layer. Library packages receive it through their own
// small consumer interfaces and default to silence.
package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Level defines log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

// Logger writes timestamped, leveled messages.
type Logger struct {
	out       io.Writer
	useColors bool
	level     Level
}

// New creates a Logger writing to out.
func New(out io.Writer, verbose bool, useColors bool) *Logger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	return &Logger{out: out, useColors: useColors, level: level}
}

// WithLevel sets the level and returns the logger.
func (l *Logger) WithLevel(level Level) *Logger {
	l.level = level
	return l
}

// SetLevel sets the level from its string name.
func (l *Logger) SetLevel(name string) {
	l.WithLevel(parseLevel(name))
}

func parseLevel(name string) Level {
	switch strings.ToLower(name) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "none", "off":
		return LevelNone
	default:
		return LevelInfo
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(LevelDebug, "DEBUG", color.CyanString, format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(LevelInfo, "INFO", color.BlueString, format, args...)
}

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(LevelWarn, "WARN", color.YellowString, format, args...)
}

// Error logs an error.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(LevelError, "ERROR", color.RedString, format, args...)
}

func (l *Logger) emit(level Level, tag string, tint func(string, ...interface{}) string, format string, args ...interface{}) {
	if l.level > level {
		return
	}
	if l.useColors {
		tag = tint(tag)
	}
	fmt.Fprintf(l.out, "[%s %s] %s\n",
		time.Now().Format("15:04:05.000"), tag, fmt.Sprintf(format, args...))
}

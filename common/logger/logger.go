// Package logger provides the leveled printf-style logging facade used
// across the pipeline, backed by log/slog.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel represents log severity levels
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	currentLevel atomic.Int32

	backend atomic.Pointer[slog.Logger]
)

func init() {
	currentLevel.Store(int32(LevelInfo))
	backend.Store(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

// SetLevel sets the minimum log level.
func SetLevel(level LogLevel) {
	currentLevel.Store(int32(level))
}

// SetLevelName sets the minimum log level from its textual name
// (debug, info, warn, error). Unknown names leave the level unchanged.
func SetLevelName(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		SetLevel(LevelDebug)
	case "info":
		SetLevel(LevelInfo)
	case "warn", "warning":
		SetLevel(LevelWarn)
	case "error":
		SetLevel(LevelError)
	}
}

// SetBackend replaces the slog backend. Useful in tests.
func SetBackend(l *slog.Logger) {
	if l != nil {
		backend.Store(l)
	}
}

// Debugf logs a debug message
func Debugf(format string, args ...interface{}) {
	logf(LevelDebug, format, args...)
}

// Infof logs an info message
func Infof(format string, args ...interface{}) {
	logf(LevelInfo, format, args...)
}

// Warnf logs a warning message
func Warnf(format string, args ...interface{}) {
	logf(LevelWarn, format, args...)
}

// Errorf logs an error message
func Errorf(format string, args ...interface{}) {
	logf(LevelError, format, args...)
}

func logf(level LogLevel, format string, args ...interface{}) {
	if int32(level) < currentLevel.Load() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l := backend.Load()
	switch level {
	case LevelDebug:
		l.Debug(msg)
	case LevelInfo:
		l.Info(msg)
	case LevelWarn:
		l.Warn(msg)
	default:
		l.Error(msg)
	}
}

// Package logger provides the level-gated logging used across constellate.
package logger

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Level controls which calls actually reach the output stream.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu      sync.Mutex
	current = LevelInfo
	std     = log.New(os.Stderr, "", log.LstdFlags)
)

// SetLevel changes the minimum level that will be emitted.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to
// a Level, defaulting to LevelInfo for an unrecognized value.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func emit(l Level, prefix, msg string) {
	mu.Lock()
	defer mu.Unlock()
	if l < current {
		return
	}
	std.Printf("%s %s", prefix, msg)
}

// Debug logs a low-level diagnostic message.
func Debug(msg string) { emit(LevelDebug, "[DEBUG]", msg) }

// Info logs a normal operational message.
func Info(msg string) { emit(LevelInfo, "[INFO]", msg) }

// Warn logs a recoverable problem (duplicate add, missing remove, ...).
func Warn(msg string) { emit(LevelWarn, "[WARN]", msg) }

// Error logs err and returns it unchanged, so call sites can write
// `return logger.Error(err)`.
func Error(err error) error {
	emit(LevelError, "[ERROR]", err.Error())
	return err
}

// Errorf formats a message, logs it as an error and returns it wrapped.
func Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	emit(LevelError, "[ERROR]", err.Error())
	return err
}

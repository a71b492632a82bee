// Package logger owns the process-wide slog logger. Output goes to a file
// because the terminal is taken over by the UI.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu       sync.Mutex
	levelVar = new(slog.LevelVar)
	current  = slog.New(slog.NewTextHandler(io.Discard, nil))
	logFile  *os.File
)

// DefaultPath returns <user cache dir>/codex-workspace/workspace.log.
func DefaultPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("get user cache dir: %w", err)
	}
	return filepath.Join(base, "codex-workspace", "workspace.log"), nil
}

// Init opens path for appending and routes Get() to it. Calling Init again
// swaps the destination and closes the previous file.
func Init(path string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f

	if debug {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
	current = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	current.Debug("logger initialized", "path", path)
	return nil
}

// SetDebug toggles debug-level output at runtime.
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Get returns the active logger; it discards output until Init succeeds.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Close flushes and closes the log file, reverting to the discard logger.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	current = slog.New(slog.NewTextHandler(io.Discard, nil))
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

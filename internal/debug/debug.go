// Package debug provides the diagnostic log for igaupdate.
// Logging is off unless --debug or [log] debug is set; the log file is
// truncated on each launch.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// LogFileName is the name of the debug log file.
	LogFileName = "debug.log"
	// LogDirName is the directory under the user's home holding the log.
	LogDirName = ".igaupdate"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  *log.Logger
	logFile *os.File

	// getLogPath is a function variable to allow overriding in tests.
	getLogPath = defaultGetLogPath
)

// Init initializes debug logging. When enable is false every Log call is a
// no-op. path overrides the default ~/.igaupdate/debug.log when non-empty.
func Init(enable bool, path string) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	enabled = enable
	if !enable {
		logger = log.New(io.Discard, "", 0)
		return nil
	}

	logPath := path
	if logPath == "" {
		p, err := getLogPath()
		if err != nil {
			enabled = false
			return fmt.Errorf("determine log path: %w", err)
		}
		logPath = p
	}

	//nolint:gosec // G301: user state directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		enabled = false
		return fmt.Errorf("create log directory: %w", err)
	}

	//nolint:gosec // G304: log path comes from the user's own configuration
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		enabled = false
		return fmt.Errorf("open log file: %w", err)
	}
	logFile = f

	logger = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	logger.Printf("=== igaupdate debug log started at %s ===", time.Now().Format(time.RFC3339))
	return nil
}

// Close closes the debug log file if open.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Log writes a debug message if debug logging is enabled.
// Arguments are handled in the manner of fmt.Print.
func Log(v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled || logger == nil {
		return
	}
	logger.Print(v...)
}

// Logf writes a formatted debug message if debug logging is enabled.
func Logf(format string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled || logger == nil {
		return
	}
	logger.Printf(format, v...)
}

// Enabled returns whether debug logging is currently enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

func defaultGetLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, LogDirName, LogFileName), nil
}

// DefaultLogPath returns the log location used when no path is configured.
func DefaultLogPath() (string, error) {
	return getLogPath()
}

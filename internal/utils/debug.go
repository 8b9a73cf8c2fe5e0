package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	debugMu   sync.Mutex
	debugFile *os.File
	debugPath = os.Getenv("SEEKERCTL_DEBUG_LOG")
)

// ConfigureDebug sets the file Debug appends to. An explicit
// SEEKERCTL_DEBUG_LOG environment variable takes precedence.
func ConfigureDebug(path string) {
	debugMu.Lock()
	defer debugMu.Unlock()

	if os.Getenv("SEEKERCTL_DEBUG_LOG") != "" {
		return
	}
	if debugFile != nil {
		_ = debugFile.Close()
		debugFile = nil
	}
	debugPath = path
}

// Debug writes a timestamped message to the debug log.
// Without a configured path the message is discarded.
func Debug(format string, args ...any) {
	debugMu.Lock()
	defer debugMu.Unlock()

	if debugPath == "" {
		return
	}
	if debugFile == nil {
		_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
		f, err := os.OpenFile(debugPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return
		}
		debugFile = f
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(debugFile, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
	_ = debugFile.Sync()
}

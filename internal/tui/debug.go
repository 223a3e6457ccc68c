package tui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// The terminal owns stdout, so runtime diagnostics go to an opt-in file:
// set LABMATE_DEBUG_LOG to a path and both the update loop and the API
// client append timestamped lines there.

var (
	debugLogMu   sync.Mutex
	debugLogFile *os.File
	debugLogInit bool
)

func debugLogf(format string, args ...any) {
	debugLogMu.Lock()
	defer debugLogMu.Unlock()

	if !debugLogInit {
		debugLogInit = true
		path := strings.TrimSpace(os.Getenv("LABMATE_DEBUG_LOG"))
		if path != "" {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err == nil {
				debugLogFile = f
			}
		}
	}
	if debugLogFile == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintf(debugLogFile, "%s %s\n", time.Now().Format("15:04:05.000"), line)
}

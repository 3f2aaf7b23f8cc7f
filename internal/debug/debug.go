package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/contextweaver/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// QuietMode suppresses all debug output. The MCP server sets it because
// stdio carries the protocol.
var QuietMode = false

var (
	debugOutput io.Writer
	debugFile   *os.File
	debugMutex  sync.Mutex
)

// SetQuietMode toggles QuietMode
func SetQuietMode(enabled bool) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	QuietMode = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile starts writing debug output to a timestamped file under
// the system temp directory and returns its path.
// Call CloseDebugLog when done.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "contextweaver-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		debugOutput = nil
		return err
	}
	return nil
}

// IsDebugEnabled returns true if debug mode is enabled and quiet mode is off
func IsDebugEnabled() bool {
	debugMutex.Lock()
	quiet := QuietMode
	debugMutex.Unlock()
	if quiet {
		return false
	}

	if EnableDebug == "true" {
		return true
	}

	return os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true"
}

func getDebugWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	debugMutex.Lock()
	defer debugMutex.Unlock()
	fmt.Fprintf(w, "[DEBUG] "+format, args...)
}

// Log provides debug logging tagged with a component name
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	debugMutex.Lock()
	defer debugMutex.Unlock()
	fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

// LogParse logs parser front end activity
func LogParse(format string, args ...interface{}) {
	Log("PARSE", format, args...)
}

// LogPipeline logs scanning, scheduling and aggregation
func LogPipeline(format string, args ...interface{}) {
	Log("PIPELINE", format, args...)
}

// LogMCP logs MCP tool calls
func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}

// Fatal writes msg to the debug log and returns it as an error for the caller to handle.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if w := getDebugWriter(); w != nil && !QuietMode {
		debugMutex.Lock()
		fmt.Fprintf(w, "[FATAL] %s", msg)
		debugMutex.Unlock()
	}
	return fmt.Errorf("fatal error: %s", msg)
}

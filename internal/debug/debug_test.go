package debug

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saveAndRestoreState saves the debug package state and returns a cleanup function
func saveAndRestoreState() func() {
	originalDebug := EnableDebug
	originalQuiet := QuietMode
	originalOutput := debugOutput
	originalFile := debugFile
	return func() {
		EnableDebug = originalDebug
		QuietMode = originalQuiet
		debugOutput = originalOutput
		debugFile = originalFile
	}
}

func TestIsDebugEnabled(t *testing.T) {
	defer saveAndRestoreState()()
	t.Setenv("DEBUG", "")

	EnableDebug = "false"
	QuietMode = false
	assert.False(t, IsDebugEnabled())

	EnableDebug = "true"
	assert.True(t, IsDebugEnabled())

	SetQuietMode(true)
	assert.False(t, IsDebugEnabled())
	SetQuietMode(false)

	EnableDebug = "invalid"
	assert.False(t, IsDebugEnabled())

	t.Setenv("DEBUG", "1")
	assert.True(t, IsDebugEnabled())
}

func TestLog(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	EnableDebug = "true"
	QuietMode = false
	Log("TEST", "Hello %s", "World")

	output := buf.String()
	assert.Contains(t, output, "[DEBUG:TEST]")
	assert.Contains(t, output, "Hello World")
}

func TestLog_QuietMode(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	EnableDebug = "true"
	QuietMode = true
	Log("TEST", "Should not appear")

	assert.Empty(t, buf.String())
}

func TestLogHelpers(t *testing.T) {
	defer saveAndRestoreState()()

	EnableDebug = "true"
	QuietMode = false

	tests := []struct {
		name    string
		logFunc func(string, ...interface{})
		prefix  string
	}{
		{"LogParse", LogParse, "[DEBUG:PARSE]"},
		{"LogPipeline", LogPipeline, "[DEBUG:PIPELINE]"},
		{"LogMCP", LogMCP, "[DEBUG:MCP]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetDebugOutput(&buf)

			tt.logFunc("processed %s", "A/Foo.cs")

			output := buf.String()
			assert.Contains(t, output, tt.prefix)
			assert.Contains(t, output, "processed A/Foo.cs")
		})
	}
}

func TestFatal(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	QuietMode = false
	err := Fatal("test error: %s", "details")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fatal error: test error: details")
	assert.Contains(t, buf.String(), "[FATAL]")

	buf.Reset()
	QuietMode = true
	err = Fatal("another error")
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestConcurrentLogging(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	EnableDebug = "true"
	QuietMode = false

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			LogPipeline("file from goroutine %d\n", id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, bytes.Count(buf.Bytes(), []byte("[DEBUG:PIPELINE]")))
}

func TestNoOutputWithNilWriter(t *testing.T) {
	defer saveAndRestoreState()()

	SetDebugOutput(nil)
	EnableDebug = "true"
	QuietMode = false

	Printf("test %s", "message")
	Log("TEST", "test %s", "message")
	LogParse("test %s", "message")
	_ = Fatal("test %s", "message")
}

func TestInitDebugLogFile(t *testing.T) {
	defer saveAndRestoreState()()

	logPath, err := InitDebugLogFile()
	require.NoError(t, err)
	require.NotEmpty(t, logPath)
	defer os.Remove(logPath)

	EnableDebug = "true"
	QuietMode = false
	Printf("Test log message\n")

	require.NoError(t, CloseDebugLog())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Test log message")
}

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	original := defaultLogger.Load()
	t.Cleanup(func() { defaultLogger.Store(original) })
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name     string
		level    LogLevel
		expected slog.Level
	}{
		{name: "Debug level", level: LevelDebug, expected: slog.LevelDebug},
		{name: "Info level", level: LevelInfo, expected: slog.LevelInfo},
		{name: "Warn level", level: LevelWarn, expected: slog.LevelWarn},
		{name: "Warning alias", level: "warning", expected: slog.LevelWarn},
		{name: "Upper case", level: "ERROR", expected: slog.LevelError},
		{name: "Invalid level defaults to Info", level: "invalid", expected: slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.level))
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	SetupLogger(&buf, LevelDebug, FormatText)

	tests := []struct {
		name    string
		logFunc func(string, ...any)
		level   string
		message string
	}{
		{name: "Debug logging", logFunc: Debug, level: "DEBUG", message: "debug message"},
		{name: "Info logging", logFunc: Info, level: "INFO", message: "info message"},
		{name: "Warn logging", logFunc: Warn, level: "WARN", message: "warn message"},
		{name: "Error logging", logFunc: Error, level: "ERROR", message: "error message"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf.Reset()

			tc.logFunc(tc.message, "key", "value")

			output := buf.String()
			assert.Contains(t, output, "level="+tc.level)
			assert.Contains(t, output, tc.message)
			assert.Contains(t, output, "key=value")
			assert.Contains(t, output, "component=jiralog")
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	restoreLogger(t)

	testCases := []struct {
		name      string
		level     LogLevel
		shouldLog map[string]bool
	}{
		{
			name:      "Warn level",
			level:     LevelWarn,
			shouldLog: map[string]bool{"DEBUG": false, "INFO": false, "WARN": true, "ERROR": true},
		},
		{
			name:      "Empty defaults to Info",
			level:     "",
			shouldLog: map[string]bool{"DEBUG": false, "INFO": true, "WARN": true, "ERROR": true},
		},
	}

	funcs := map[string]func(string, ...any){
		"DEBUG": Debug,
		"INFO":  Info,
		"WARN":  Warn,
		"ERROR": Error,
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetupLogger(&buf, tc.level, FormatText)

			for name, logFunc := range funcs {
				buf.Reset()
				logFunc("test message for level")
				didLog := strings.Contains(buf.String(), "test message for level")
				assert.Equal(t, tc.shouldLog[name], didLog, "level %s", name)
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	SetupLogger(&buf, LevelInfo, FormatJSON)

	Info("created ticket", "ticket", "OPS-1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "created ticket", record["msg"])
	assert.Equal(t, "OPS-1", record["ticket"])
}

func TestGetLogger(t *testing.T) {
	require.NotNil(t, GetLogger())
}

func TestMaskSensitive(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty string", input: "", expected: "<not set>"},
		{name: "Short string", input: "abc", expected: "<set>"},
		{name: "Exactly 4 characters", input: "abcd", expected: "<set>"},
		{name: "Long string", input: "abcdefghijklm", expected: "abcd...***"},
		{name: "Token-like string", input: "2Dn5j8fk39Dkf0s", expected: "2Dn5...***"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MaskSensitive(tc.input))
		})
	}
}

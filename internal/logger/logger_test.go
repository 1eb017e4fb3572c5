package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := parseLogLevel(tt.input); result != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}

	if config.Level != "INFO" {
		t.Errorf("Default level = %q, want %q", config.Level, "INFO")
	}
	if !config.ConsoleEnabled {
		t.Error("Default ConsoleEnabled = false, want true")
	}
	if config.FileEnabled {
		t.Error("Default FileEnabled = true, want false")
	}
	if config.FilePath != "logs/hexwfc.log" {
		t.Errorf("Default FilePath = %q, want %q", config.FilePath, "logs/hexwfc.log")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hexwfc.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfig(t, `logging:
  level: DEBUG
  console_format: json
  file_enabled: true
  file_path: test.log
  file_max_size_mb: 20
  file_compress: true
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "DEBUG" {
		t.Errorf("Level = %q, want %q", config.Level, "DEBUG")
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want %q", config.ConsoleFormat, "json")
	}
	if !config.ConsoleEnabled {
		t.Error("ConsoleEnabled was reset by a file that does not mention it")
	}
	if !config.FileEnabled || !config.FileCompress {
		t.Error("file settings not loaded")
	}
	if config.FilePath != "test.log" {
		t.Errorf("FilePath = %q, want %q", config.FilePath, "test.log")
	}
	if config.FileMaxSizeMB != 20 {
		t.Errorf("FileMaxSizeMB = %d, want %d", config.FileMaxSizeMB, 20)
	}
	if config.FileMaxBackups != 5 {
		t.Errorf("FileMaxBackups = %d, want default 5", config.FileMaxBackups)
	}
}

func TestLoadConfigDisablesConsole(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "logging:\n  console_enabled: false\n"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if config.ConsoleEnabled {
		t.Error("ConsoleEnabled = true, want false")
	}
}

func TestEnvVarOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("LOG_CONSOLE_FORMAT", "json")
	t.Setenv("LOG_FILE_ENABLED", "true")
	t.Setenv("LOG_FILE_PATH", "/custom/path.log")

	config, err := LoadConfig(writeConfig(t, "logging:\n  level: DEBUG\n"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "ERROR" {
		t.Errorf("Level = %q, want %q (from env var)", config.Level, "ERROR")
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want %q (from env var)", config.ConsoleFormat, "json")
	}
	if !config.FileEnabled {
		t.Error("FileEnabled = false, want true (from env var)")
	}
	if config.FilePath != "/custom/path.log" {
		t.Errorf("FilePath = %q, want %q (from env var)", config.FilePath, "/custom/path.log")
	}
}

func TestInitializeWithTextFormat(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	if err := InitializeWithWriter(config, &buf); err != nil {
		t.Fatalf("InitializeWithWriter: %v", err)
	}

	Info("Test message", "key", "value")
	Debug("This should not appear")

	output := buf.String()
	if !strings.Contains(output, "Test message") {
		t.Errorf("Output missing INFO message: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("Output missing structured field: %s", output)
	}
	if strings.Contains(output, "This should not appear") {
		t.Errorf("Output contains DEBUG message when level is INFO: %s", output)
	}
}

func TestInitializeWithJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.ConsoleFormat = "json"
	if err := InitializeWithWriter(config, &buf); err != nil {
		t.Fatalf("InitializeWithWriter: %v", err)
	}

	Info("JSON test", "cells", 42, "mode", "same_layer")

	output := buf.String()
	if !strings.Contains(output, `"msg":"JSON test"`) {
		t.Errorf("Output missing JSON message field: %s", output)
	}
	if !strings.Contains(output, `"cells":42`) {
		t.Errorf("Output missing numeric JSON field: %s", output)
	}
	if !strings.Contains(output, `"mode":"same_layer"`) {
		t.Errorf("Output missing JSON field: %s", output)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := InitializeWithWriter(DefaultConfig(), &buf); err != nil {
		t.Fatalf("InitializeWithWriter: %v", err)
	}
	defer SetLevel("INFO")

	Debug("hidden")
	SetLevel("DEBUG")
	if !Enabled(slog.LevelDebug) {
		t.Error("Enabled(DEBUG) = false after SetLevel")
	}
	Debug("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Error("DEBUG message written before SetLevel")
	}
	if !strings.Contains(output, "shown") {
		t.Error("DEBUG message missing after SetLevel")
	}
}

func TestAlwaysBypassesLogLevel(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.Level = "ERROR"
	if err := InitializeWithWriter(config, &buf); err != nil {
		t.Fatalf("InitializeWithWriter: %v", err)
	}
	defer SetLevel("INFO")

	Debug("Debug message")
	Info("Info message")
	Warning("Warning")
	Error("Error message")
	Always("Always message")

	output := buf.String()
	if strings.Contains(output, "Debug message") || strings.Contains(output, "Info message") || strings.Contains(output, "Warning") {
		t.Errorf("messages below ERROR were written: %s", output)
	}
	if !strings.Contains(output, "Error message") {
		t.Error("ERROR message missing from output")
	}
	if !strings.Contains(output, "Always message") {
		t.Error("ALWAYS message missing from output")
	}
	if !strings.Contains(output, "level=ALWAYS") {
		t.Error("ALWAYS level not formatted correctly")
	}
}

func TestFileOutput(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.log")

	config := DefaultConfig()
	config.FileEnabled = true
	config.FilePath = path
	config.FileFormat = "json"
	if err := InitializeWithWriter(config, &console); err != nil {
		t.Fatalf("InitializeWithWriter: %v", err)
	}

	Info("Solve finished", "failed", 0)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"Solve finished"`) {
		t.Errorf("file output missing message: %s", data)
	}
	if !strings.Contains(console.String(), "Solve finished") {
		t.Errorf("console output missing message: %s", console.String())
	}
}

func TestMultiHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer

	handler1 := slog.NewTextHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	handler2 := slog.NewTextHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger = slog.New(newMultiHandler(handler1, handler2))

	Info("info only", "field", "value")
	Warning("both")

	if !strings.Contains(buf1.String(), "info only") || !strings.Contains(buf1.String(), "field=value") {
		t.Errorf("first handler output: %s", buf1.String())
	}
	if strings.Contains(buf2.String(), "info only") {
		t.Error("second handler received a message below its level")
	}
	if !strings.Contains(buf2.String(), "both") {
		t.Error("second handler missing WARN message")
	}
}

func TestNilLogger(t *testing.T) {
	logger = nil

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logging with nil logger caused panic: %v", r)
		}
	}()

	Debug("debug")
	Info("info")
	Warning("warning")
	Error("error")
	Always("always")
	if Enabled(slog.LevelError) {
		t.Error("Enabled() = true with nil logger")
	}
}

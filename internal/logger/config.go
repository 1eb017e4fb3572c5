package logger

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled bool   `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
	FileCompress   bool   `yaml:"file_compress"`
}

// fileConfig mirrors Config with pointer booleans so that a YAML file can
// turn a default off without other keys resetting it.
type fileConfig struct {
	Level          string `yaml:"level"`
	ConsoleEnabled *bool  `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    *bool  `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
	FileCompress   *bool  `yaml:"file_compress"`
}

// loggingFile wraps the logging section of a config file
type loggingFile struct {
	Logging fileConfig `yaml:"logging"`
}

// DefaultConfig returns console-only text logging at INFO.
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		ConsoleFormat:  "text",
		FileEnabled:    false,
		FilePath:       "logs/hexwfc.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// LoadConfig loads the logging section of a YAML file and applies
// environment variable overrides. A missing or unreadable file yields the
// defaults.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			var file loggingFile
			if err := yaml.Unmarshal(data, &file); err == nil {
				config.merge(file.Logging)
			}
		}
	}

	config.applyEnv()
	return config, nil
}

func (c *Config) merge(f fileConfig) {
	if f.Level != "" {
		c.Level = f.Level
	}
	if f.ConsoleEnabled != nil {
		c.ConsoleEnabled = *f.ConsoleEnabled
	}
	if f.ConsoleFormat != "" {
		c.ConsoleFormat = f.ConsoleFormat
	}
	if f.FileEnabled != nil {
		c.FileEnabled = *f.FileEnabled
	}
	if f.FilePath != "" {
		c.FilePath = f.FilePath
	}
	if f.FileFormat != "" {
		c.FileFormat = f.FileFormat
	}
	if f.FileMaxSizeMB > 0 {
		c.FileMaxSizeMB = f.FileMaxSizeMB
	}
	if f.FileMaxBackups > 0 {
		c.FileMaxBackups = f.FileMaxBackups
	}
	if f.FileMaxAgeDays > 0 {
		c.FileMaxAgeDays = f.FileMaxAgeDays
	}
	if f.FileCompress != nil {
		c.FileCompress = *f.FileCompress
	}
}

func (c *Config) applyEnv() {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Level = level
	}
	if format := os.Getenv("LOG_CONSOLE_FORMAT"); format != "" {
		c.ConsoleFormat = format
	}
	if enabled := os.Getenv("LOG_FILE_ENABLED"); enabled != "" {
		if v, err := strconv.ParseBool(enabled); err == nil {
			c.FileEnabled = v
		}
	}
	if path := os.Getenv("LOG_FILE_PATH"); path != "" {
		c.FilePath = path
	}
}

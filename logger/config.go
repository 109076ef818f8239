package logger

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
)

// ManagerConfig global manager configuration (shared by all modules)
type ManagerConfig struct {
	BaseLogDir    string `mapstructure:"base_log_dir"` // Log root directory (default logs/)
	Level         string `mapstructure:"level"`
	AppName       string `mapstructure:"app_name"` // Injected into every entry, even when empty
	Encoding      string `mapstructure:"encoding"` // json or console
	EnableConsole bool   `mapstructure:"enable_console"`
	EnableFile    bool   `mapstructure:"enable_file"`
	MaxSize       int    `mapstructure:"max_size"` // MB
	MaxBackups    int    `mapstructure:"max_backups"`
	MaxAge        int    `mapstructure:"max_age"` // days
	Compress      bool   `mapstructure:"compress"`
	EnableCaller  bool   `mapstructure:"enable_caller"`

	// Trace ID configuration
	EnableTraceID    bool   `mapstructure:"enable_trace_id"`
	TraceIDKey       string `mapstructure:"trace_id_key"`        // the key in context (default "trace_id")
	TraceIDFieldName string `mapstructure:"trace_id_field_name"` // Log field name (default "trace_id")
}

// DefaultManagerConfig returns the default manager configuration
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		BaseLogDir:       "logs",
		Level:            "info",
		Encoding:         "json",
		EnableConsole:    true,
		MaxSize:          100,
		MaxBackups:       3,
		MaxAge:           28,
		Compress:         true,
		EnableCaller:     true,
		EnableTraceID:    true,
		TraceIDKey:       "trace_id",
		TraceIDFieldName: "trace_id",
	}
}

// ApplyDefaults fills zero-valued fields with default values (in-place modification)
func (c *ManagerConfig) ApplyDefaults() {
	defaults := DefaultManagerConfig()

	if c.BaseLogDir == "" {
		c.BaseLogDir = defaults.BaseLogDir
	}
	if c.Level == "" {
		c.Level = defaults.Level
	}
	if c.Encoding == "" {
		c.Encoding = defaults.Encoding
	}
	if c.MaxSize == 0 {
		c.MaxSize = defaults.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = defaults.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = defaults.MaxAge
	}
	if c.TraceIDKey == "" {
		c.TraceIDKey = defaults.TraceIDKey
	}
	if c.TraceIDFieldName == "" {
		c.TraceIDFieldName = defaults.TraceIDFieldName
	}
}

// Validate checks the manager configuration
func (c ManagerConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
	default:
		return fmt.Errorf("invalid log level: %s", c.Level)
	}

	if c.Encoding != "json" && c.Encoding != "console" {
		return fmt.Errorf("invalid encoding: %s (must be json or console)", c.Encoding)
	}

	if c.EnableFile && c.MaxSize <= 0 {
		return fmt.Errorf("max_size must be positive when file output is enabled")
	}
	return nil
}

// ParseLevel converts a level name to a zapcore.Level, falling back to info
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// moduleFilePath log/<module>/<module>-<level>.log
func (c ManagerConfig) moduleFilePath(module, level string) string {
	return filepath.Join(c.BaseLogDir, module, fmt.Sprintf("%s-%s.log", module, level))
}

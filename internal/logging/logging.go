// Package logging configures the process-wide slog logger: console
// output for interactive use plus optional rotated log files with a
// separate warn/error file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config drives logger construction.
type Config struct {
	// Level is the minimum level for console output: debug, info,
	// warn or error.
	Level string `yaml:"level"`
	// Format selects the console encoding: text or json.
	Format string `yaml:"format"`

	// File enables rotated log files under Dir.
	File FileConfig `yaml:"file"`
}

type FileConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	// Name is the base file name, defaulting to the component name.
	Name string `yaml:"name"`

	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		File: FileConfig{
			Enabled:    false,
			Dir:        "logs",
			Name:       "component",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.Level == "" {
		c.Level = def.Level
	}
	if c.Format == "" {
		c.Format = def.Format
	}
	if c.File.Dir == "" {
		c.File.Dir = def.File.Dir
	}
	if c.File.Name == "" {
		c.File.Name = def.File.Name
	}
	if c.File.MaxSizeMB == 0 {
		c.File.MaxSizeMB = def.File.MaxSizeMB
	}
	if c.File.MaxBackups == 0 {
		c.File.MaxBackups = def.File.MaxBackups
	}
	if c.File.MaxAgeDays == 0 {
		c.File.MaxAgeDays = def.File.MaxAgeDays
	}
}

func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Format = v
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Level)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Format)
	}
	return nil
}

// Initialize builds the logger from cfg and installs it as the slog
// default. The returned closer flushes and closes any log files.
func Initialize(cfg Config) (io.Closer, error) {
	logger, closer, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

// NewLogger creates a logger per cfg without touching global state.
func NewLogger(cfg Config) (*slog.Logger, io.Closer, error) {
	level := ParseLevel(cfg.Level)

	handlers := []slog.Handler{newHandler(os.Stdout, cfg.Format, level)}
	closers := closerList{}

	if cfg.File.Enabled {
		if err := os.MkdirAll(cfg.File.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		main := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.File.Dir, cfg.File.Name+".log"),
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		closers = append(closers, main)
		handlers = append(handlers, newHandler(main, "json", level))

		// Warnings and errors also go to a dedicated file.
		errFile := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.File.Dir, cfg.File.Name+".errors.log"),
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		closers = append(closers, errFile)
		handlers = append(handlers, NewLevelFilter(newHandler(errFile, "json", slog.LevelWarn), slog.LevelWarn))
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = NewMultiHandler(handlers...)
	}
	return slog.New(handler), closers, nil
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ParseLevel maps a config level string onto a slog level. Unknown
// values fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type closerList []io.Closer

func (l closerList) Close() error {
	var firstErr error
	for _, c := range l {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

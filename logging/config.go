package logging

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultTimeFormat is the layout used for timestamps unless overridden.
const DefaultTimeFormat = "2006-01-02 15:04:05"

// Config controls how log lines are rendered and which levels reach each sink.
type Config struct {
	TimeFormat   string        `json:"time_format"`
	EnableANSI   bool          `json:"enable_ansi"`
	ShowCaller   bool          `json:"show_caller"`
	Compact      bool          `json:"compact"`
	ConsoleLevel zerolog.Level `json:"console_level"`
	FileLevel    zerolog.Level `json:"file_level"`

	// Rotation settings for the file sinks.
	MaxSizeMB  int  `json:"max_size_mb"`
	MaxBackups int  `json:"max_backups"`
	MaxAgeDays int  `json:"max_age_days"`
	Compress   bool `json:"compress"`
}

func DefaultConfig() Config {
	return Config{
		TimeFormat:   DefaultTimeFormat,
		EnableANSI:   true,
		ShowCaller:   false,
		Compact:      true,
		ConsoleLevel: zerolog.InfoLevel,
		FileLevel:    zerolog.InfoLevel,
		MaxSizeMB:    100,
		MaxBackups:   7,
		MaxAgeDays:   30,
	}
}

func (c Config) WithTimeFormat(layout string) Config {
	c.TimeFormat = layout
	return c
}

func (c Config) WithANSI(enabled bool) Config {
	c.EnableANSI = enabled
	return c
}

func (c Config) WithCaller(enabled bool) Config {
	c.ShowCaller = enabled
	return c
}

func (c Config) WithCompact(enabled bool) Config {
	c.Compact = enabled
	return c
}

func (c Config) WithConsoleLevel(level zerolog.Level) Config {
	c.ConsoleLevel = level
	return c
}

func (c Config) WithFileLevel(level zerolog.Level) Config {
	c.FileLevel = level
	return c
}

func (c Config) timeFormat() string {
	if c.TimeFormat == "" {
		return DefaultTimeFormat
	}
	return c.TimeFormat
}

// ParseLevel accepts zerolog level names in any case, plus "warning".
func ParseLevel(s string) (zerolog.Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	if name == "" {
		return zerolog.NoLevel, fmt.Errorf("%w: empty", ErrInvalidLevel)
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return lvl, nil
}

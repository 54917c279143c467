// Package logging wires zerolog to the console and to rotating per-service
// log files, and routes log/slog through the same pipeline.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Dir is the root directory for log files, relative to the working directory.
const Dir = "logs"

var consoleOut io.Writer = os.Stdout

// Guard owns one log file. Keep it for the life of the process and Close it
// on shutdown so buffered output reaches disk.
type Guard struct {
	file *lumberjack.Logger
	once sync.Once
	err  error
}

// Path returns the file the guard writes to.
func (g *Guard) Path() string {
	if g == nil || g.file == nil {
		return ""
	}
	return g.file.Filename
}

func (g *Guard) Close() error {
	if g == nil || g.file == nil {
		return nil
	}
	g.once.Do(func() { g.err = g.file.Close() })
	return g.err
}

// Start installs the default configuration. See StartWithConfig.
func Start(service, path string) (*Guard, *Guard, error) {
	return StartWithConfig(service, path, DefaultConfig())
}

// StartWithConfig builds a logger that writes to the console,
// logs[/path]/<service>-info.log (info records only) and
// logs[/path]/<service>-error.log (error and above), then installs it as the
// zerolog global logger and as slog's default. The returned guards own the
// info and error files respectively.
func StartWithConfig(service, path string, cfg Config) (*Guard, *Guard, error) {
	if service == "" {
		return nil, nil, ErrInvalidService
	}

	dir := Dir
	if path != "" {
		dir = filepath.Join(Dir, path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrDirectoryCreation, dir, err)
	}

	infoFile := cfg.rotatingFile(filepath.Join(dir, service+"-info.log"))
	errorFile := cfg.rotatingFile(filepath.Join(dir, service+"-error.log"))

	fileLevel := cfg.FileLevel
	w := zerolog.MultiLevelWriter(
		filterLevel(cfg.consoleWriter(consoleOut), func(l zerolog.Level) bool {
			return l != zerolog.NoLevel && l >= cfg.ConsoleLevel
		}),
		filterLevel(cfg.fileWriter(infoFile), func(l zerolog.Level) bool {
			return l == zerolog.InfoLevel && l >= fileLevel
		}),
		filterLevel(cfg.fileWriter(errorFile), func(l zerolog.Level) bool {
			return l >= zerolog.ErrorLevel && l <= zerolog.PanicLevel
		}),
	)

	zerolog.TimeFieldFormat = cfg.timeFormat()
	base := zerolog.New(w).Level(minLevel(cfg.ConsoleLevel, fileLevel, zerolog.ErrorLevel)).
		With().Timestamp().Str("service", service).Logger()

	global := base
	if cfg.ShowCaller {
		global = base.With().Caller().Logger()
	}
	log.Logger = global
	slog.SetDefault(slog.New(newSlogHandler(base, cfg.ShowCaller)))

	return &Guard{file: infoFile}, &Guard{file: errorFile}, nil
}

// New returns a logger writing to w only, at cfg.ConsoleLevel. Nothing global
// is touched.
func New(w io.Writer, cfg Config) zerolog.Logger {
	ctx := zerolog.New(cfg.consoleWriter(w)).Level(cfg.ConsoleLevel).With().Timestamp()
	if cfg.ShowCaller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

func (c Config) consoleWriter(w io.Writer) io.Writer {
	if !c.Compact {
		return w
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !c.EnableANSI,
		TimeFormat: c.timeFormat(),
	}
}

func (c Config) fileWriter(w io.Writer) io.Writer {
	if !c.Compact {
		return w
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: c.timeFormat(),
	}
}

func (c Config) rotatingFile(name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   name,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAgeDays,
		Compress:   c.Compress,
		LocalTime:  true,
	}
}

// levelFilter forwards only the records whose level passes allow.
type levelFilter struct {
	w     io.Writer
	allow func(zerolog.Level) bool
}

func filterLevel(w io.Writer, allow func(zerolog.Level) bool) zerolog.LevelWriter {
	return levelFilter{w: w, allow: allow}
}

func (f levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f levelFilter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if !f.allow(l) {
		return len(p), nil
	}
	return f.w.Write(p)
}

func minLevel(levels ...zerolog.Level) zerolog.Level {
	out := levels[0]
	for _, l := range levels[1:] {
		if l < out {
			out = l
		}
	}
	return out
}

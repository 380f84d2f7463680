package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options select where and how much gotado logs.
type Options struct {
	Verbose bool
	Debug   bool
	// File, when set, sends logs to a rotating file instead of stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	// Out overrides stderr, mainly for tests.
	Out io.Writer
}

// New builds a logr.Logger backed by zerolog. Console output is used on a
// terminal, JSON lines otherwise.
func New(opts Options) (logr.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.Out != nil {
		w = opts.Out
	}

	console := opts.Out == nil && isTerminal(os.Stderr)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return logr.Discard(), nil, err
		}
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     28,
			Compress:   true,
		}
		w, closer, console = rotating, rotating, false
	}

	zl := zerolog.New(w)
	if console {
		zl = zl.Output(zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    os.Getenv("NO_COLOR") != "",
			TimeFormat: time.RFC3339,
		})
	}

	level := Level(opts.Verbose, opts.Debug)
	zl = zl.Level(level).With().Timestamp().Logger()
	return zerologr.New(&zl), closer, nil
}

// Level maps the CLI flags to a zerolog level. --debug also shows V(1) logs.
func Level(verbose, debug bool) zerolog.Level {
	switch {
	case debug:
		return zerolog.DebugLevel
	case verbose:
		return zerolog.InfoLevel
	default:
		return zerolog.WarnLevel
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

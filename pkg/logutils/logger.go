package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/colonyops/taproom/internal/core/logging"
)

// DefaultMaxSize is the size in megabytes at which the log file is rotated.
const DefaultMaxSize = 10

// Options configures New.
type Options struct {
	// Level is one of trace, debug, info, warn, error, fatal, panic.
	Level string
	// File receives JSON lines, appended across runs. Empty logs to stderr.
	File string
	// MaxSize is the size in megabytes a write may grow File to before it is
	// rotated. One rotated file is kept. Zero uses DefaultMaxSize.
	MaxSize int
	// Console renders stderr output for people instead of as JSON.
	Console bool
}

// New returns a logger configured by opts and a func that closes its file.
// Events logged with Ctx carry the logging.Scope found on the context.
func New(opts Options) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	var writer io.Writer = os.Stderr
	switch {
	case opts.File != "":
		f, err := newLogFile(opts.File, opts.MaxSize)
		if err != nil {
			return zerolog.Logger{}, closer, err
		}
		closer = func() { _ = f.Close() }
		writer = f
	case opts.Console:
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl).
		Hook(logging.ScopeHook{})

	return l, closer, nil
}

func newLogFile(path string, maxSize int) (*lumberjack.Logger, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize, // MB
		MaxBackups: 1,
	}, nil
}

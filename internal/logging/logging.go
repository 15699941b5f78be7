// Package logging builds the application's slog logger: JSON records to a
// rotating file, optionally mirrored as text to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	multi "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	File   string
	Level  string
	Stderr io.Writer // nil keeps the terminal clean
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger and the closer for its log file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handlers []slog.Handler
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    8,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(lj, hopts))
		closer = lj
	}
	if opts.Stderr != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Stderr, hopts))
	}
	if len(handlers) == 0 {
		return slog.New(slog.DiscardHandler), closer, nil
	}
	return slog.New(multi.Fanout(handlers...)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

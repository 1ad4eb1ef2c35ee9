package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// #region config

// Config selects the terminal log level and format, and an optional JSON log file.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" | "json"
	File   string `yaml:"file"`
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// #endregion config

// #region init

var level = new(slog.LevelVar)

// Init installs the default slog logger. The terminal handler writes to w (stderr when nil);
// when cfg.File is set every record is also written there as JSON. The returned func closes
// the file.
func Init(cfg Config, w io.Writer) (func() error, error) {
	if w == nil {
		w = os.Stderr
	}
	level.Set(ParseLevel(cfg.Level))
	opts := &slog.HandlerOptions{Level: level}

	var terminal slog.Handler
	switch cfg.Format {
	case "json":
		terminal = slog.NewJSONHandler(w, opts)
	default:
		terminal = slog.NewTextHandler(w, opts)
	}
	handlers := []slog.Handler{terminal}

	closeFn := func() error { return nil }
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return closeFn, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
		closeFn = f.Close
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
	return closeFn, nil
}

// New returns a logger with a "component" attribute for module-scoped logging.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}

// #endregion init

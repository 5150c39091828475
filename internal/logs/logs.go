// Package logs builds the structured logger shared by the server, the
// queue consumer and the CLI.
package logs

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/iliyamo/salon-booking/internal/config"
)

// New builds a logger that writes to stdout and, when a file is
// configured, to a size-rotated file as well.
func New(cfg config.LogConfig, env string) *slog.Logger {
	writers := []io.Writer{os.Stdout}
	if cfg.File != "" {
		writers = append(writers, Rotating(cfg.File, cfg))
	}
	return slog.New(handler(io.MultiWriter(writers...), cfg, env)).With(
		slog.String("service", "salon-booking"),
		slog.String("env", env),
	)
}

// Rotating returns a lumberjack writer for path using the size and age
// limits of cfg.
func Rotating(path string, cfg config.LogConfig) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}

// NewFile is a file-only JSON logger, used for the booking event log.
func NewFile(path string, cfg config.LogConfig) (*slog.Logger, io.Closer) {
	w := Rotating(path, cfg)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})), w
}

// Discard drops everything.  Tests use it.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func handler(w io.Writer, cfg config.LogConfig, env string) slog.Handler {
	isDev := strings.EqualFold(env, "dev") || strings.EqualFold(env, "development")
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level), AddSource: isDev}
	if strings.EqualFold(cfg.Format, "text") && isDev {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

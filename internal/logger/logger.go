// internal/logger/logger.go
package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"time"
)

var globalLogger *slog.Logger

// New builds a logger for the given APP_ENV writing to w.
//
// development        text, debug, with source
// development-json   json, debug, with source
// production/staging json, info
func New(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler
	opts := slog.HandlerOptions{
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}

	switch env {
	case "development":
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, &opts)
	case "development-json":
		opts.Level = slog.LevelDebug
		handler = slog.NewJSONHandler(w, &opts)
	case "production", "staging":
		opts.Level = slog.LevelInfo
		opts.AddSource = false
		handler = slog.NewJSONHandler(w, &opts)
	default:
		log.Printf("WARNING: Unknown APP_ENV '%s'. Defaulting to production logging.\n", env)
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(w, &opts)
	}

	return slog.New(handler).With("service", "cityinsights")
}

// InitLogger configures the process-wide logger and installs it as slog's default.
func InitLogger(env string) {
	globalLogger = New(env, os.Stdout)
	slog.SetDefault(globalLogger)
}

// L returns the global logger. InitLogger should run first in main; if it
// has not, a development logger is installed.
func L() *slog.Logger {
	if globalLogger == nil {
		InitLogger("development")
		log.Println("WARNING: Logger accessed before explicit initialization. Using default development logger.")
	}
	return globalLogger
}

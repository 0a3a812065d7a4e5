package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/elee1766/calagent/src/config"
	"github.com/lmittmann/tint"
)

// createCLILogger creates a logger for CLI commands that writes to stderr
func createCLILogger(logLevel string) *slog.Logger {
	level := parseLogLevel(logLevel)

	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: level,
	}))
}

// createFileLogger creates a logger that doesn't interfere with interactive
// output by writing JSON lines to a file instead of stderr
func createFileLogger(cfg *config.Config, logLevel string) *slog.Logger {
	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = config.GetDefaultLogPath()
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		// If we can't create the log directory, use a discard logger
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	level := parseLogLevel(logLevel)
	return slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: level,
	}))
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

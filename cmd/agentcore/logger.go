package main

import (
	"log/slog"
	"os"
	"strings"
)

// initLogger installs a process-wide slog default logger. Priority
// follows the teacher's cmd/hector/logger.go chain — an explicit flag
// wins, falling back to the AGENTCORE_LOG_LEVEL/AGENTCORE_LOG_FORMAT
// environment variables, then the level/format defaults baked into the
// CLI flags themselves.
func initLogger(level, format string) {
	if v := os.Getenv("AGENTCORE_LOG_LEVEL"); v != "" && level == "info" {
		level = v
	}
	if v := os.Getenv("AGENTCORE_LOG_FORMAT"); v != "" && format == "text" {
		format = v
	}

	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

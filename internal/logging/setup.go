package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// SetupHandlerText returns a charmbracelet text handler writing to w at the given level.
func SetupHandlerText(logLevel string, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stderr
	}

	reportCaller := false
	reportTimestamp := false
	lvl := log.InfoLevel
	switch strings.ToLower(logLevel) {
	case "trace":
		reportCaller = true
		reportTimestamp = true
		lvl = log.DebugLevel
	case "debug":
		reportTimestamp = true
		lvl = log.DebugLevel
	case "info":
		lvl = log.InfoLevel
	case "warn", "warning":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: reportTimestamp,
		ReportCaller:    reportCaller,
		Level:           lvl,
		Prefix:          "cartomap",
	})
}

// SetupHandlerJSON returns a JSON handler, used when stderr is consumed by
// another program (the MCP server).
func SetupHandlerJSON(logLevel string, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "trace", "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: strings.EqualFold(logLevel, "trace"),
	})
}

// New builds a logger and installs it as the slog default.
func New(logLevel, format string, w io.Writer) *slog.Logger {
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = SetupHandlerJSON(logLevel, w)
	} else {
		handler = SetupHandlerText(logLevel, w)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

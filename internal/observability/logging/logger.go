// Package logging builds the slog loggers shared by the API server and the
// import worker. Both binaries emit single-line JSON with a service
// attribute so one scrape pipeline covers the whole deployment.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger returns a JSON logger tagged with the service name. The
// level string follows slog's text form ("debug", "info", "warn", "error");
// anything unparseable falls back to info.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromString(level),
	})
	return slog.New(handler).With(slog.String("service", service))
}

func levelFromString(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}

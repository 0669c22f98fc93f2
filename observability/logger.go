// Package observability builds the structured logger used by the assembly
// engine and the prometheus instruments that count its work.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

const attrService = "service"

// NewLogger returns a logger writing to w. An unknown format or level is an
// error.
func NewLogger(w io.Writer, format LogFormat, level string) (*slog.Logger, error) {
	var (
		lvl slog.Level
		h   slog.Handler
	)
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(level)))); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch LogFormat(strings.ToLower(string(format))) {
	case FormatText, "":
		h = slog.NewTextHandler(w, opts)
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return slog.New(h).With(slog.String(attrService, "dgresidual")), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

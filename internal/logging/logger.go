// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// Config selects level and output format for New.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	Writer io.Writer
}

// New builds a slog.Logger rendered through pterm's logger.
func New(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	pl := pterm.DefaultLogger.
		WithLevel(parseLevel(cfg.Level)).
		WithWriter(w)
	if strings.EqualFold(cfg.Format, "json") {
		pl = pl.WithFormatter(pterm.LogFormatterJSON)
	}
	return slog.New(pterm.NewSlogHandler(pl))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func parseLevel(level string) pterm.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	default:
		return pterm.LogLevelInfo
	}
}

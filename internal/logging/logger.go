// Package logging builds the process logger: a charmbracelet/log handler
// exposed as *slog.Logger so library packages only depend on log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Field names shared by log lines across packages.
const (
	FieldError      = "error"
	FieldFile       = "file"
	FieldFiles      = "files"
	FieldRule       = "rule"
	FieldLoop       = "loop"
	FieldViolations = "violations"
	FieldElapsed    = "elapsed"
	FieldRunID      = "run_id"
	FieldMethod     = "method"
)

// ParseLevel maps a level name to a charmbracelet level; unknown names
// fall back to warn.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

// Options configures New.
type Options struct {
	Level   string
	NoColor bool
	Prefix  string
}

// New returns a logger writing to w (stderr when nil).
func New(w io.Writer, opts Options) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Prefix:          opts.Prefix,
		ReportTimestamp: false,
	})
	if opts.NoColor {
		handler.SetStyles(plainStyles())
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func plainStyles() *log.Styles {
	styles := log.DefaultStyles()
	for lvl := range styles.Levels {
		styles.Levels[lvl] = styles.Levels[lvl].UnsetForeground().UnsetBackground()
	}
	styles.Key = styles.Key.UnsetForeground()
	styles.Value = styles.Value.UnsetForeground()
	styles.Prefix = styles.Prefix.UnsetForeground()
	return styles
}

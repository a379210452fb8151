package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/sqlgrain/internal/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.WarnLevel},
		{"loud", log.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, logging.ParseLevel(tt.level))
		})
	}
}

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New(&buf, logging.Options{Level: "info", NoColor: true})

	logger.Debug("hidden")
	logger.Info("linted file", logging.FieldFile, "a.sql")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "linted file")
	assert.Contains(t, out, "file=a.sql")
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	logger := logging.Discard()
	ctx := logging.WithLogger(context.Background(), logger)
	assert.Same(t, logger, logging.FromContext(ctx))
	assert.Same(t, slog.Default(), logging.FromContext(context.Background()))
}

package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgrain/internal/cli/config"
	"github.com/leapstack-labs/sqlgrain/internal/cli/testutil"
	"github.com/leapstack-labs/sqlgrain/internal/logging"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

func newTestSession(t *testing.T) (*replSession, *testutil.TestRenderer, *bytes.Buffer) {
	t.Helper()
	testutil.SetupTestProject(t, nil)
	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	r := testutil.NewTestRenderer("text")
	errOut := new(bytes.Buffer)
	cc := &CommandContext{Cfg: cfg, Logger: logging.Discard(), Renderer: r.Renderer}
	s, err := newReplSession(context.Background(), cc, errOut)
	require.NoError(t, err)
	return s, r, errOut
}

func TestReplMultiline(t *testing.T) {
	s, r, _ := newTestSession(t)

	assert.False(t, s.handleLine("select a"))
	assert.Empty(t, r.Output(), "nothing runs before the semicolon")
	assert.False(t, s.handleLine("from t;"))
	assert.Contains(t, r.Output(), "select_statement:")
	assert.Zero(t, s.buf.Len())
}

func TestReplDotCommands(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		quit    bool
		want    string
		wantErr string
	}{
		{name: "quit", line: ".quit", quit: true},
		{name: "exit", line: ".exit", quit: true},
		{name: "help", line: ".help", want: ".dialect [name]"},
		{name: "meta", line: ".meta", want: "meta segments: on"},
		{name: "lint", line: ".lint", want: "lint: on"},
		{name: "show dialect", line: ".dialect", want: "dialect: ansi"},
		{name: "switch dialect", line: ".dialect trino", want: "dialect: trino"},
		{name: "bad dialect", line: ".dialect nope", wantErr: "Error:"},
		{name: "unknown", line: ".tables", wantErr: "Unknown command: .tables"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, r, errOut := newTestSession(t)
			assert.Equal(t, tt.quit, s.handleLine(tt.line))
			if tt.want != "" {
				assert.Contains(t, r.Output(), tt.want)
			}
			if tt.wantErr != "" {
				assert.Contains(t, errOut.String(), tt.wantErr)
			}
		})
	}
}

func TestReplSwitchDialectKeepsConfig(t *testing.T) {
	s, _, _ := newTestSession(t)
	before := s.cfg
	s.handleLine(".dialect databricks")
	assert.Equal(t, "databricks", s.cfg.Dialect)
	assert.Equal(t, lint.DefaultDialect, before.Dialect, "the previous config is not mutated")
	assert.Equal(t, "databricks", s.linter.Dialect().Name())
}

func TestReplLint(t *testing.T) {
	s, r, _ := newTestSession(t)
	s.cfg.Rules = []string{"LT01"}
	require.NoError(t, s.setDialect("ansi"))
	s.handleLine(".lint")
	s.handleLine("select a  from t;")
	assert.Contains(t, r.Output(), "LT01")
}

// Package main provides tests for the sqlgrain CLI.
package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgrain/internal/cli"
	"github.com/leapstack-labs/sqlgrain/internal/cli/commands"
	"github.com/leapstack-labs/sqlgrain/internal/cli/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlgrain v")
}

func TestHelpCommand(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"lint", "fix", "parse", "rules", "dialects", "repl", "lsp"} {
		assert.Contains(t, out, name)
	}
}

func TestLintCommand(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr bool
		want    string
	}{
		{name: "clean", sql: "select a from t\n", want: "files"},
		{name: "double space", sql: "select a  from t\n", wantErr: true, want: "LT01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.SetupTestProject(t, map[string]string{"q.sql": tt.sql})
			out, err := execute(t, "lint", "--rules", "LT01", "-o", "text", "--nocolor", "q.sql")
			if tt.wantErr {
				require.ErrorIs(t, err, commands.ErrLintFailed)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out, tt.want)
			testutil.AssertNoANSI(t, out)
		})
	}
}

func TestLintCommandJSON(t *testing.T) {
	testutil.SetupTestProject(t, map[string]string{"q.sql": "select a  from t\n"})
	cmd := cli.NewRootCmd()
	stdout := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"lint", "--rules", "LT01", "-o", "json", "q.sql"})
	require.ErrorIs(t, cmd.Execute(), commands.ErrLintFailed)

	var reports []struct {
		Filepath   string `json:"filepath"`
		Violations []struct {
			Code string `json:"code"`
		} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "q.sql", reports[0].Filepath)
	require.NotEmpty(t, reports[0].Violations)
	assert.Equal(t, "LT01", reports[0].Violations[0].Code)
}

func TestFixCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t, map[string]string{"q.sql": "select a  from t\n"})
	_, err := execute(t, "fix", "--rules", "LT01", "--force", "-o", "text", "--nocolor", "q.sql")
	require.NoError(t, err)
	assert.Equal(t, "select a from t\n", testutil.ReadFile(t, dir, "q.sql"))
}

func TestConfigFileDialect(t *testing.T) {
	testutil.SetupTestProject(t, map[string]string{
		".sqlgrain.yaml": "dialect: trino\n",
		"q.sql":          "select 1\n",
	})
	out, err := execute(t, "parse", "-o", "text", "--nocolor", "q.sql")
	require.NoError(t, err)
	assert.Contains(t, out, "select_statement")
}

func TestUnknownDialect(t *testing.T) {
	testutil.SetupTestProject(t, map[string]string{"q.sql": "select 1\n"})
	_, err := execute(t, "lint", "--dialect", "nope", "q.sql")
	require.Error(t, err)
	assert.NotErrorIs(t, err, commands.ErrLintFailed)
}

package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgrain/internal/cli/testutil"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

func TestFixCommand(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		args     []string
		stdin    string
		wantErr  error
		wantFile string
		want     []string
	}{
		{
			name:     "force",
			sql:      "select a  from t\n",
			args:     []string{"--force"},
			wantFile: "select a from t\n",
			want:     []string{"FIXED q.sql", "Fixed 1 file(s)"},
		},
		{
			name:     "diff leaves the file alone",
			sql:      "select a  from t\n",
			args:     []string{"--diff"},
			wantErr:  ErrLintFailed,
			wantFile: "select a  from t\n",
			want:     []string{"--- a/q.sql", "+++ b/q.sql", "-select a  from t", "+select a from t"},
		},
		{
			name:     "no terminal without force",
			sql:      "select a  from t\n",
			stdin:    "y\n",
			wantErr:  ErrNotConfirmed,
			wantFile: "select a  from t\n",
		},
		{
			name:     "nothing to fix",
			sql:      "select a from t\n",
			wantFile: "select a from t\n",
			want:     []string{"No fixable violations found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.SetupTestProject(t, map[string]string{"q.sql": tt.sql})
			cmd := NewFixCommand()
			cmd.SetIn(strings.NewReader(tt.stdin))
			args := append([]string{"--nocolor", "-o", "text", "--rules", "LT01"}, tt.args...)
			out, _, err := run(t, cmd, append(args, "q.sql")...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantFile, testutil.ReadFile(t, dir, "q.sql"))
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestFixCommandStdinFromRoot(t *testing.T) {
	// The prompt reads the root's stdin when the command has none.
	testutil.SetupTestProject(t, map[string]string{"q.sql": "select a  from t\n"})
	root := &cobra.Command{Use: "sqlgrain"}
	root.PersistentFlags().StringSlice("rules", nil, "")
	root.AddCommand(NewFixCommand())
	root.SetIn(strings.NewReader("n\n"))
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"fix", "--rules", "LT01", "q.sql"})
	root.SilenceErrors = true
	root.SilenceUsage = true
	require.ErrorIs(t, root.Execute(), ErrNotConfirmed)
}

func TestAskYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "\n", want: true},
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "nope\n", want: false},
		{input: "", want: true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			out := new(bytes.Buffer)
			got, err := askYesNo(strings.NewReader(tt.input), out, "Fix? ")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Fix? ", out.String())
		})
	}
}

func TestWriteColorDiffPlain(t *testing.T) {
	diff := "--- a/q.sql\n+++ b/q.sql\n@@ -1 +1 @@\n-select a  from t\n+select a from t\n"
	out := new(bytes.Buffer)
	writeColorDiff(out, diff, true)
	assert.Equal(t, diff, out.String())
	testutil.AssertNoANSI(t, out.String())
}

func TestRemainingErrors(t *testing.T) {
	fixable := &lint.Violation{Code: "LT01", Fixable: true}
	unfixable := &lint.Violation{Code: "ST04"}
	warning := &lint.Violation{Code: "LT01", Warning: true}

	tests := []struct {
		name    string
		vs      []*lint.Violation
		written bool
		wantErr bool
	}{
		{name: "clean"},
		{name: "fixed", vs: []*lint.Violation{fixable}, written: true},
		{name: "not written", vs: []*lint.Violation{fixable}, wantErr: true},
		{name: "unfixable", vs: []*lint.Violation{unfixable}, written: true, wantErr: true},
		{name: "warning only", vs: []*lint.Violation{warning}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &lint.LintedFile{Path: "q.sql", Violations: tt.vs}
			res := &lint.LintingResult{Files: []*lint.LintedFile{f}}
			written := map[*lint.LintedFile]bool{f: tt.written}
			err := remainingErrors(res, written)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrLintFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqlgrain/internal/cli/output"
	"github.com/leapstack-labs/sqlgrain/internal/cli/testutil"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

func sampleResult() *lint.LintingResult {
	return &lint.LintingResult{Files: []*lint.LintedFile{
		{Path: "clean.sql"},
		{Path: "dirty.sql", Violations: []*lint.Violation{
			{Code: "LT01", Name: "layout.spacing", Description: "Unnecessary trailing whitespace.", Line: 1, Pos: 9, Fixable: true},
			{Code: "AL06", Name: "aliasing.length", Description: "Alias is too short.", Line: 2, Pos: 3, Warning: true},
		}},
	}}
}

func render(t *testing.T, mode output.Mode, showPass bool) string {
	t.Helper()
	r := testutil.NewTestRenderer(mode)
	require.NoError(t, r.LintResult(sampleResult(), showPass))
	testutil.AssertNoANSI(t, r.Output())
	return r.Output()
}

func TestLintResultText(t *testing.T) {
	out := render(t, output.ModeText, false)

	assert.Contains(t, out, "== [dirty.sql] FAIL")
	assert.Contains(t, out, "L:   1 | P:   9 | LT01 | Unnecessary trailing whitespace.")
	assert.Contains(t, out, "L:   2 | P:   3 | AL06 | WARNING: Alias is too short.")
	assert.NotContains(t, out, "clean.sql")

	out = render(t, output.ModeText, true)
	assert.Contains(t, out, "== [clean.sql] PASS")
}

func TestLintResultJSON(t *testing.T) {
	out := render(t, output.ModeJSON, false)

	var reports []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, "clean.sql", reports[0]["filepath"])
	assert.Empty(t, reports[0]["violations"])

	vs := reports[1]["violations"].([]any)
	first := vs[0].(map[string]any)
	assert.Equal(t, "LT01", first["code"])
	assert.InDelta(t, 9, first["start_line_pos"], 0)
}

func TestLintResultYAML(t *testing.T) {
	out := render(t, output.ModeYAML, false)

	var reports []output.FileReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, "AL06", reports[1].Violations[1].Code)
	assert.True(t, reports[1].Violations[1].Warning)
}

func TestLintResultGitHub(t *testing.T) {
	out := render(t, output.ModeGitHub, false)

	assert.Equal(t,
		"::error file=dirty.sql,line=1,col=9::LT01: Unnecessary trailing whitespace.\n"+
			"::warning file=dirty.sql,line=2,col=3::AL06: Alias is too short.\n",
		out)
}

func TestEffectiveMode(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "")
	r := output.NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, output.ModeAuto)
	assert.Equal(t, output.ModeText, r.EffectiveMode())

	t.Setenv("GITHUB_ACTIONS", "true")
	assert.Equal(t, output.ModeGitHub, r.EffectiveMode())
}

func TestParseMode(t *testing.T) {
	m, err := output.ParseMode("JSON")
	require.NoError(t, err)
	assert.Equal(t, output.ModeJSON, m)

	_, err = output.ParseMode("xml")
	require.Error(t, err)
}

func TestLintResultWraps(t *testing.T) {
	var out bytes.Buffer
	r := output.NewRenderer(&out, &bytes.Buffer{}, output.ModeText, output.WithNoColor(true), output.WithWidth(40))
	res := &lint.LintingResult{Files: []*lint.LintedFile{
		{Path: "long.sql", Violations: []*lint.Violation{
			{Code: "LT05", Description: "Line is too long because of many words.", Line: 3, Pos: 1},
		}},
	}}
	require.NoError(t, r.LintResult(res, false))

	// "L:   3 | P:   1 | LT05 | " is 25 columns wide.
	assert.Contains(t, out.String(), "L:   3 | P:   1 | LT05 | Line is too\n"+
		"                         long because of\n"+
		"                         many words.\n")
}

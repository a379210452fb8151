package lint_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/sqlgrain/internal/template" // register the jinja templater
	"github.com/leapstack-labs/sqlgrain/internal/testutil"
	_ "github.com/leapstack-labs/sqlgrain/pkg/dialects" // register dialects
	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	_ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules" // register rules
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(lint.RuleDef{
		Code:        "TS01",
		Name:        "testing.panics",
		Groups:      []string{"testing"},
		Description: "Always panics.",
		Crawler:     lint.RootOnlyCrawler{},
		Eval: func(*lint.RuleContext, map[string]any) []lint.LintResult {
			panic("boom")
		},
	})
	lint.Register(lint.RuleDef{
		Code:        "TS02",
		Name:        "testing.conflicts",
		Groups:      []string{"testing"},
		Description: "Replaces the first keyword twice.",
		Crawler:     lint.SeekSegments(syntax.Keyword),
		Fixable:     true,
		Eval: func(ctx *lint.RuleContext, _ map[string]any) []lint.LintResult {
			kw := ctx.Segment
			return []lint.LintResult{{
				Anchor: kw,
				Fixes: []fix.LintFix{
					fix.Replace(kw, []*segment.Segment{kw.Edit("foo")}),
					fix.Replace(kw, []*segment.Segment{kw.Edit("bar")}),
				},
			}}
		},
	})
}

func newLinter(t *testing.T, cfg *lint.Config) *lint.Linter {
	t.Helper()
	l, err := lint.NewLinter(cfg, lint.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	return l
}

func configFor(rules ...string) *lint.Config {
	cfg := lint.NewConfig()
	cfg.Rules = rules
	return cfg
}

func codes(vs []*lint.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Code
	}
	return out
}

func TestRuleSelection(t *testing.T) {
	tests := []struct {
		name    string
		rules   []string
		exclude []string
		want    []string
	}{
		{name: "by code", rules: []string{"AL01"}, want: []string{"AL01"}},
		{name: "by name", rules: []string{"layout.indent"}, want: []string{"LT02"}},
		{name: "by alias", rules: []string{"L010"}, want: []string{"CP01"}},
		{name: "case insensitive", rules: []string{"cp02"}, want: []string{"CP02"}},
		{name: "by group", rules: []string{"capitalisation"}, want: []string{"CP01", "CP02"}},
		{name: "group minus code", rules: []string{"structure"}, exclude: []string{"ST04"}, want: []string{"ST01"}},
		{name: "several", rules: []string{"LT12", "AL01"}, want: []string{"AL01", "LT12"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := configFor(tt.rules...)
			cfg.ExcludeRules = tt.exclude
			pack, err := lint.BuildRulePack(cfg, testutil.NewTestLogger(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, pack.Codes())
		})
	}
}

func TestRuleSelectionAllExcludesNothingByDefault(t *testing.T) {
	pack, err := lint.BuildRulePack(lint.NewConfig(), testutil.NewTestLogger(t))
	require.NoError(t, err)
	for _, code := range []string{"AL01", "AL02", "AL05", "AL06", "CP01", "CP02", "CV01", "CV04",
		"LT01", "LT02", "LT11", "LT12", "LT13", "ST01", "ST04"} {
		assert.Contains(t, pack.Codes(), code)
	}
}

func TestUnknownRuleReference(t *testing.T) {
	_, err := lint.NewLinter(configFor("XX99"))
	require.ErrorIs(t, err, lint.ErrUnknownRule)
	assert.Contains(t, err.Error(), `"XX99"`)

	cfg := lint.NewConfig()
	cfg.ExcludeRules = []string{"nope"}
	_, err = lint.NewLinter(cfg)
	assert.ErrorIs(t, err, lint.ErrUnknownRule)

	cfg = lint.NewConfig()
	cfg.SetRuleOptions("nothing.here", map[string]any{"a": 1})
	_, err = lint.NewLinter(cfg)
	assert.ErrorIs(t, err, lint.ErrUnknownRule)
}

func TestUnknownRuleOption(t *testing.T) {
	cfg := configFor("AL01")
	cfg.SetRuleOptions("AL01", map[string]any{"aliasingg": "explicit"})
	_, err := lint.NewLinter(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown option "aliasingg"`)
}

func TestRuleOptionsByNameAndCode(t *testing.T) {
	cfg := configFor("CP01")
	cfg.SetRuleOptions("capitalisation.keywords", map[string]any{"capitalisation_policy": "upper"})
	l := newLinter(t, cfg)
	lf, err := l.LintString(context.Background(), "select a from t", "t.sql", false)
	require.NoError(t, err)
	assert.Len(t, lf.Violations, 2)

	// Code level options win over name level ones.
	cfg.SetRuleOptions("CP01", map[string]any{"capitalisation_policy": "lower"})
	l = newLinter(t, cfg)
	lf, err = l.LintString(context.Background(), "select a from t", "t.sql", false)
	require.NoError(t, err)
	assert.Empty(t, lf.Violations)
}

func TestNoqa(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{name: "no directive", sql: "SELECT a FROM t where a = 1\n", want: []string{"CP01"}},
		{name: "bare noqa", sql: "SELECT a FROM t where a = 1 -- noqa\n", want: []string{}},
		{name: "by code", sql: "SELECT a FROM t where a = 1 -- noqa: CP01\n", want: []string{}},
		{name: "by name", sql: "SELECT a FROM t where a = 1 -- noqa: capitalisation.keywords\n", want: []string{}},
		{name: "other rule", sql: "SELECT a FROM t where a = 1 -- noqa: LT01\n", want: []string{"CP01"}},
		{name: "other line", sql: "SELECT a FROM t -- noqa\nwhere a = 1\n", want: []string{"CP01"}},
	}
	l := newLinter(t, configFor("CP01"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lf, err := l.LintString(context.Background(), tt.sql, "noqa.sql", false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, codes(lf.Violations))
		})
	}
}

func TestPanickingRuleIsReported(t *testing.T) {
	l := newLinter(t, configFor("TS01", "CP01"))
	lf, err := l.LintString(context.Background(), "SELECT a FROM t where a = 1", "panic.sql", true)
	require.NoError(t, err)

	require.Len(t, lf.Violations, 2)
	var panicked *lint.Violation
	for _, v := range lf.Violations {
		if v.Code == "TS01" {
			panicked = v
		}
	}
	require.NotNil(t, panicked)
	assert.True(t, strings.HasPrefix(panicked.Description, "Unexpected exception: boom"))
	assert.Equal(t, 1, panicked.Line)

	// The other rule still fixed the file.
	fixed, changed := lf.FixString()
	assert.True(t, changed)
	assert.Equal(t, "SELECT a FROM t WHERE a = 1", fixed)
}

func TestConflictingFixesAreSkipped(t *testing.T) {
	l := newLinter(t, configFor("TS02"))
	lf, err := l.LintString(context.Background(), "SELECT 1", "conflict.sql", true)
	require.NoError(t, err)
	require.Len(t, lf.Violations, 1)

	fixed, changed := lf.FixString()
	assert.False(t, changed)
	assert.Equal(t, "SELECT 1", fixed)
}

func TestParseViolations(t *testing.T) {
	l := newLinter(t, configFor("CP01"))
	lf, err := l.LintString(context.Background(), "select a from t where", "broken.sql", false)
	require.NoError(t, err)
	assert.Contains(t, codes(lf.Violations), lint.CodeParse)
	for _, v := range lf.Violations {
		if v.Code == lint.CodeParse {
			assert.True(t, strings.HasPrefix(v.Description, "Found unparsable section:"))
		}
	}
}

func TestTemplateViolation(t *testing.T) {
	cfg := configFor("CP01")
	cfg.Templater = "jinja"
	l := newLinter(t, cfg)
	lf, err := l.LintString(context.Background(), "SELECT {{ a ", "tmpl.sql", false)
	require.NoError(t, err)
	require.Len(t, lf.Violations, 1)
	assert.Equal(t, lint.CodeTemplate, lf.Violations[0].Code)
	assert.Nil(t, lf.Tree)
}

func TestJinjaFixKeepsTemplateTags(t *testing.T) {
	cfg := configFor("CP01")
	cfg.Templater = "jinja"
	cfg.TemplaterContext = map[string]any{"col": "a"}
	cfg.SetRuleOptions("CP01", map[string]any{"capitalisation_policy": "upper"})
	l := newLinter(t, cfg)

	src := "select {{ col }} {# c #}from t\n"
	lf, err := l.LintString(context.Background(), src, "tmpl.sql", true)
	require.NoError(t, err)
	require.Len(t, lf.Violations, 2)

	fixed, changed := lf.FixString()
	assert.True(t, changed)
	assert.Equal(t, "SELECT {{ col }} {# c #}FROM t\n", fixed)
}

func TestSeverityOverride(t *testing.T) {
	cfg := configFor("CP01")
	cfg.SetSeverity("CP01", lint.SeverityWarning)
	l := newLinter(t, cfg)
	lf, err := l.LintString(context.Background(), "SELECT a FROM t where a = 1", "warn.sql", false)
	require.NoError(t, err)
	require.Len(t, lf.Violations, 1)
	assert.True(t, lf.Violations[0].Warning)
	assert.True(t, lf.IsClean())
}

func TestViolationsAreSorted(t *testing.T) {
	l := newLinter(t, configFor("CP01", "LT01"))
	lf, err := l.LintString(context.Background(), "SELECT a  FROM t\nwhere a = 1  ", "sorted.sql", false)
	require.NoError(t, err)
	require.Len(t, lf.Violations, 3)
	assert.Equal(t, []string{"LT01", "CP01", "LT01"}, codes(lf.Violations))
	assert.Equal(t, 1, lf.Violations[0].Line)
	assert.Equal(t, 2, lf.Violations[1].Line)
}

func TestScenarioFixes(t *testing.T) {
	tests := []struct {
		name string
		rule string
		sql  string
		want string
	}{
		{name: "explicit table alias", rule: "AL01", sql: "select foo.bar from table1 foo", want: "select foo.bar from table1 AS foo"},
		{name: "first line indent", rule: "LT02", sql: "     SELECT 1", want: "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLinter(t, configFor(tt.rule))
			lf, err := l.LintString(context.Background(), tt.sql, "scenario.sql", true)
			require.NoError(t, err)
			assert.Len(t, lf.Violations, 1)
			fixed, changed := lf.FixString()
			assert.True(t, changed)
			assert.Equal(t, tt.want, fixed)

			diff, err := lf.Diff()
			require.NoError(t, err)
			assert.Contains(t, diff, "+"+tt.want)
		})
	}
}

func TestLintPaths(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) string {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}
	clean := write("a/clean.sql", "SELECT a FROM t\n")
	dirty := write("b/dirty.sql", "SELECT a FROM t where a = 1\n")
	write("b/notes.txt", "select")
	write(".hidden/skip.sql", "select")

	cfg := configFor("CP01")
	cfg.Processes = 2
	l := newLinter(t, cfg)
	res, err := l.LintPaths(context.Background(), []string{dir}, false)
	require.NoError(t, err)
	require.Len(t, res.Files, 2)
	assert.Equal(t, clean, res.Files[0].Path)
	assert.Equal(t, dirty, res.Files[1].Path)
	assert.True(t, res.HasErrors())

	stats := res.Stats()
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 1, stats.CleanFiles)
	assert.Equal(t, 1, stats.Violations)
	assert.Equal(t, 1, stats.Fixable)
	assert.Equal(t, map[string]int{"CP01": 1}, stats.ByCode)
}

func TestPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fix.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT a FROM t where a = 1\n"), 0o600))

	l := newLinter(t, configFor("CP01"))
	res, err := l.LintPaths(context.Background(), []string{path}, true)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)

	written, err := res.Files[0].Persist()
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM t WHERE a = 1\n", string(data))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestExpandPathsMissing(t *testing.T) {
	_, err := lint.ExpandPaths([]string{filepath.Join(t.TempDir(), "missing.sql")})
	assert.Error(t, err)
}

func TestBuildDocURL(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"LT01", "https://sqlgrain.dev/rules/layout#lt01"},
		{"CP01", "https://sqlgrain.dev/rules/capitalisation#cp01"},
		{"ZZ99", "https://sqlgrain.dev/rules/other#zz99"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, lint.BuildDocURL(tt.code))
		})
	}
}

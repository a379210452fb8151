package testutil

import (
	"context"
	"os"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	_ "github.com/leapstack-labs/sqlgrain/pkg/dialects" // register dialects
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

// RuleCase is one case of a rule fixture file.
//
// A case either passes (PassStr) or fails (FailStr). A failing case with a
// FixStr also checks the fixed output.
type RuleCase struct {
	PassStr    string         `yaml:"pass_str"`
	FailStr    string         `yaml:"fail_str"`
	FixStr     string         `yaml:"fix_str"`
	Dialect    string         `yaml:"dialect"`
	Options    map[string]any `yaml:"options"`
	Violations int            `yaml:"violations"`
}

// RunRuleFixtures runs every case in a yaml fixture file. The file names the
// rule under test with a top level "rule" key; every other key is a case.
func RunRuleFixtures(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &raw))

	ruleNode, ok := raw["rule"]
	require.True(t, ok, "%s: missing rule key", path)
	var rule string
	require.NoError(t, ruleNode.Decode(&rule))
	delete(raw, "rule")

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		node := raw[name]
		var tc RuleCase
		require.NoError(t, node.Decode(&tc), "case %s", name)
		t.Run(name, func(t *testing.T) {
			runRuleCase(t, rule, tc)
		})
	}
}

func runRuleCase(t *testing.T, rule string, tc RuleCase) {
	t.Helper()
	if tc.PassStr != "" {
		vs := LintRule(t, rule, tc.Dialect, tc.Options, tc.PassStr)
		assert.Empty(t, vs, "expected no %s violations", rule)
		return
	}

	require.NotEmpty(t, tc.FailStr, "case needs pass_str or fail_str")
	vs := LintRule(t, rule, tc.Dialect, tc.Options, tc.FailStr)
	require.NotEmpty(t, vs, "expected %s violations", rule)
	if tc.Violations > 0 {
		assert.Len(t, vs, tc.Violations)
	}
	if tc.FixStr != "" {
		assert.Equal(t, tc.FixStr, FixRule(t, rule, tc.Dialect, tc.Options, tc.FailStr))
	}
}

// RuleLinter builds a linter that runs only rule.
func RuleLinter(t testing.TB, rule, dialect string, opts map[string]any) *lint.Linter {
	t.Helper()
	cfg := lint.NewConfig()
	cfg.Rules = []string{rule}
	if dialect != "" {
		cfg.Dialect = dialect
	}
	if len(opts) > 0 {
		cfg.SetRuleOptions(rule, opts)
	}
	l, err := lint.NewLinter(cfg, lint.WithLogger(NewTestLogger(t)))
	require.NoError(t, err)
	return l
}

// LintRule returns the violations rule raises on sql.
func LintRule(t testing.TB, rule, dialect string, opts map[string]any, sql string) []*lint.Violation {
	t.Helper()
	l := RuleLinter(t, rule, dialect, opts)
	lf, err := l.LintString(context.Background(), sql, "test.sql", false)
	require.NoError(t, err)

	codes := make(map[string]bool)
	for _, r := range l.Rules() {
		codes[r.Code()] = true
	}
	var out []*lint.Violation
	for _, v := range lf.Violations {
		if codes[v.Code] {
			out = append(out, v)
		}
	}
	return out
}

// FixRule returns sql after applying the fixes of rule.
func FixRule(t testing.TB, rule, dialect string, opts map[string]any, sql string) string {
	t.Helper()
	l := RuleLinter(t, rule, dialect, opts)
	lf, err := l.LintString(context.Background(), sql, "test.sql", true)
	require.NoError(t, err)
	fixed, _ := lf.FixString()
	return fixed
}

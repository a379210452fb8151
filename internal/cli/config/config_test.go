package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/sqlgrain/internal/template"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	_ "github.com/leapstack-labs/sqlgrain/pkg/dialects"
	_ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "ansi", cfg.Dialect)
	assert.Equal(t, "raw", cfg.Templater)
	assert.Equal(t, "auto", cfg.Output)
	assert.Equal(t, 10, cfg.RunawayLimit)
	assert.Equal(t, 4, cfg.Indentation.TabSpaceSize)
	assert.Equal(t, "space", cfg.Indentation.IndentUnit)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ".sqlgrain.yaml", `dialect: trino
templater: jinja
rules: AL01,LT02
exclude_rules: [LT01]
templater_context:
  schema: analytics
rule_options:
  capitalisation.keywords:
    capitalisation_policy: upper
  AL06:
    min_alias_length: 3
severity:
  lt02: warning
indentation:
  tab_space_size: 2
  indented_joins: true
parser:
  strict_brackets: true
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "trino", cfg.Dialect)
	assert.Equal(t, "jinja", cfg.Templater)
	assert.Equal(t, []string{"AL01", "LT02"}, cfg.Rules)
	assert.Equal(t, []string{"LT01"}, cfg.ExcludeRules)
	assert.Equal(t, "analytics", cfg.TemplaterContext["schema"])
	assert.Equal(t, map[string]map[string]any{
		"capitalisation.keywords": {"capitalisation_policy": "upper"},
		"AL06":                    {"min_alias_length": 3},
	}, cfg.RuleOptions)
	assert.True(t, cfg.Parser.StrictBrackets)
	assert.Equal(t, dir, cfg.ProjectRoot)

	lc, err := cfg.LintConfig()
	require.NoError(t, err)
	assert.Equal(t, 2, lc.TabSpaceSize)
	assert.True(t, lc.StrictBrackets)
	assert.True(t, lc.Indentation["indented_joins"])
	assert.Equal(t, lint.SeverityWarning, lc.GetSeverity("LT02", lint.SeverityError))
	assert.Equal(t, "upper", lc.RuleOptions["capitalisation.keywords"]["capitalisation_policy"])

	_, err = lint.NewLinter(lc)
	require.NoError(t, err)
}

func TestLoadConfigTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ".sqlgrain.toml", `dialect = "databricks"
exclude_rules = ["LT12"]

[rule_options.CP01]
capitalisation_policy = "lower"
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "databricks", cfg.Dialect)
	assert.Equal(t, []string{"LT12"}, cfg.ExcludeRules)
	assert.Equal(t, "lower", cfg.RuleOptions["CP01"]["capitalisation_policy"])
}

func TestFindConfigFileUpward(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, ".sqlgrain.yml", "dialect: ansi\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	assert.Equal(t, path, FindConfigFile(nested))
	assert.Empty(t, FindConfigFile(t.TempDir()))

	t.Chdir(nested)
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ".sqlgrain.yaml", "dialect: trino\noutput: json\nrunaway_limit: 4\n")

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("SQLGRAIN_DIALECT", "databricks")
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "databricks", cfg.Dialect)
		assert.Equal(t, "json", cfg.Output)
	})

	t.Run("nested env keys", func(t *testing.T) {
		t.Setenv("SQLGRAIN_PARSER__STRICT_BRACKETS", "true")
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.True(t, cfg.Parser.StrictBrackets)
	})

	t.Run("flags override env", func(t *testing.T) {
		t.Setenv("SQLGRAIN_DIALECT", "databricks")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("dialect", "", "")
		flags.StringSlice("exclude-rules", nil, "")
		require.NoError(t, flags.Set("dialect", "ansi"))
		require.NoError(t, flags.Set("exclude-rules", "LT01,LT02"))

		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "ansi", cfg.Dialect)
		assert.Equal(t, []string{"LT01", "LT02"}, cfg.ExcludeRules)
		assert.Equal(t, 4, cfg.RunawayLimit)
	})

	t.Run("unset flags fall through", func(t *testing.T) {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("dialect", "ansi", "")
		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "trino", cfg.Dialect)
	})
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"unknown dialect", "dialect: oracle\n", "invalid dialect"},
		{"unknown templater", "templater: mustache\n", "invalid templater"},
		{"unknown output", "output: xml\n", `invalid output "xml"`},
		{"bad indent unit", "indentation:\n  indent_unit: both\n", "indent_unit"},
		{"zero runaway limit", "runaway_limit: 0\n", "runaway_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, dir, tt.name+".yaml", tt.content)
			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestLintConfigRejectsBadSeverity(t *testing.T) {
	cfg := &Config{Dialect: "ansi", Templater: "raw", Severity: map[string]string{"LT01": "loud"}}
	_, err := cfg.LintConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown level "loud"`)
}

func TestCanonicalRuleRef(t *testing.T) {
	assert.Equal(t, "CP01", canonicalRuleRef("cp01"))
	assert.Equal(t, "capitalisation.keywords", canonicalRuleRef("Capitalisation.Keywords"))
	assert.Equal(t, "nope", canonicalRuleRef("nope"))
}

func TestLoadConfigMacroPaths(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "shared")
	path := writeConfig(t, dir, ".sqlgrain.yaml", "templater: jinja\nmacro_paths: [macros, "+abs+"]\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "macros"), abs}, cfg.MacroPaths)

	lc, err := cfg.LintConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg.MacroPaths, lc.MacroPaths)
}

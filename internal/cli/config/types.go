// Package config loads sqlgrain settings from defaults, a project config
// file, SQLGRAIN_ environment variables and command-line flags.
package config

import (
	"fmt"
	"maps"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

// Default configuration values.
const (
	DefaultDialect   = lint.DefaultDialect
	DefaultTemplater = lint.DefaultTemplater
	DefaultOutput    = "auto"
	DefaultLogLevel  = "warn"
	DefaultCachePath = ".sqlgrain/cache.db"
)

// Config holds all CLI configuration options.
type Config struct {
	Dialect          string         `koanf:"dialect"`
	Templater        string         `koanf:"templater"`
	TemplaterContext map[string]any `koanf:"templater_context"`
	ParamStyle       string         `koanf:"param_style"`
	MacroPaths       []string       `koanf:"macro_paths"`

	Rules        []string                  `koanf:"rules"`
	ExcludeRules []string                  `koanf:"exclude_rules"`
	RuleOptions  map[string]map[string]any `koanf:"-"`
	Severity     map[string]string         `koanf:"severity"`

	MaxLineLength int `koanf:"max_line_length"`
	RunawayLimit  int `koanf:"runaway_limit"`
	Processes     int `koanf:"processes"`

	Parser      ParserConfig      `koanf:"parser"`
	Indentation IndentationConfig `koanf:"indentation"`

	Output   string `koanf:"output"`
	LogLevel string `koanf:"log_level"`
	NoColor  bool   `koanf:"nocolor"`
	Verbose  bool   `koanf:"verbose"`

	Cache     bool   `koanf:"cache"`
	CachePath string `koanf:"cache_path"`

	// ProjectRoot is the directory holding the config file, or the working
	// directory when none was found.
	ProjectRoot string `koanf:"-"`
	// ConfigFile is the file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// ParserConfig holds parser switches.
type ParserConfig struct {
	StrictBrackets bool `koanf:"strict_brackets"`
}

// IndentationConfig controls LT02 and the conditional indents of the grammar.
type IndentationConfig struct {
	TabSpaceSize         int    `koanf:"tab_space_size"`
	IndentUnit           string `koanf:"indent_unit"`
	IndentedJoins        bool   `koanf:"indented_joins"`
	IndentedUsingOn      bool   `koanf:"indented_using_on"`
	IndentedOnContents   bool   `koanf:"indented_on_contents"`
	IndentedCTEs         bool   `koanf:"indented_ctes"`
	IndentedThen         bool   `koanf:"indented_then"`
	IndentedThenContents bool   `koanf:"indented_then_contents"`
}

func (c IndentationConfig) flags() map[string]bool {
	return map[string]bool{
		"indented_joins":         c.IndentedJoins,
		"indented_using_on":      c.IndentedUsingOn,
		"indented_on_contents":   c.IndentedOnContents,
		"indented_ctes":          c.IndentedCTEs,
		"indented_then":          c.IndentedThen,
		"indented_then_contents": c.IndentedThenContents,
	}
}

// LintConfig converts the CLI configuration into a linter configuration.
func (c *Config) LintConfig() (*lint.Config, error) {
	lc := lint.NewConfig()
	lc.Dialect = c.Dialect
	lc.Templater = c.Templater
	lc.TemplaterContext = maps.Clone(c.TemplaterContext)
	lc.ParamStyle = c.ParamStyle
	lc.MacroPaths = c.MacroPaths
	lc.Rules = c.Rules
	lc.ExcludeRules = c.ExcludeRules
	lc.Processes = c.Processes
	lc.StrictBrackets = c.Parser.StrictBrackets
	lc.Indentation = c.Indentation.flags()
	if c.RunawayLimit > 0 {
		lc.RunawayLimit = c.RunawayLimit
	}
	if c.MaxLineLength > 0 {
		lc.MaxLineLength = c.MaxLineLength
	}
	if c.Indentation.TabSpaceSize > 0 {
		lc.TabSpaceSize = c.Indentation.TabSpaceSize
	}
	if c.Indentation.IndentUnit != "" {
		lc.IndentUnit = c.Indentation.IndentUnit
	}

	for ref, opts := range c.RuleOptions {
		lc.SetRuleOptions(canonicalRuleRef(ref), opts)
	}
	for ref, sev := range c.Severity {
		s, ok := lint.ParseSeverity(sev)
		if !ok {
			return nil, fmt.Errorf("severity for %s: unknown level %q (valid: error, warning, info, hint)", ref, sev)
		}
		lc.SetSeverity(strings.ToUpper(ref), s)
	}
	return lc, nil
}

// canonicalRuleRef maps a case-insensitive code or name to the spelling the
// registry uses. Unknown references are returned unchanged and rejected
// later when the rule pack is built.
func canonicalRuleRef(ref string) string {
	for _, r := range lint.GetAll() {
		if strings.EqualFold(ref, r.Code()) {
			return r.Code()
		}
		if strings.EqualFold(ref, r.Name()) {
			return r.Name()
		}
	}
	return ref
}

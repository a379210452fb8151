package lint

import (
	"maps"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/parser"
)

// Defaults applied by NewConfig.
const (
	DefaultDialect       = "ansi"
	DefaultTemplater     = "raw"
	DefaultRunawayLimit  = 10
	DefaultMaxLineLength = 80
	DefaultTabSpaceSize  = 4
)

// Config controls which rules run, how they are configured and how files are
// templated and parsed before linting.
type Config struct {
	Dialect          string
	Templater        string
	TemplaterContext map[string]any
	// ParamStyle selects the placeholder templater syntax.
	ParamStyle string
	// MacroPaths lists directories of .star macro files for jinja.
	MacroPaths []string

	// Rules is an allowlist of rule references; empty means all.
	Rules []string
	// ExcludeRules is a denylist applied after Rules.
	ExcludeRules []string

	// SeverityOverrides changes the default severity of rules, keyed by code.
	SeverityOverrides map[string]Severity

	// RuleOptions holds per-rule options keyed by code or name.
	RuleOptions map[string]map[string]any

	// RunawayLimit caps the number of fix loops per file.
	RunawayLimit int
	// Processes bounds parallel linting in LintPaths; 0 means one per CPU.
	Processes int

	MaxLineLength  int
	TabSpaceSize   int
	IndentUnit     string
	StrictBrackets bool
	// Indentation flags tested by conditional grammar, e.g. "indented_joins".
	Indentation map[string]bool
}

// NewConfig creates a default configuration with all rules enabled.
func NewConfig() *Config {
	return &Config{
		Dialect:           DefaultDialect,
		Templater:         DefaultTemplater,
		SeverityOverrides: make(map[string]Severity),
		RuleOptions:       make(map[string]map[string]any),
		RunawayLimit:      DefaultRunawayLimit,
		MaxLineLength:     DefaultMaxLineLength,
		TabSpaceSize:      DefaultTabSpaceSize,
		IndentUnit:        "space",
	}
}

// Disable excludes a rule reference.
func (c *Config) Disable(ref string) *Config {
	c.ExcludeRules = append(c.ExcludeRules, ref)
	return c
}

// SetSeverity overrides the severity for a rule code.
func (c *Config) SetSeverity(code string, severity Severity) *Config {
	if c.SeverityOverrides == nil {
		c.SeverityOverrides = make(map[string]Severity)
	}
	c.SeverityOverrides[code] = severity
	return c
}

// GetSeverity returns the severity for a rule, applying any override.
func (c *Config) GetSeverity(code string, defaultSeverity Severity) Severity {
	if c != nil {
		if sev, ok := c.SeverityOverrides[code]; ok {
			return sev
		}
	}
	return defaultSeverity
}

// SetRuleOptions stores options for a rule code or name.
func (c *Config) SetRuleOptions(ref string, opts map[string]any) *Config {
	if c.RuleOptions == nil {
		c.RuleOptions = make(map[string]map[string]any)
	}
	c.RuleOptions[ref] = opts
	return c
}

// GetRuleOptions merges the options stored under the rule's name and code;
// code level options win.
func (c *Config) GetRuleOptions(r Rule) map[string]any {
	if c == nil {
		return nil
	}
	out := make(map[string]any)
	for _, ref := range []string{r.Name(), r.Code()} {
		maps.Copy(out, c.RuleOptions[ref])
	}
	return out
}

// Indent returns one level of indentation.
func (c *Config) Indent() string {
	if c.IndentUnit == "tab" {
		return "\t"
	}
	size := c.TabSpaceSize
	if size <= 0 {
		size = DefaultTabSpaceSize
	}
	return strings.Repeat(" ", size)
}

// ParserConfig derives the parser settings.
func (c *Config) ParserConfig() parser.Config {
	return parser.Config{
		StrictBrackets: c.StrictBrackets,
		Indentation:    c.Indentation,
	}
}

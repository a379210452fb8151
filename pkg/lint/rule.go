package lint

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Phase orders rules inside a fix run. Post rules run once main rules have
// settled, so end of file checks see the final layout.
type Phase int

const (
	PhaseMain Phase = iota
	PhasePost
)

func (p Phase) String() string {
	if p == PhasePost {
		return "post"
	}
	return "main"
}

// Rule is the interface the linter drives.
type Rule interface {
	// Code returns the unique identifier, e.g. "AL01".
	Code() string

	// Name returns the dotted name, e.g. "aliasing.table".
	Name() string

	Description() string

	// LongDescription documents the rule for the rules command and docs.
	LongDescription() string

	// Groups always includes "all".
	Groups() []string

	// Aliases are legacy references that still select the rule.
	Aliases() []string

	// Crawler decides which segments Eval sees.
	Crawler() Crawler

	// Eval inspects one crawled segment.
	Eval(ctx *RuleContext) []LintResult

	// IsFixCompatible reports whether the rule can produce fixes.
	IsFixCompatible() bool

	LintPhase() Phase

	// DialectSkip lists dialects the rule does not run on.
	DialectSkip() []string

	DefaultSeverity() Severity

	// ConfigKeys returns the option names Configure accepts.
	ConfigKeys() []string

	// Configure returns a copy of the rule bound to opts.
	Configure(opts map[string]any) (Rule, error)
}

// EvalFunc inspects one crawled segment. opts holds the rule's options with
// defaults applied.
type EvalFunc func(ctx *RuleContext, opts map[string]any) []LintResult

// RuleDef is a data-driven rule definition. Rules are stateless; everything
// an evaluation needs arrives through the context and the options.
type RuleDef struct {
	Code        string
	Name        string
	Description string
	Groups      []string
	Aliases     []string
	Severity    Severity
	Crawler     Crawler
	Eval        EvalFunc
	Phase       Phase
	// Fixable marks rules that return fixes.
	Fixable     bool
	DialectSkip []string
	// Defaults lists every accepted option with its default value.
	Defaults map[string]any
	// Validate checks configured options before the rule is used.
	Validate func(opts map[string]any) error

	// Documentation fields.
	Rationale   string
	BadExample  string
	GoodExample string
}

// definedRule adapts a RuleDef to the Rule interface.
type definedRule struct {
	def  RuleDef
	opts map[string]any
}

// WrapRuleDef turns def into a Rule with default options.
func WrapRuleDef(def RuleDef) Rule {
	return &definedRule{def: def, opts: maps.Clone(def.Defaults)}
}

func (r *definedRule) Code() string              { return r.def.Code }
func (r *definedRule) Name() string              { return r.def.Name }
func (r *definedRule) Description() string       { return r.def.Description }
func (r *definedRule) Aliases() []string         { return r.def.Aliases }
func (r *definedRule) Crawler() Crawler          { return r.def.Crawler }
func (r *definedRule) IsFixCompatible() bool     { return r.def.Fixable }
func (r *definedRule) LintPhase() Phase          { return r.def.Phase }
func (r *definedRule) DialectSkip() []string     { return r.def.DialectSkip }
func (r *definedRule) DefaultSeverity() Severity { return r.def.Severity }

func (r *definedRule) Groups() []string {
	if slices.Contains(r.def.Groups, "all") {
		return r.def.Groups
	}
	return append([]string{"all"}, r.def.Groups...)
}

func (r *definedRule) ConfigKeys() []string {
	return slices.Sorted(maps.Keys(r.def.Defaults))
}

func (r *definedRule) LongDescription() string {
	text := r.def.Description
	if r.def.Rationale != "" {
		text += "\n\n" + r.def.Rationale
	}
	if r.def.BadExample != "" {
		text += "\n\nAnti-pattern:\n\n" + indentBlock(r.def.BadExample)
	}
	if r.def.GoodExample != "" {
		text += "\n\nBest practice:\n\n" + indentBlock(r.def.GoodExample)
	}
	return text
}

func (r *definedRule) Eval(ctx *RuleContext) []LintResult {
	return r.def.Eval(ctx, r.opts)
}

func (r *definedRule) Configure(opts map[string]any) (Rule, error) {
	merged := maps.Clone(r.def.Defaults)
	if merged == nil {
		merged = make(map[string]any)
	}
	for k, v := range opts {
		if _, ok := r.def.Defaults[k]; !ok {
			return nil, fmt.Errorf("rule %s: unknown option %q (available: %v)", r.def.Code, k, r.ConfigKeys())
		}
		merged[k] = v
	}
	if r.def.Validate != nil {
		if err := r.def.Validate(merged); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.def.Code, err)
		}
	}
	return &definedRule{def: r.def, opts: merged}, nil
}

// Unwrap returns the underlying RuleDef.
func (r *definedRule) Unwrap() RuleDef {
	return r.def
}

func indentBlock(s string) string {
	return "    " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n    ")
}

// RuleInfo provides metadata about a rule for documentation and tooling.
type RuleInfo struct {
	Code            string   `json:"code" yaml:"code"`
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description" yaml:"description"`
	Groups          []string `json:"groups" yaml:"groups"`
	Aliases         []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	DefaultSeverity string   `json:"default_severity" yaml:"default_severity"`
	ConfigKeys      []string `json:"config_keys,omitempty" yaml:"config_keys,omitempty"`
	FixCompatible   bool     `json:"fix_compatible" yaml:"fix_compatible"`
	Phase           string   `json:"phase" yaml:"phase"`
	DocURL          string   `json:"doc_url" yaml:"doc_url"`
}

// GetRuleInfo extracts metadata from a Rule.
func GetRuleInfo(r Rule) RuleInfo {
	return RuleInfo{
		Code:            r.Code(),
		Name:            r.Name(),
		Description:     r.Description(),
		Groups:          r.Groups(),
		Aliases:         r.Aliases(),
		DefaultSeverity: r.DefaultSeverity().String(),
		ConfigKeys:      r.ConfigKeys(),
		FixCompatible:   r.IsFixCompatible(),
		Phase:           r.LintPhase().String(),
		DocURL:          BuildDocURL(r.Code()),
	}
}

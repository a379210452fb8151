// Package lint runs rules over parsed SQL and applies their fixes.
//
// # Rules
//
// A rule is declared as a RuleDef and registered from an init function:
//
//	var KeywordCase = lint.RuleDef{
//		Code:        "CP01",
//		Name:        "capitalisation.keywords",
//		Groups:      []string{"core", "capitalisation"},
//		Description: "Inconsistent capitalisation of keywords.",
//		Crawler:     lint.SeekSegments(syntax.Keyword),
//		Eval:        evalKeywordCase,
//	}
//
//	func init() {
//		lint.Register(KeywordCase)
//	}
//
// Importing github.com/leapstack-labs/sqlgrain/pkg/lint/rules registers the
// bundled rule set.
//
// # Selection
//
// Rules are referenced by code ("AL01"), name ("aliasing.table"), group
// ("aliasing", "layout", "all") or alias. Config.Rules is an allowlist and
// Config.ExcludeRules a denylist, both expanded through the same references:
//
//	cfg := lint.NewConfig()
//	cfg.Rules = []string{"aliasing", "LT02"}
//	cfg.Disable("AL06")
//	cfg.SetRuleOptions("capitalisation.keywords", map[string]any{"capitalisation_policy": "upper"})
//
// # Fixing
//
// Linter.LintString with fix set runs every rule in a loop and applies the
// first non-empty set of fixes each rule returns until nothing changes or
// Config.RunawayLimit loops have run. Edits are written back onto the source
// text through the fix package, so template tags survive untouched.
package lint

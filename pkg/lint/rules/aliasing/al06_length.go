package aliasing

import (
	"fmt"
	"unicode/utf8"

	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(AliasLength)
}

// AliasLength enforces table alias length constraints. Zero disables a bound.
var AliasLength = lint.RuleDef{
	Code:        "AL06",
	Name:        "aliasing.length",
	Groups:      []string{"core", "aliasing"},
	Aliases:     []string{"L066"},
	Description: "Enforce table alias lengths in from clauses and join conditions.",
	Severity:    lint.SeverityError,
	Crawler:     lint.SeekSegments(syntax.AliasExpression),
	Defaults:    map[string]any{"min_alias_length": 0, "max_alias_length": 0},
	Validate: func(opts map[string]any) error {
		lo, hi := lint.GetIntOption(opts, "min_alias_length", 0), lint.GetIntOption(opts, "max_alias_length", 0)
		if lo < 0 || hi < 0 || (hi > 0 && lo > hi) {
			return fmt.Errorf("invalid alias length bounds %d..%d", lo, hi)
		}
		return nil
	},
	Eval:        checkAliasLength,
	BadExample:  "SELECT u.id FROM users AS u",
	GoodExample: "SELECT usr.id FROM users AS usr",
}

func checkAliasLength(ctx *lint.RuleContext, opts map[string]any) []lint.LintResult {
	if p := ctx.Parent(); p == nil || p.Kind() != syntax.FromExpressionElement {
		return nil
	}
	_, ident := splitAlias(ctx.Segment)
	if ident == nil {
		return nil
	}

	n := utf8.RuneCountInString(normalize(ident.Raw()))
	if lo := lint.GetIntOption(opts, "min_alias_length", 0); lo > 0 && n < lo {
		return []lint.LintResult{{
			Anchor:      ident,
			Description: fmt.Sprintf("Aliases should be at least %d character(s) long.", lo),
		}}
	}
	if hi := lint.GetIntOption(opts, "max_alias_length", 0); hi > 0 && n > hi {
		return []lint.LintResult{{
			Anchor:      ident,
			Description: fmt.Sprintf("Aliases should be no more than %d character(s) long.", hi),
		}}
	}
	return nil
}

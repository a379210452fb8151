package aliasing

import (
	"fmt"

	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(TableAliasing)
}

// TableAliasing enforces implicit or explicit aliasing of tables.
var TableAliasing = lint.RuleDef{
	Code:        "AL01",
	Name:        "aliasing.table",
	Groups:      []string{"core", "aliasing"},
	Aliases:     []string{"L011"},
	Description: "Implicit/explicit aliasing of table.",
	Severity:    lint.SeverityError,
	Crawler:     lint.SeekSegments(syntax.AliasExpression),
	Fixable:     true,
	Defaults:    map[string]any{"aliasing": "explicit"},
	Validate:    validateAliasing,
	Eval:        checkAliasing(syntax.FromExpressionElement),
	Rationale:   "Mixing implicit and explicit aliases makes it harder to see where an alias is introduced.",
	BadExample:  "SELECT COUNT(o.id) FROM orders o",
	GoodExample: "SELECT COUNT(o.id) FROM orders AS o",
}

func validateAliasing(opts map[string]any) error {
	switch p := lint.GetStringOption(opts, "aliasing", ""); p {
	case "explicit", "implicit":
		return nil
	default:
		return fmt.Errorf("aliasing must be explicit or implicit, got %q", p)
	}
}

// checkAliasing returns an evaluator for aliases directly under parent.
func checkAliasing(parent syntax.Kind) lint.EvalFunc {
	return func(ctx *lint.RuleContext, opts map[string]any) []lint.LintResult {
		p := ctx.Parent()
		if p == nil || p.Kind() != parent {
			return nil
		}
		as, ident := splitAlias(ctx.Segment)
		if ident == nil {
			return nil
		}

		if lint.GetStringOption(opts, "aliasing", "explicit") == "implicit" {
			if as == nil {
				return nil
			}
			fixes := []fix.LintFix{fix.Delete(as)}
			if ws := nextSibling(ctx.Segment, as); ws != nil && ws.IsType(syntax.Whitespace) {
				fixes = append(fixes, fix.Delete(ws))
			}
			return []lint.LintResult{{Anchor: as, Fixes: fixes}}
		}

		if as != nil {
			return nil
		}
		return []lint.LintResult{{
			Anchor: ident,
			Fixes:  []fix.LintFix{fix.CreateBefore(ident, segment.NewKeyword("AS"), segment.NewWhitespace(" "))},
		}}
	}
}

// splitAlias returns the AS keyword, if any, and the first code segment after it.
func splitAlias(alias *segment.Segment) (as, ident *segment.Segment) {
	for _, c := range alias.CodeChildren() {
		if as == nil && ident == nil && c.IsType(syntax.Keyword) && c.RawUpper() == "AS" {
			as = c
			continue
		}
		if ident == nil {
			ident = c
		}
	}
	return as, ident
}

// nextSibling returns the child of parent right after child, skipping metas.
func nextSibling(parent, child *segment.Segment) *segment.Segment {
	children := parent.Segments()
	for i, c := range children {
		if c != child {
			continue
		}
		for _, n := range children[i+1:] {
			if !n.IsMeta() {
				return n
			}
		}
	}
	return nil
}

// prevSibling returns the child of parent right before child, skipping metas.
func prevSibling(parent, child *segment.Segment) *segment.Segment {
	children := parent.Segments()
	for i, c := range children {
		if c != child {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if !children[j].IsMeta() {
				return children[j]
			}
		}
	}
	return nil
}

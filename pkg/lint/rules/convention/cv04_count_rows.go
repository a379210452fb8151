package convention

import (
	"fmt"

	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(CountRows)
}

// CountRows enforces one way of counting rows. COUNT(*) is preferred unless
// prefer_count_1 or prefer_count_0 is set.
var CountRows = lint.RuleDef{
	Code:        "CV04",
	Name:        "convention.count_rows",
	Groups:      []string{"core", "convention"},
	Aliases:     []string{"L047"},
	Description: "Use consistent syntax to express \"count number of rows\".",
	Severity:    lint.SeverityError,
	Crawler:     lint.SeekSegments(syntax.Function),
	Fixable:     true,
	Defaults:    map[string]any{"prefer_count_1": false, "prefer_count_0": false},
	Validate: func(opts map[string]any) error {
		if lint.GetBoolOption(opts, "prefer_count_1", false) && lint.GetBoolOption(opts, "prefer_count_0", false) {
			return fmt.Errorf("prefer_count_1 and prefer_count_0 are mutually exclusive")
		}
		return nil
	},
	Eval:        checkCountRows,
	BadExample:  "SELECT COUNT(1) FROM foo",
	GoodExample: "SELECT COUNT(*) FROM foo",
}

func checkCountRows(ctx *lint.RuleContext, opts map[string]any) []lint.LintResult {
	fn := ctx.Segment
	name := fn.Child(syntax.FunctionName)
	if name == nil || name.Child(syntax.FunctionNameIdentifier) == nil ||
		name.Child(syntax.FunctionNameIdentifier).RawUpper() != "COUNT" {
		return nil
	}
	args := fn.Child(syntax.Bracketed)
	if args == nil {
		return nil
	}

	var inner []*segment.Segment
	for _, c := range args.CodeChildren() {
		if !c.IsType(syntax.StartBracket, syntax.EndBracket) {
			inner = append(inner, c)
		}
	}
	if len(inner) != 1 {
		return nil
	}
	arg := unwrapExpression(inner[0])

	want := "*"
	switch {
	case lint.GetBoolOption(opts, "prefer_count_1", false):
		want = "1"
	case lint.GetBoolOption(opts, "prefer_count_0", false):
		want = "0"
	}

	raw := arg.Raw()
	if raw == want || (raw != "*" && raw != "0" && raw != "1") {
		return nil
	}
	if raw != "*" && !arg.IsType(syntax.NumericLiteral) {
		return nil
	}

	kind := syntax.NumericLiteral
	if want == "*" {
		kind = syntax.Star
	}
	return []lint.LintResult{{
		Anchor: fn,
		Fixes:  []fix.LintFix{fix.Replace(arg, []*segment.Segment{segment.NewSymbol(kind, want)})},
	}}
}

// unwrapExpression descends through expressions that wrap a single segment.
func unwrapExpression(s *segment.Segment) *segment.Segment {
	for s.IsType(syntax.Expression, syntax.WildcardExpression, syntax.WildcardIdentifier) {
		code := s.CodeChildren()
		if len(code) != 1 {
			break
		}
		s = code[0]
	}
	return s
}

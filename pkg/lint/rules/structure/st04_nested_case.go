package structure

import (
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(NestedCase)
}

// NestedCase flags a searched CASE nested in the ELSE of another searched
// CASE. The two can be merged into one.
var NestedCase = lint.RuleDef{
	Code:        "ST04",
	Name:        "structure.nested_case",
	Groups:      []string{"structure"},
	Aliases:     []string{"L058"},
	Description: "Nested CASE statement in ELSE clause could be flattened.",
	Severity:    lint.SeverityError,
	Crawler:     lint.SeekSegments(syntax.CaseExpression),
	Eval:        checkNestedCase,
	BadExample:  "SELECT CASE WHEN a THEN 1 ELSE CASE WHEN b THEN 2 END END FROM t",
	GoodExample: "SELECT CASE WHEN a THEN 1 WHEN b THEN 2 END FROM t",
}

func checkNestedCase(ctx *lint.RuleContext, _ map[string]any) []lint.LintResult {
	seg := ctx.Segment
	_, v := elseValue(seg)
	if v == nil || !v.IsType(syntax.CaseExpression) {
		return nil
	}
	if hasOperand(seg) || hasOperand(v) {
		return nil
	}
	return []lint.LintResult{{Anchor: v}}
}

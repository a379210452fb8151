package structure

import (
	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(ElseNull)
}

// ElseNull flags ELSE NULL, which is what CASE returns anyway.
var ElseNull = lint.RuleDef{
	Code:        "ST01",
	Name:        "structure.else_null",
	Groups:      []string{"structure"},
	Aliases:     []string{"L035"},
	Description: "Do not specify else null in a case when statement (redundant).",
	Severity:    lint.SeverityError,
	Crawler:     lint.SeekSegments(syntax.CaseExpression),
	Fixable:     true,
	Eval:        checkElseNull,
	BadExample:  "SELECT CASE WHEN a THEN 1 ELSE NULL END FROM t",
	GoodExample: "SELECT CASE WHEN a THEN 1 END FROM t",
}

func checkElseNull(ctx *lint.RuleContext, _ map[string]any) []lint.LintResult {
	seg := ctx.Segment
	clause, v := elseValue(seg)
	if v == nil || v.RawUpper() != "NULL" {
		return nil
	}

	fixes := []fix.LintFix{fix.Delete(clause)}
	children := seg.Segments()
	for i := len(children) - 1; i >= 0; i-- {
		if children[i] != clause {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			c := children[j]
			if c.IsMeta() {
				continue
			}
			if !c.IsWhitespace() {
				break
			}
			fixes = append(fixes, fix.Delete(c))
		}
		break
	}
	return []lint.LintResult{{
		Anchor:      clause,
		Description: "Unnecessary ELSE NULL statement.",
		Fixes:       fixes,
	}}
}

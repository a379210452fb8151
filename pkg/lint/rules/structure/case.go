package structure

import (
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// elseValue returns the ELSE clause of a CASE expression and its value with
// single-child expression wrappers removed.
func elseValue(caseExpr *segment.Segment) (*segment.Segment, *segment.Segment) {
	clause := caseExpr.Child(syntax.ElseClause)
	if clause == nil {
		return nil, nil
	}
	code := clause.CodeChildren()
	if len(code) != 2 {
		return clause, nil
	}
	v := code[1]
	for v.IsType(syntax.Expression) {
		inner := v.CodeChildren()
		if len(inner) != 1 {
			break
		}
		v = inner[0]
	}
	return clause, v
}

// hasOperand reports whether caseExpr is a simple CASE (CASE x WHEN ...).
func hasOperand(caseExpr *segment.Segment) bool {
	code := caseExpr.CodeChildren()
	return len(code) > 1 && !code[1].IsType(syntax.WhenClause, syntax.ElseClause)
}

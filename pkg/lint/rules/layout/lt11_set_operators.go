package layout

import (
	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(SetOperators)
}

// SetOperators requires set operators to sit on a line of their own.
var SetOperators = lint.RuleDef{
	Code:        "LT11",
	Name:        "layout.set_operators",
	Groups:      []string{"core", "layout"},
	Aliases:     []string{"L065"},
	Description: "Set operators should be surrounded by newlines.",
	Severity:    lint.SeverityError,
	Crawler:     lint.SeekSegments(syntax.SetOperator),
	Fixable:     true,
	Eval:        checkSetOperator,
	BadExample:  "SELECT a FROM t UNION SELECT b FROM u",
	GoodExample: "SELECT a FROM t\nUNION\nSELECT b FROM u",
}

func checkSetOperator(ctx *lint.RuleContext, _ map[string]any) []lint.LintResult {
	op := ctx.Segment
	if op.IsTemplated() {
		return nil
	}
	raws := leaves(ctx.Root())
	opRaws := leaves(op)
	if len(opRaws) == 0 {
		return nil
	}
	start := indexOf(raws, opRaws[0])
	end := indexOf(raws, opRaws[len(opRaws)-1])
	if start < 0 || end < 0 {
		return nil
	}

	var fixes []fix.LintFix
	if !newlineBetween(raws, start, -1) {
		if prev := start - 1; prev >= 0 && isSpace(raws[prev]) {
			fixes = append(fixes, fix.Replace(raws[prev], []*segment.Segment{segment.NewNewline("\n")}))
		} else {
			fixes = append(fixes, fix.CreateBefore(op, segment.NewNewline("\n")))
		}
	}
	if !newlineBetween(raws, end, 1) {
		if next := end + 1; next < len(raws) && isSpace(raws[next]) {
			fixes = append(fixes, fix.Replace(raws[next], []*segment.Segment{segment.NewNewline("\n")}))
		} else {
			fixes = append(fixes, fix.CreateAfter(op, []*segment.Segment{segment.NewNewline("\n")}))
		}
	}
	if len(fixes) == 0 {
		return nil
	}
	return []lint.LintResult{{Anchor: op, Fixes: fixes}}
}

// newlineBetween walks from raws[from] in direction step over whitespace and
// reports whether it meets a newline (or the edge of the file) before code.
func newlineBetween(raws []*segment.Segment, from, step int) bool {
	for i := from + step; i >= 0 && i < len(raws); i += step {
		switch {
		case isNewline(raws[i]):
			return true
		case isSpace(raws[i]):
		default:
			return false
		}
	}
	return true
}

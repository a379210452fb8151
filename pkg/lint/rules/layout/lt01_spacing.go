package layout

import (
	"fmt"

	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
)

func init() {
	lint.Register(Spacing)
}

// Spacing flags trailing whitespace and runs of spaces between code on a line.
var Spacing = lint.RuleDef{
	Code:        "LT01",
	Name:        "layout.spacing",
	Groups:      []string{"core", "layout"},
	Aliases:     []string{"L001", "L039"},
	Description: "Inappropriate Spacing.",
	Severity:    lint.SeverityError,
	Crawler:     lint.RootOnlyCrawler{},
	Fixable:     true,
	Eval:        checkSpacing,
	BadExample:  "SELECT a,  b  FROM foo   ",
	GoodExample: "SELECT a, b FROM foo",
}

func checkSpacing(ctx *lint.RuleContext, _ map[string]any) []lint.LintResult {
	raws := leaves(ctx.Segment)
	var results []lint.LintResult
	for i, ws := range raws {
		if !isSpace(ws) || ws.IsTemplated() {
			continue
		}
		atEnd := i == len(raws)-1 || isNewline(raws[i+1])
		if atEnd {
			results = append(results, lint.LintResult{
				Anchor:      ws,
				Description: "Unnecessary trailing whitespace.",
				Fixes:       []fix.LintFix{fix.Delete(ws)},
			})
			continue
		}

		// Indentation belongs to LT02.
		if i == 0 || isNewline(raws[i-1]) || isSpace(raws[i-1]) {
			continue
		}
		next := raws[i+1]
		if ws.Raw() == " " || next.IsComment() || isSpace(next) {
			continue
		}
		results = append(results, lint.LintResult{
			Anchor:      ws,
			Description: fmt.Sprintf("Expected only single space before '%s'. Found '%s'.", next.Raw(), ws.Raw()),
			Fixes:       []fix.LintFix{fix.Replace(ws, []*segment.Segment{segment.NewWhitespace(" ")})},
		})
	}
	return results
}

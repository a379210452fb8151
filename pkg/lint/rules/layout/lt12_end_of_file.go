package layout

import (
	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
)

func init() {
	lint.Register(EndOfFile)
}

// EndOfFile requires exactly one trailing newline.
var EndOfFile = lint.RuleDef{
	Code:        "LT12",
	Name:        "layout.end_of_file",
	Groups:      []string{"core", "layout"},
	Aliases:     []string{"L009"},
	Description: "Files must end with a single trailing newline.",
	Severity:    lint.SeverityError,
	Crawler:     lint.RootOnlyCrawler{},
	Phase:       lint.PhasePost,
	Fixable:     true,
	Eval:        checkEndOfFile,
	BadExample:  "SELECT a FROM foo",
	GoodExample: "SELECT a FROM foo\n",
}

func checkEndOfFile(ctx *lint.RuleContext, _ map[string]any) []lint.LintResult {
	raws := leaves(ctx.Segment)
	last := len(raws) - 1
	for last >= 0 && raws[last].IsWhitespace() {
		last--
	}
	if last < 0 {
		return nil
	}
	trailing := raws[last+1:]
	for _, s := range trailing {
		if s.IsTemplated() {
			return nil
		}
	}
	if len(trailing) == 1 && isNewline(trailing[0]) {
		return nil
	}

	var fixes []fix.LintFix
	anchor := raws[last]
	if len(trailing) == 0 {
		fixes = append(fixes, fix.CreateAfter(anchor, []*segment.Segment{segment.NewNewline("\n")}))
	} else {
		anchor = trailing[0]
		// Keep the first newline, drop everything else.
		kept := -1
		for i, s := range trailing {
			if isNewline(s) {
				kept = i
				break
			}
		}
		for i, s := range trailing {
			if i != kept {
				fixes = append(fixes, fix.Delete(s))
			}
		}
		if kept < 0 {
			fixes = append(fixes, fix.CreateAfter(raws[last], []*segment.Segment{segment.NewNewline("\n")}))
		}
	}
	return []lint.LintResult{{Anchor: anchor, Fixes: fixes}}
}

package layout

import (
	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

func init() {
	lint.Register(StartOfFile)
}

// StartOfFile forbids leading blank lines and whitespace.
var StartOfFile = lint.RuleDef{
	Code:        "LT13",
	Name:        "layout.start_of_file",
	Groups:      []string{"layout"},
	Aliases:     []string{"L071"},
	Description: "Files must not begin with newlines or whitespace.",
	Severity:    lint.SeverityError,
	Crawler:     lint.RootOnlyCrawler{},
	Phase:       lint.PhasePost,
	Fixable:     true,
	Eval:        checkStartOfFile,
	BadExample:  "\n\nSELECT a FROM foo",
	GoodExample: "SELECT a FROM foo",
}

func checkStartOfFile(ctx *lint.RuleContext, _ map[string]any) []lint.LintResult {
	raws := leaves(ctx.Segment)
	var fixes []fix.LintFix
	i := 0
	for ; i < len(raws) && raws[i].IsWhitespace(); i++ {
		if raws[i].IsTemplated() {
			return nil
		}
		fixes = append(fixes, fix.Delete(raws[i]))
	}
	// Nothing but whitespace is left for LT12.
	if i == 0 || i == len(raws) {
		return nil
	}
	return []lint.LintResult{{Anchor: raws[0], Fixes: fixes}}
}

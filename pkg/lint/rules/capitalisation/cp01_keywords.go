package capitalisation

import (
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(Keywords)
}

// Keywords enforces the capitalisation of keywords.
var Keywords = lint.RuleDef{
	Code:        "CP01",
	Name:        "capitalisation.keywords",
	Groups:      []string{"core", "capitalisation"},
	Aliases:     []string{"L010"},
	Description: "Inconsistent capitalisation of keywords.",
	Severity:    lint.SeverityError,
	Crawler:     lint.SeekSegments(syntax.Keyword),
	Fixable:     true,
	Defaults:    map[string]any{"capitalisation_policy": Consistent},
	Validate:    validatePolicy,
	Eval:        checkCase("Keywords"),
	BadExample:  "SELECT a FROM foo where a = 1",
	GoodExample: "SELECT a FROM foo WHERE a = 1",
}

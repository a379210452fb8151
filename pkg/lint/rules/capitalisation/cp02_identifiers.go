package capitalisation

import (
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(Identifiers)
}

// Identifiers enforces the capitalisation of unquoted identifiers.
// Words in ignore_words are skipped, case-insensitively.
var Identifiers = lint.RuleDef{
	Code:        "CP02",
	Name:        "capitalisation.identifiers",
	Groups:      []string{"core", "capitalisation"},
	Aliases:     []string{"L014"},
	Description: "Inconsistent capitalisation of unquoted identifiers.",
	Severity:    lint.SeverityError,
	Crawler:     lint.SeekSegments(syntax.NakedIdentifier),
	Fixable:     true,
	Defaults: map[string]any{
		"capitalisation_policy": Consistent,
		"ignore_words":          []string{},
	},
	Validate:    validatePolicy,
	Eval:        checkCase("Unquoted identifiers"),
	BadExample:  "SELECT a, B FROM foo",
	GoodExample: "SELECT a, b FROM foo",
}

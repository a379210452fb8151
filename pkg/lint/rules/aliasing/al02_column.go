package aliasing

import (
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(ColumnAliasing)
}

// ColumnAliasing enforces implicit or explicit aliasing of columns.
var ColumnAliasing = lint.RuleDef{
	Code:        "AL02",
	Name:        "aliasing.column",
	Groups:      []string{"core", "aliasing"},
	Aliases:     []string{"L012"},
	Description: "Implicit/explicit aliasing of columns.",
	Severity:    lint.SeverityError,
	Crawler:     lint.SeekSegments(syntax.AliasExpression),
	Fixable:     true,
	Defaults:    map[string]any{"aliasing": "explicit"},
	Validate:    validateAliasing,
	Eval:        checkAliasing(syntax.SelectClauseElement),
	BadExample:  "SELECT a alias_col FROM foo",
	GoodExample: "SELECT a AS alias_col FROM foo",
}

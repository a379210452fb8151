package aliasing

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(UnusedAlias)
}

// UnusedAlias flags table aliases that nothing in the query refers to.
var UnusedAlias = lint.RuleDef{
	Code:        "AL05",
	Name:        "aliasing.unused_alias",
	Groups:      []string{"core", "aliasing"},
	Aliases:     []string{"L025"},
	Description: "Tables should not be aliased if that alias is not used.",
	Severity:    lint.SeverityError,
	Crawler:     lint.SeekSegments(syntax.SelectStatement),
	Fixable:     true,
	Eval:        checkUnusedAlias,
	BadExample:  "SELECT id FROM users AS u",
	GoodExample: "SELECT id FROM users",
}

var (
	fromElements = syntax.NewSet(syntax.FromExpressionElement)
	references   = syntax.NewSet(syntax.ObjectReference)
	selects      = syntax.NewSet(syntax.SelectStatement)
)

func checkUnusedAlias(ctx *lint.RuleContext, _ map[string]any) []lint.LintResult {
	sel := ctx.Segment
	from := sel.Child(syntax.FromClause)
	if from == nil {
		return nil
	}

	used := qualifiers(sel)
	var results []lint.LintResult
	for _, elem := range from.RecursiveCrawl(fromElements, false, selects, true) {
		alias := elem.Child(syntax.AliasExpression)
		te := elem.Child(syntax.TableExpression)
		if alias == nil || te == nil || te.Child(syntax.TableReference) == nil {
			continue
		}
		_, ident := splitAlias(alias)
		if ident == nil || used[normalize(ident.Raw())] {
			continue
		}

		fixes := []fix.LintFix{fix.Delete(alias)}
		if ws := prevSibling(elem, alias); ws != nil && ws.IsWhitespace() {
			fixes = append(fixes, fix.Delete(ws))
		}
		results = append(results, lint.LintResult{
			Anchor:      ident,
			Description: fmt.Sprintf("Alias '%s' is never used in SELECT statement.", ident.Raw()),
			Fixes:       fixes,
		})
	}
	return results
}

// qualifiers collects every name used to qualify a reference inside sel,
// nested queries included so correlated references count.
func qualifiers(sel *segment.Segment) map[string]bool {
	out := make(map[string]bool)
	for _, ref := range sel.RecursiveCrawl(references, true, syntax.Set{}, true) {
		if ref.Kind() == syntax.TableReference {
			continue
		}
		var parts []*segment.Segment
		for _, c := range ref.Segments() {
			if c.IsType(syntax.Identifier) {
				parts = append(parts, c)
			}
		}
		if ref.Kind() != syntax.WildcardIdentifier && len(parts) > 0 {
			parts = parts[:len(parts)-1]
		}
		for _, p := range parts {
			out[normalize(p.Raw())] = true
		}
	}
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.Trim(name, "\"`[]"))
}

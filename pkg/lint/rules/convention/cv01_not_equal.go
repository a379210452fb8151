package convention

import (
	"fmt"

	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(NotEqual)
}

// NotEqual enforces one style of not-equal operator.
var NotEqual = lint.RuleDef{
	Code:        "CV01",
	Name:        "convention.not_equal",
	Groups:      []string{"convention"},
	Aliases:     []string{"L061"},
	Description: "Consistent usage of != or <> for \"not equal to\" operator.",
	Severity:    lint.SeverityError,
	Crawler:     lint.SeekSegments(syntax.ComparisonOperator),
	Fixable:     true,
	Defaults:    map[string]any{"preferred_not_equal_style": "consistent"},
	Validate: func(opts map[string]any) error {
		switch s := lint.GetStringOption(opts, "preferred_not_equal_style", ""); s {
		case "consistent", "c_style", "ansi":
			return nil
		default:
			return fmt.Errorf("preferred_not_equal_style must be consistent, c_style or ansi, got %q", s)
		}
	},
	Eval:        checkNotEqual,
	BadExample:  "SELECT * FROM t WHERE a <> b AND c != d",
	GoodExample: "SELECT * FROM t WHERE a != b AND c != d",
}

const (
	cStyle = "!="
	ansi   = "<>"
)

func checkNotEqual(ctx *lint.RuleContext, opts map[string]any) []lint.LintResult {
	seg := ctx.Segment
	raw := seg.Raw()
	if raw != cStyle && raw != ansi {
		return nil
	}

	// Memory holds the first style seen in the file.
	seen, _ := ctx.Memory.(string)
	var want string
	switch lint.GetStringOption(opts, "preferred_not_equal_style", "consistent") {
	case "c_style":
		want = cStyle
	case "ansi":
		want = ansi
	default:
		if seen == "" {
			return []lint.LintResult{{Memory: raw}}
		}
		want = seen
	}
	if seen == "" {
		seen = raw
	}
	if raw == want {
		return []lint.LintResult{{Memory: seen}}
	}

	res := lint.LintResult{
		Anchor:      seg,
		Description: fmt.Sprintf("Use '%s' instead of '%s'.", want, raw),
		Memory:      seen,
	}
	var parts []*segment.Segment
	for _, c := range seg.Segments() {
		if !c.IsMeta() {
			parts = append(parts, c)
		}
	}
	if len(parts) == 2 {
		for i, p := range parts {
			res.Fixes = append(res.Fixes, fix.Replace(p, []*segment.Segment{
				segment.NewSymbol(syntax.RawComparisonOperator, want[i:i+1]),
			}))
		}
	}
	return []lint.LintResult{res}
}

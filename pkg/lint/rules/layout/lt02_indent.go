package layout

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func init() {
	lint.Register(Indent)
}

// Indent checks the indentation of every line against the indent structure
// the parser recorded as metas.
var Indent = lint.RuleDef{
	Code:        "LT02",
	Name:        "layout.indent",
	Groups:      []string{"core", "layout"},
	Aliases:     []string{"L002", "L003", "L004"},
	Description: "Incorrect Indentation.",
	Severity:    lint.SeverityError,
	Crawler:     lint.RootOnlyCrawler{},
	Fixable:     true,
	Defaults:    map[string]any{"allow_implicit_indents": false},
	Eval:        checkIndent,
	BadExample:  "SELECT\n  a,\n      b\nFROM foo",
	GoodExample: "SELECT\n    a,\n    b\nFROM foo",
}

// openIndent is an indent meta that has not been closed yet.
type openIndent struct {
	line     int
	implicit bool
	// counted is false for implicit indents with code after them on their line.
	counted bool
}

// indentWalker tracks the indent balance while walking the leaves of a file.
type indentWalker struct {
	allowImplicit bool
	stack         []openIndent
	// closed holds the lines whose indents were closed at the start of the
	// current line, before any code.
	closed map[int]bool
}

func (w *indentWalker) open(seg *segment.Segment, line int) {
	implicit := seg.IsImplicit() && !w.allowImplicit
	w.stack = append(w.stack, openIndent{line: line, implicit: implicit, counted: true})
}

func (w *indentWalker) close(atStart bool) {
	if len(w.stack) == 0 {
		return
	}
	top := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if atStart && top.counted {
		w.closed[top.line] = true
	}
}

// desired is the number of indent levels for the line starting now. Each
// line that opened indents contributes one level at most.
func (w *indentWalker) desired() int {
	lines := make(map[int]bool)
	for _, o := range w.stack {
		if o.counted && !w.closed[o.line] {
			lines[o.line] = true
		}
	}
	return len(lines)
}

// sawCode marks implicit indents opened earlier on line as untaken.
func (w *indentWalker) sawCode(line int) {
	for i := range w.stack {
		if w.stack[i].implicit && w.stack[i].line == line {
			w.stack[i].counted = false
		}
	}
}

func checkIndent(ctx *lint.RuleContext, opts map[string]any) []lint.LintResult {
	root := ctx.Segment
	if root.DescendantTypeSet().Contains(syntax.Unparsable) {
		return nil
	}
	unit := "    "
	if ctx.Config != nil {
		unit = ctx.Config.Indent()
	}

	w := &indentWalker{
		allowImplicit: lint.GetBoolOption(opts, "allow_implicit_indents", false),
		closed:        make(map[int]bool),
	}
	var (
		results   []lint.LintResult
		lead      []*segment.Segment
		line      int
		atStart   = true
		firstLine = true
	)
	for _, seg := range root.RawSegments() {
		switch {
		case isNewline(seg):
			line++
			atStart = true
			lead = nil
			clear(w.closed)
		case isSpace(seg):
			if atStart {
				lead = append(lead, seg)
			}
		case seg.IsType(syntax.Indent):
			w.open(seg, line)
		case seg.IsType(syntax.Dedent):
			w.close(atStart)
		case seg.IsMeta():
		default:
			if atStart {
				atStart = false
				want := w.desired()
				if firstLine {
					want = 0
				}
				if r, ok := lineResult(seg, lead, want, unit, firstLine); ok {
					results = append(results, r)
				}
				firstLine = false
			}
			w.sawCode(line)
		}
	}
	return results
}

// lineResult compares the leading whitespace of a line against want levels.
func lineResult(first *segment.Segment, lead []*segment.Segment, want int, unit string, firstLine bool) (lint.LintResult, bool) {
	var current strings.Builder
	for _, ws := range lead {
		if ws.IsTemplated() {
			return lint.LintResult{}, false
		}
		current.WriteString(ws.Raw())
	}
	if first.IsTemplated() {
		return lint.LintResult{}, false
	}
	desired := strings.Repeat(unit, want)
	if current.String() == desired {
		return lint.LintResult{}, false
	}

	var fixes []fix.LintFix
	switch {
	case len(lead) == 0:
		fixes = append(fixes, fix.CreateBefore(first, segment.NewWhitespace(desired)))
	case desired == "":
		for _, ws := range lead {
			fixes = append(fixes, fix.Delete(ws))
		}
	default:
		fixes = append(fixes, fix.Replace(lead[0], []*segment.Segment{segment.NewWhitespace(desired)}))
		for _, ws := range lead[1:] {
			fixes = append(fixes, fix.Delete(ws))
		}
	}

	anchor := first
	if len(lead) > 0 {
		anchor = lead[0]
	}
	desc := "First line should not be indented."
	if !firstLine {
		desc = fmt.Sprintf("Expected indent of %d spaces.", len(desired))
		if unit == "\t" {
			desc = fmt.Sprintf("Expected indent of %d tabs.", want)
		}
	}
	return lint.LintResult{Anchor: anchor, Description: desc, Fixes: fixes}, true
}

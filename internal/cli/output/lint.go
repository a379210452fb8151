package output

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"

	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

// FileReport is the structured form of one linted file.
type FileReport struct {
	Filepath   string            `json:"filepath" yaml:"filepath"`
	Violations []*lint.Violation `json:"violations" yaml:"violations"`
}

// Reports converts a run into its structured form. Violations are never nil
// so JSON prints an empty list for clean files.
func Reports(res *lint.LintingResult) []FileReport {
	reports := make([]FileReport, 0, len(res.Files))
	for _, f := range res.Files {
		vs := f.Violations
		if vs == nil {
			vs = []*lint.Violation{}
		}
		reports = append(reports, FileReport{Filepath: f.Path, Violations: vs})
	}
	return reports
}

// LintResult writes a run in the renderer's mode. showPass also lists files
// without violations in text mode.
func (r *Renderer) LintResult(res *lint.LintingResult, showPass bool) error {
	if ok, err := r.Structured(Reports(res)); ok {
		return err
	}
	if r.EffectiveMode() == ModeGitHub {
		r.annotations(res)
		return nil
	}

	for _, f := range res.Files {
		if len(f.Violations) == 0 {
			if showPass {
				r.Printf("== [%s] %s\n", r.styles.Path.Render(f.Path), r.styles.Pass.Render("PASS"))
			}
			continue
		}
		r.Printf("== [%s] %s\n", r.styles.Path.Render(f.Path), r.styles.Fail.Render("FAIL"))
		for _, v := range f.Violations {
			r.Println(r.violationLine(v))
		}
	}
	r.Summary(res.Stats())
	return nil
}

func (r *Renderer) violationLine(v *lint.Violation) string {
	const warnTag = "WARNING: "
	prefix := fmt.Sprintf("L:%4d | P:%4d | ", v.Line, v.Pos)
	code := runewidth.FillRight(v.Code, 4)

	desc := v.Description
	if v.Warning {
		desc = warnTag + desc
	}
	indent := runewidth.StringWidth(prefix + code + " | ")
	if r.width > indent {
		desc = wrapText(desc, r.width-indent, strings.Repeat(" ", indent))
	}
	if rest, ok := strings.CutPrefix(desc, warnTag); ok && v.Warning {
		desc = r.styles.Warning.Render(warnTag) + rest
	}
	return prefix + r.styles.Code.Render(code) + " | " + desc
}

// annotations writes one GitHub Actions workflow command per violation.
func (r *Renderer) annotations(res *lint.LintingResult) {
	for _, f := range res.Files {
		for _, v := range f.Violations {
			level := "error"
			if v.Warning {
				level = "warning"
			}
			r.Printf("::%s file=%s,line=%d,col=%d::%s: %s\n", level, f.Path, v.Line, v.Pos, v.Code, v.Description)
		}
	}
}

// Summary writes the totals of a run as a table.
func (r *Renderer) Summary(s lint.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"files", "clean", "violations", "fixable"})
	t.AppendRow(table.Row{s.Files, s.CleanFiles, s.Violations, s.Fixable})
	if len(s.ByCode) > 0 {
		t.AppendSeparator()
		for _, code := range slices.Sorted(maps.Keys(s.ByCode)) {
			t.AppendRow(table.Row{"", "", code, s.ByCode[code]})
		}
	}
	t.Render()
}

// RulesTable lists rules as a table.
func (r *Renderer) RulesTable(rules []lint.RuleInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"code", "name", "description", "fix"})
	for _, info := range rules {
		fixable := ""
		if info.FixCompatible {
			fixable = "yes"
		}
		t.AppendRow(table.Row{info.Code, info.Name, info.Description, fixable})
	}
	t.Render()
}

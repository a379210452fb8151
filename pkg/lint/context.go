package lint

import (
	"fmt"

	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

// RuleContext is what a rule sees for one crawled segment.
type RuleContext struct {
	Dialect       *dialect.Dialect
	Config        *Config
	Path          string
	TemplatedFile *templater.TemplatedFile

	Segment *segment.Segment
	// ParentStack runs from the root down to the parent of Segment.
	ParentStack []*segment.Segment
	// RawStack holds the leaves before Segment when the crawler provides it.
	RawStack []*segment.Segment

	// Memory is whatever the previous evaluation of the same rule returned.
	Memory any
}

// Parent returns the direct parent of the segment, or nil at the root.
func (c *RuleContext) Parent() *segment.Segment {
	if len(c.ParentStack) == 0 {
		return nil
	}
	return c.ParentStack[len(c.ParentStack)-1]
}

// Root returns the file segment.
func (c *RuleContext) Root() *segment.Segment {
	if len(c.ParentStack) == 0 {
		return c.Segment
	}
	return c.ParentStack[0]
}

// Siblings returns the children of the parent, the segment included.
func (c *RuleContext) Siblings() []*segment.Segment {
	if p := c.Parent(); p != nil {
		return p.Segments()
	}
	return nil
}

// LintResult is one finding of a rule. A result without an anchor only
// carries memory forward.
type LintResult struct {
	Anchor      *segment.Segment
	Fixes       []fix.LintFix
	Description string
	Memory      any
}

// Violation is a user-visible lint finding.
type Violation struct {
	Code        string   `json:"code" yaml:"code" msgpack:"code"`
	Name        string   `json:"name" yaml:"name" msgpack:"name"`
	Description string   `json:"description" yaml:"description" msgpack:"description"`
	Line        int      `json:"start_line_no" yaml:"start_line_no" msgpack:"line"`
	Pos         int      `json:"start_line_pos" yaml:"start_line_pos" msgpack:"pos"`
	Severity    Severity `json:"-" yaml:"-" msgpack:"severity"`
	Warning     bool     `json:"warning" yaml:"warning" msgpack:"warning"`
	Fixable     bool     `json:"fixable" yaml:"fixable" msgpack:"fixable"`

	Fixes   []fix.LintFix    `json:"-" yaml:"-" msgpack:"-"`
	Segment *segment.Segment `json:"-" yaml:"-" msgpack:"-"`
}

func (v *Violation) Error() string {
	return fmt.Sprintf("L:%4d | P:%4d | %s | %s", v.Line, v.Pos, v.Code, v.Description)
}

// toViolation builds the violation for r, dropping fixes that would touch
// templated code.
func (r LintResult) toViolation(rule Rule, cfg *Config, tf *templater.TemplatedFile) *Violation {
	if r.Anchor == nil {
		return nil
	}
	desc := r.Description
	if desc == "" {
		desc = rule.Description()
	}

	fixes := r.Fixes
	for _, f := range fixes {
		if tf != nil && f.HasTemplateConflicts(tf) {
			fixes = nil
			break
		}
	}

	sev := cfg.GetSeverity(rule.Code(), rule.DefaultSeverity())
	return &Violation{
		Code:        rule.Code(),
		Name:        rule.Name(),
		Description: desc,
		Line:        r.Anchor.LineNo(),
		Pos:         r.Anchor.LinePos(),
		Severity:    sev,
		Warning:     sev.IsWarning(),
		Fixable:     len(fixes) > 0,
		Fixes:       fixes,
		Segment:     r.Anchor,
	}
}

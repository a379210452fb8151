// Package fix applies lint fixes to a parse tree and writes the edited tree
// back onto the source file.
//
// Fixes are anchored to segment identities. Apply rebuilds the tree with the
// edits grafted in, then FixString walks the new tree against the original
// templated file and patches only the source ranges that changed.
package fix

import (
	"fmt"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

// EditType is the kind of change a LintFix makes at its anchor.
type EditType int

// Edit types.
const (
	EditCreateBefore EditType = iota
	EditCreateAfter
	EditReplace
	EditDelete
)

func (e EditType) String() string {
	switch e {
	case EditCreateBefore:
		return "create_before"
	case EditCreateAfter:
		return "create_after"
	case EditReplace:
		return "replace"
	case EditDelete:
		return "delete"
	default:
		return fmt.Sprintf("EditType(%d)", int(e))
	}
}

// LintFix is a request to change the tree at one anchor segment.
type LintFix struct {
	Type   EditType
	Anchor *segment.Segment
	// Edit holds the segments to create or replace with. They carry no
	// position until the fix is applied.
	Edit []*segment.Segment
	// Source lists the segments the edit was copied from, so fixes that
	// would duplicate templated code can be refused.
	Source []*segment.Segment
}

func newFix(t EditType, anchor *segment.Segment, edit, source []*segment.Segment) LintFix {
	var clean []*segment.Segment
	if edit != nil {
		clean = make([]*segment.Segment, len(edit))
		for i, s := range edit {
			clean[i] = s.Copy()
		}
	}
	var src []*segment.Segment
	for _, s := range source {
		if s.Marker() != nil {
			src = append(src, s)
		}
	}
	return LintFix{Type: t, Anchor: anchor, Edit: clean, Source: src}
}

// CreateBefore inserts edit immediately before anchor.
func CreateBefore(anchor *segment.Segment, edit ...*segment.Segment) LintFix {
	return newFix(EditCreateBefore, anchor, edit, nil)
}

// CreateAfter inserts edit immediately after anchor.
func CreateAfter(anchor *segment.Segment, edit []*segment.Segment, source ...*segment.Segment) LintFix {
	return newFix(EditCreateAfter, anchor, edit, source)
}

// Replace swaps anchor for edit.
func Replace(anchor *segment.Segment, edit []*segment.Segment, source ...*segment.Segment) LintFix {
	return newFix(EditReplace, anchor, edit, source)
}

// Delete removes anchor.
func Delete(anchor *segment.Segment) LintFix {
	return newFix(EditDelete, anchor, nil, nil)
}

// Equal compares the edit type, the anchor identity and the edit contents.
func (f LintFix) Equal(o LintFix) bool {
	if f.Type != o.Type || f.Anchor.Kind() != o.Anchor.Kind() || f.Anchor.ID() != o.Anchor.ID() {
		return false
	}
	if (f.Edit == nil) != (o.Edit == nil) || len(f.Edit) != len(o.Edit) {
		return false
	}
	for i := range f.Edit {
		if f.Edit[i].Raw() != o.Edit[i].Raw() || !sameSourceFixes(f.Edit[i], o.Edit[i]) {
			return false
		}
	}
	return true
}

func sameSourceFixes(a, b *segment.Segment) bool {
	fa, fb := a.SourceFixes(), b.SourceFixes()
	if len(fa) != len(fb) {
		return false
	}
	for i := range fa {
		if fa[i] != fb[i] {
			return false
		}
	}
	return true
}

// IsJustSourceEdit reports whether the fix only changes source fixes and
// leaves the raw text alone.
func (f LintFix) IsJustSourceEdit() bool {
	return f.Type == EditReplace && len(f.Edit) == 1 && f.Edit[0].Raw() == f.Anchor.Raw()
}

func (f LintFix) String() string {
	return fmt.Sprintf("LintFix(%s, anchor=%s, edits=%d)", f.Type, f.Anchor.Kind(), len(f.Edit))
}

// HasTemplateConflicts reports whether applying the fix would touch
// templated code in the source file.
func (f LintFix) HasTemplateConflicts(tf *templater.TemplatedFile) bool {
	if f.Anchor.Marker() == nil {
		return false
	}
	if f.Type == EditReplace && len(f.Edit) == 1 {
		if e := f.Edit[0]; e.Raw() == f.Anchor.Raw() && len(e.SourceFixes()) > 0 {
			return false
		}
	}

	slices := f.fixSlices(tf, false)
	var conflict bool
	if f.Type == EditCreateBefore || f.Type == EditCreateAfter {
		// Insertions conflict only when every neighbouring slice is templated.
		conflict = len(slices) > 0
		for _, s := range slices {
			if s.SliceType != templater.SliceTemplated {
				conflict = false
				break
			}
		}
	} else {
		for _, s := range slices {
			if s.SliceType == templater.SliceTemplated {
				conflict = true
				break
			}
		}
	}
	if conflict || len(f.Source) == 0 {
		return conflict
	}

	for _, s := range f.Source {
		for _, raw := range rawSlicesFromTemplated(tf, s.Marker().TemplatedSlice, false) {
			if raw.SliceType == templater.SliceTemplated {
				return true
			}
		}
	}
	return false
}

func (f LintFix) fixSlices(tf *templater.TemplatedFile, withinOnly bool) []templater.RawFileSlice {
	pos := f.Anchor.Marker()
	anchor := pos.TemplatedSlice
	adjust := 1
	if withinOnly {
		adjust = 0
	}

	var ts templater.Slice
	switch f.Type {
	case EditCreateBefore:
		ts = templater.Slice{Start: max(anchor.Start-1, 0), Stop: anchor.Start + adjust}
	case EditCreateAfter:
		ts = templater.Slice{Start: anchor.Stop - adjust, Stop: anchor.Stop + 1}
	case EditReplace:
		if pos.SourceSlice.IsZero() {
			return nil
		}
		if onlySourceFixes(f.Edit) {
			return tf.RawSlicesSpanningSourceSlice(f.Edit[0].SourceFixes()[0].SourceSlice)
		}
		ts = anchor
	default:
		ts = anchor
	}
	ts.Stop = min(ts.Stop, len(tf.TemplatedStr))
	ts.Start = min(ts.Start, ts.Stop)
	return rawSlicesFromTemplated(tf, ts, true)
}

func onlySourceFixes(edit []*segment.Segment) bool {
	if len(edit) == 0 {
		return false
	}
	for _, e := range edit {
		if !e.IsToken() || len(e.SourceFixes()) == 0 {
			return false
		}
	}
	return true
}

// rawSlicesFromTemplated maps a templated range onto the raw slices behind it.
// A range past the end of the file maps to a literal sentinel when fileEnd is set.
func rawSlicesFromTemplated(tf *templater.TemplatedFile, ts templater.Slice, fileEnd bool) []templater.RawFileSlice {
	ss, err := tf.TemplatedSliceToSourceSlice(ts)
	if err != nil {
		if fileEnd {
			return []templater.RawFileSlice{{SliceType: templater.SliceLiteral, SourceIdx: len(tf.SourceStr)}}
		}
		return nil
	}
	return tf.RawSlicesSpanningSourceSlice(ss)
}

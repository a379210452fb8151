package fix

import (
	"maps"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
)

// Apply grafts the fixes in infos onto tree and returns the new tree. The
// second result reports whether the edits may have changed the structure
// enough that the tree should be reparsed to check it is still valid.
//
// Subtrees without fixes are shared with the input tree, so an empty map
// returns tree itself. infos is not modified.
func Apply(tree *segment.Segment, infos map[uint64]*AnchorEditInfo) (*segment.Segment, bool) {
	if len(infos) == 0 {
		return tree, false
	}
	return applyFixes(tree, maps.Clone(infos))
}

func applyFixes(s *segment.Segment, pending map[uint64]*AnchorEditInfo) (*segment.Segment, bool) {
	if len(pending) == 0 || s.IsToken() || len(s.Segments()) == 0 {
		return s, false
	}

	var (
		buf      []*segment.Segment
		applied  bool
		validate bool
	)
	for _, child := range s.Segments() {
		info, ok := pending[child.ID()]
		if !ok {
			buf = append(buf, child)
			continue
		}
		delete(pending, child.ID())

		fixes := info.Fixes
		if len(fixes) == 2 && fixes[0].Type == EditCreateAfter {
			fixes = []LintFix{fixes[1], fixes[0]}
		}
		for _, f := range fixes {
			applied = true
			if f.Type == EditDelete {
				validate = true
				continue
			}
			// A lone CreateAfter keeps the anchor in front of the edit.
			if f.Type == EditCreateAfter && len(fixes) == 1 {
				buf = append(buf, child)
			}

			consumedPos := false
			for _, e := range f.Edit {
				e = e.Copy()
				if f.Type == EditReplace && !consumedPos && e.Raw() == child.Raw() {
					consumedPos = true
					e = e.WithMarker(child.Marker())
				}
				buf = append(buf, e)
			}

			if f.Type != EditReplace || len(f.Edit) != 1 || f.Edit[0].Kind() != child.Kind() {
				validate = true
			}
			if f.Type == EditCreateBefore {
				buf = append(buf, child)
			}
		}
	}

	parent := s.Marker()
	if applied && parent != nil {
		buf = PositionSegments(buf, *parent)
	}

	changed := applied
	for i, child := range buf {
		ns, v := applyFixes(child, pending)
		if ns != child {
			buf[i] = ns
			changed = true
		}
		validate = validate || v
	}
	if !changed {
		return s, validate
	}
	if parent == nil {
		return s.WithChildren(buf), validate
	}
	// The node keeps its original span even when edits at its edges shrink
	// the children's, so patch generation still sees the deleted text.
	return s.WithChildren(PositionSegments(buf, *parent)).WithMarker(parent), validate
}

// PositionSegments assigns markers to segments that lack one, inferring them
// from their neighbours, and refreshes the working line and position of every
// segment starting from the parent's.
func PositionSegments(segs []*segment.Segment, parent segment.Marker) []*segment.Segment {
	if len(segs) == 0 {
		return nil
	}

	lineNo, linePos := parent.WorkingLineNo, parent.WorkingLinePos
	out := make([]*segment.Segment, 0, len(segs))
	for idx, seg := range segs {
		old := seg.Marker()

		var pos segment.Marker
		if old != nil {
			pos = *old
		} else {
			pos = inferMarker(out, segs[idx+1:], parent)
		}
		pos = pos.WithWorkingPosition(lineNo, linePos)
		lineNo, linePos = segment.InferNextPosition(seg.Raw(), lineNo, linePos)

		var ns *segment.Segment
		if !seg.IsToken() && len(seg.Segments()) > 0 && (old == nil || !old.Equal(pos) || hasUnpositioned(seg)) {
			ns = seg.WithChildren(PositionSegments(seg.Segments(), pos))
		} else {
			ns = seg
		}
		ns = ns.WithMarker(&pos)
		out = append(out, ns)
	}
	return out
}

func inferMarker(before, after []*segment.Segment, parent segment.Marker) segment.Marker {
	start := parent.StartPoint()
	if len(before) > 0 {
		start = before[len(before)-1].Marker().EndPoint()
	}

	for _, fwd := range after {
		if fwd.Marker() == nil {
			continue
		}
		m := fwd.Marker()
		if raws := fwd.RawSegments(); len(raws) > 0 && raws[0].Marker() != nil {
			m = raws[0].Marker()
		}
		end := m.StartPoint()
		if start.SourceSlice != end.SourceSlice || start.TemplatedSlice != end.TemplatedSlice {
			return segment.MarkerFromPoints(start, end)
		}
		break
	}
	return start
}

func hasUnpositioned(s *segment.Segment) bool {
	for _, c := range s.Segments() {
		if c.Marker() == nil {
			return true
		}
	}
	return false
}

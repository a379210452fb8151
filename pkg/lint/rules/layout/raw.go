package layout

import (
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// leaves returns the raw segments of root without metas.
func leaves(root *segment.Segment) []*segment.Segment {
	var out []*segment.Segment
	for _, s := range root.RawSegments() {
		if !s.IsMeta() {
			out = append(out, s)
		}
	}
	return out
}

func isNewline(s *segment.Segment) bool { return s.IsType(syntax.Newline) }

func isSpace(s *segment.Segment) bool { return s.IsType(syntax.Whitespace) }

// indexOf returns the position of s in segs by identity.
func indexOf(segs []*segment.Segment, s *segment.Segment) int {
	for i, c := range segs {
		if c == s {
			return i
		}
	}
	return -1
}

// Package segment implements the lossless, immutable parse tree.
//
// A Segment is either a token (a leaf carrying raw text) or a node (an ordered
// list of child segments). The raw text of a node is always the concatenation
// of its children, so printing the leaves of any tree reproduces its input.
// Segments are never mutated after construction; edits build new segments and
// share the unchanged subtrees.
package segment

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

var lastID atomic.Uint64

// NextID returns a fresh segment identity. Identities are never reused within a process.
func NextID() uint64 {
	return lastID.Add(1)
}

// SourceFix is an edit to the source file that is not visible in the templated
// output, e.g. a change inside a template tag.
type SourceFix struct {
	Edit           string
	SourceSlice    templater.Slice
	TemplatedSlice templater.Slice
}

// Segment is a node or token of the parse tree.
type Segment struct {
	kind     syntax.Kind
	id       uint64
	token    bool
	raw      string
	children []*Segment
	marker   *Marker

	sourceFixes []SourceFix

	// meta and placeholder data
	indentVal int
	implicit  bool
	blockType string
	sourceStr string

	// expected is the parser's note on unparsable nodes.
	expected string

	rawOnce  sync.Once
	rawCache string

	descOnce sync.Once
	desc     syntax.Set

	rawSegsOnce sync.Once
	rawSegs     []*Segment
}

// NewToken builds a leaf segment. A nil marker means "not positioned yet".
func NewToken(kind syntax.Kind, raw string, marker *Marker) *Segment {
	return &Segment{kind: kind, id: NextID(), token: true, raw: raw, marker: marker}
}

// NewNode builds an interior segment; its marker is merged from its children.
func NewNode(kind syntax.Kind, children []*Segment) *Segment {
	return &Segment{kind: kind, id: NextID(), children: children, marker: markerFromChildren(children)}
}

// NewUnparsable wraps segments the parser could not understand.
func NewUnparsable(children []*Segment, expected string) *Segment {
	s := NewNode(syntax.Unparsable, children)
	s.expected = expected
	return s
}

func markerFromChildren(children []*Segment) *Marker {
	var markers []Marker
	for _, c := range children {
		if c.marker != nil {
			markers = append(markers, *c.marker)
		}
	}
	if len(markers) == 0 {
		return nil
	}
	m := MarkerFromChildMarkers(markers...)
	return &m
}

// Kind returns the syntax kind.
func (s *Segment) Kind() syntax.Kind { return s.kind }

// ID returns the segment identity used to anchor fixes.
func (s *Segment) ID() uint64 { return s.id }

// IsToken reports whether the segment is a leaf.
func (s *Segment) IsToken() bool { return s.token }

// Segments returns the children. Callers must not modify the returned slice.
func (s *Segment) Segments() []*Segment { return s.children }

// Marker returns the position marker, or nil if the segment is not positioned.
func (s *Segment) Marker() *Marker { return s.marker }

// SourceFixes returns the source level fixes carried by this node.
func (s *Segment) SourceFixes() []SourceFix { return s.sourceFixes }

// Expected is the parser's description of what it wanted instead of an unparsable region.
func (s *Segment) Expected() string { return s.expected }

// Raw returns the source text of the segment.
func (s *Segment) Raw() string {
	if s.token {
		return s.raw
	}
	s.rawOnce.Do(func() {
		var b strings.Builder
		for _, c := range s.children {
			b.WriteString(c.Raw())
		}
		s.rawCache = b.String()
	})
	return s.rawCache
}

// RawUpper returns the raw text upper-cased.
func (s *Segment) RawUpper() string {
	return strings.ToUpper(s.Raw())
}

// ClassTypes returns every kind this segment answers to.
func (s *Segment) ClassTypes() syntax.Set {
	return s.kind.ClassTypes()
}

// IsType reports whether the segment answers to any of kinds.
func (s *Segment) IsType(kinds ...syntax.Kind) bool {
	ct := s.kind.ClassTypes()
	return ct.ContainsAny(kinds...)
}

// IsCode reports whether the segment carries code. A node is code if any child is.
func (s *Segment) IsCode() bool {
	if s.token {
		return s.kind.IsCode()
	}
	for _, c := range s.children {
		if c.IsCode() {
			return true
		}
	}
	return false
}

// IsMeta reports whether the segment is an indent, dedent, placeholder or end of file.
func (s *Segment) IsMeta() bool { return s.token && s.kind.IsMeta() }

// IsComment reports whether the segment is a comment.
func (s *Segment) IsComment() bool { return s.kind.IsComment() }

// IsWhitespace reports whether the segment is whitespace or a newline.
func (s *Segment) IsWhitespace() bool {
	if s.token {
		return s.kind.IsWhitespace()
	}
	for _, c := range s.children {
		if !c.IsWhitespace() {
			return false
		}
	}
	return true
}

// IsTemplated reports whether the segment came from templated code.
func (s *Segment) IsTemplated() bool {
	if s.marker == nil {
		return false
	}
	return !s.marker.SourceSlice.IsZero() && !s.marker.IsLiteral()
}

// DescendantTypeSet is the union of the class types of everything below this segment.
func (s *Segment) DescendantTypeSet() syntax.Set {
	s.descOnce.Do(func() {
		var set syntax.Set
		for _, c := range s.children {
			set = set.Union(c.DescendantTypeSet()).Union(c.ClassTypes())
		}
		s.desc = set
	})
	return s.desc
}

// RawSegments returns the leaves in order, metas included.
func (s *Segment) RawSegments() []*Segment {
	if s.token {
		return []*Segment{s}
	}
	s.rawSegsOnce.Do(func() {
		var out []*Segment
		for _, c := range s.children {
			out = append(out, c.RawSegments()...)
		}
		s.rawSegs = out
	})
	return s.rawSegs
}

// FirstNonWhitespaceRawUpper returns the first word of the segment, upper-cased.
func (s *Segment) FirstNonWhitespaceRawUpper() string {
	for _, r := range s.RawSegments() {
		if f := strings.Fields(r.RawUpper()); len(f) > 0 {
			return f[0]
		}
	}
	return ""
}

// FirstTrimmedRawUpper returns the first whitespace separated word of the raw text.
func (s *Segment) FirstTrimmedRawUpper() string {
	if f := strings.Fields(s.RawUpper()); len(f) > 0 {
		return f[0]
	}
	return ""
}

// IndentVal is +1 for indents, -1 for dedents and 0 otherwise.
func (s *Segment) IndentVal() int { return s.indentVal }

// IsImplicit reports whether an indent is implicit.
func (s *Segment) IsImplicit() bool { return s.implicit }

// BlockType returns the template block type of a placeholder.
func (s *Segment) BlockType() string { return s.blockType }

// SourceStr returns the template source represented by a placeholder.
func (s *Segment) SourceStr() string { return s.sourceStr }

// WithMarker returns a copy of the segment with a different position. The
// identity and children are kept.
func (s *Segment) WithMarker(m *Marker) *Segment {
	c := s.shallowCopy()
	c.marker = m
	return c
}

// WithChildren returns a copy of a node with new children. The identity is
// kept and the marker is merged from the new children.
func (s *Segment) WithChildren(children []*Segment) *Segment {
	c := s.shallowCopy()
	c.children = children
	c.marker = markerFromChildren(children)
	return c
}

// WithSourceFixes returns a copy carrying extra source fixes.
func (s *Segment) WithSourceFixes(fixes []SourceFix) *Segment {
	c := s.shallowCopy()
	c.sourceFixes = append(append([]SourceFix(nil), s.sourceFixes...), fixes...)
	return c
}

// Edit returns a new token with different raw text and a fresh identity.
func (s *Segment) Edit(raw string) *Segment {
	c := s.shallowCopy()
	c.id = NextID()
	c.raw = raw
	return c
}

// Copy returns a deep copy of the segment with fresh identities and no
// position markers, ready to be inserted by a fix.
func (s *Segment) Copy() *Segment {
	c := s.shallowCopy()
	c.id = NextID()
	c.marker = nil
	if !s.token {
		c.children = make([]*Segment, len(s.children))
		for i, ch := range s.children {
			c.children[i] = ch.Copy()
		}
	}
	return c
}

func (s *Segment) shallowCopy() *Segment {
	return &Segment{
		kind:        s.kind,
		id:          s.id,
		token:       s.token,
		raw:         s.raw,
		children:    s.children,
		marker:      s.marker,
		sourceFixes: s.sourceFixes,
		indentVal:   s.indentVal,
		implicit:    s.implicit,
		blockType:   s.blockType,
		sourceStr:   s.sourceStr,
		expected:    s.expected,
	}
}

// LineNo returns the source line of the segment, or 0 if unpositioned.
func (s *Segment) LineNo() int {
	if s.marker == nil {
		return 0
	}
	return s.marker.LineNo()
}

// LinePos returns the source position of the segment, or 0 if unpositioned.
func (s *Segment) LinePos() int {
	if s.marker == nil {
		return 0
	}
	return s.marker.LinePos()
}

// Equal compares kind, raw text, position and children. Identities are ignored.
func (s *Segment) Equal(o *Segment) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	if s.kind != o.kind || s.token != o.token || s.Raw() != o.Raw() {
		return false
	}
	if (s.marker == nil) != (o.marker == nil) {
		return false
	}
	if s.marker != nil && (s.marker.SourceSlice != o.marker.SourceSlice || s.marker.TemplatedSlice != o.marker.TemplatedSlice) {
		return false
	}
	if len(s.children) != len(o.children) {
		return false
	}
	for i := range s.children {
		if !s.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}

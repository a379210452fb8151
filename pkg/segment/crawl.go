package segment

import "github.com/leapstack-labs/sqlgrain/pkg/syntax"

// RecursiveCrawl returns every segment at or below s whose class types
// intersect types, in document order.
//
// recurseIntoMatches controls whether the crawl continues below a match.
// Subtrees rooted at segments of noRecurse kinds are skipped.
func (s *Segment) RecursiveCrawl(types syntax.Set, recurseIntoMatches bool, noRecurse syntax.Set, allowSelf bool) []*Segment {
	var acc []*Segment
	s.recursiveCrawl(types, recurseIntoMatches, noRecurse, allowSelf, &acc)
	return acc
}

func (s *Segment) recursiveCrawl(types syntax.Set, recurse bool, noRecurse syntax.Set, allowSelf bool, acc *[]*Segment) {
	ct := s.ClassTypes()
	matches := allowSelf && ct.Intersects(types)
	if matches {
		*acc = append(*acc, s)
	}
	if !s.DescendantTypeSet().Intersects(types) {
		return
	}
	if recurse || !matches {
		for _, c := range s.children {
			cct := c.ClassTypes()
			if !noRecurse.IsEmpty() && cct.Intersects(noRecurse) {
				continue
			}
			c.recursiveCrawl(types, recurse, noRecurse, true, acc)
		}
	}
}

// Crawl is RecursiveCrawl with the common defaults: recurse into matches,
// include s itself.
func (s *Segment) Crawl(kinds ...syntax.Kind) []*Segment {
	return s.RecursiveCrawl(syntax.NewSet(kinds...), true, syntax.Set{}, true)
}

// Walk calls fn for s and every descendant in document order. Returning false
// from fn skips the children of that segment.
func (s *Segment) Walk(fn func(*Segment) bool) {
	if !fn(s) {
		return
	}
	for _, c := range s.children {
		c.Walk(fn)
	}
}

// Child returns the first direct child of any of kinds.
func (s *Segment) Child(kinds ...syntax.Kind) *Segment {
	for _, c := range s.children {
		if c.IsType(kinds...) {
			return c
		}
	}
	return nil
}

// ChildrenOf returns the direct children of any of kinds.
func (s *Segment) ChildrenOf(kinds ...syntax.Kind) []*Segment {
	var out []*Segment
	for _, c := range s.children {
		if c.IsType(kinds...) {
			out = append(out, c)
		}
	}
	return out
}

// CodeChildren returns the direct children that carry code.
func (s *Segment) CodeChildren() []*Segment {
	var out []*Segment
	for _, c := range s.children {
		if c.IsCode() {
			out = append(out, c)
		}
	}
	return out
}

// PathStep is one level of the path from an ancestor to a descendant.
type PathStep struct {
	Segment  *Segment
	Idx      int
	Len      int
	CodeIdxs []int
}

// PathTo returns the steps from s down to other, or nil if other is not below s.
// Segments are compared by identity.
func (s *Segment) PathTo(other *Segment) []PathStep {
	if s.id == other.id || len(s.children) == 0 {
		return nil
	}
	if s.marker != nil && other.marker != nil && !contains(s.marker, other.marker) {
		return nil
	}
	codeIdxs := s.codeIndices()
	for idx, c := range s.children {
		step := PathStep{Segment: s, Idx: idx, Len: len(s.children), CodeIdxs: codeIdxs}
		if c.id == other.id {
			return []PathStep{step}
		}
		if res := c.PathTo(other); res != nil {
			return append([]PathStep{step}, res...)
		}
	}
	return nil
}

func contains(outer, inner *Marker) bool {
	return outer.TemplatedSlice.Start <= inner.TemplatedSlice.Start &&
		inner.TemplatedSlice.Stop <= outer.TemplatedSlice.Stop
}

func (s *Segment) codeIndices() []int {
	var out []int
	for i, c := range s.children {
		if c.IsCode() {
			out = append(out, i)
		}
	}
	return out
}

// ParentOf returns the direct parent of target below s, or nil.
func (s *Segment) ParentOf(target *Segment) *Segment {
	path := s.PathTo(target)
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1].Segment
}

package parser

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// Span is a half-open range of segment indices.
type Span struct {
	Start int
	End   int
}

// Matched says what a MatchResult becomes when applied.
type Matched struct {
	Kind syntax.Kind
	// Token retypes the single matched token instead of wrapping a node.
	Token bool
	// Expected is kept on unparsable nodes.
	Expected string
}

// MetaInsert is a pending indent/dedent at a segment index.
type MetaInsert struct {
	Idx  int
	Kind syntax.Kind
}

// MatchResult is a tentative parse: a span, what it should become, pending
// meta insertions and nested results.
type MatchResult struct {
	Span     Span
	Matched  *Matched
	Inserts  []MetaInsert
	Children []MatchResult
}

// EmptyAt is the failed (or zero length) match at idx.
func EmptyAt(idx int) MatchResult {
	return MatchResult{Span: Span{Start: idx, End: idx}}
}

// FromSpan is an untagged match over [start, end).
func FromSpan(start, end int) MatchResult {
	return MatchResult{Span: Span{Start: start, End: end}}
}

// Len is the number of segments matched.
func (m MatchResult) Len() int {
	return m.Span.End - m.Span.Start
}

// HasMatch reports whether the result claims segments or inserts metas.
func (m MatchResult) HasMatch() bool {
	return m.Len() > 0 || len(m.Inserts) > 0
}

// IsEmpty is !HasMatch.
func (m MatchResult) IsEmpty() bool {
	return !m.HasMatch()
}

// IsBetterThan prefers longer matches.
func (m MatchResult) IsBetterThan(o MatchResult) bool {
	return m.Len() > o.Len()
}

// Append merges o after m. Empty results are the identity.
func (m MatchResult) Append(o MatchResult) MatchResult {
	if m.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return m
	}

	out := MatchResult{Span: Span{
		Start: min(m.Span.Start, o.Span.Start),
		End:   max(m.Span.End, o.Span.End),
	}}
	for _, part := range [2]MatchResult{m, o} {
		if part.Matched != nil {
			out.Children = append(out.Children, part)
			continue
		}
		out.Inserts = append(out.Inserts, part.Inserts...)
		out.Children = append(out.Children, part.Children...)
	}
	return out
}

// Wrap tags the result so that it applies as one node. An already tagged
// result is pushed down as the only child.
func (m MatchResult) Wrap(matched Matched) MatchResult {
	if m.IsEmpty() {
		return m
	}
	out := MatchResult{Span: m.Span, Matched: &matched}
	if m.Matched != nil {
		out.Children = []MatchResult{m}
	} else {
		out.Inserts = m.Inserts
		out.Children = m.Children
	}
	return out
}

type trigger struct {
	meta  syntax.Kind
	child *MatchResult
}

// Apply materialises the result against the segments it was matched on.
func (m MatchResult) Apply(segments []*segment.Segment) []*segment.Segment {
	triggers := make(map[int][]trigger, len(m.Inserts)+len(m.Children))
	for _, ins := range m.Inserts {
		triggers[ins.Idx] = append(triggers[ins.Idx], trigger{meta: ins.Kind})
	}
	for i := range m.Children {
		c := &m.Children[i]
		triggers[c.Span.Start] = append(triggers[c.Span.Start], trigger{child: c})
	}

	keys := make([]int, 0, len(triggers))
	for k := range triggers {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var result []*segment.Segment
	maxIdx := m.Span.Start
	for _, idx := range keys {
		switch {
		case idx > maxIdx:
			result = append(result, segments[maxIdx:idx]...)
			maxIdx = idx
		case idx < maxIdx:
			panic(fmt.Sprintf("parser: match result wrongly constructed, trigger at %d before %d", idx, maxIdx))
		}
		for _, t := range triggers[idx] {
			if t.child != nil {
				result = append(result, t.child.Apply(segments)...)
				maxIdx = t.child.Span.End
				continue
			}
			pos := pointAt(segments, idx)
			result = append(result, segment.NewMeta(t.meta, pos))
		}
	}
	if maxIdx < m.Span.End {
		result = append(result, segments[maxIdx:m.Span.End]...)
	}

	if m.Matched == nil {
		return result
	}
	switch {
	case m.Matched.Token:
		if len(result) != 1 {
			panic(fmt.Sprintf("parser: token match over %d segments", len(result)))
		}
		old := result[0]
		return []*segment.Segment{segment.NewToken(m.Matched.Kind, old.Raw(), old.Marker())}
	case m.Matched.Kind == syntax.Unparsable:
		return []*segment.Segment{segment.NewUnparsable(result, m.Matched.Expected)}
	default:
		return []*segment.Segment{segment.NewNode(m.Matched.Kind, result)}
	}
}

func pointAt(segments []*segment.Segment, idx int) *segment.Marker {
	var p segment.Marker
	switch {
	case idx < len(segments) && segments[idx].Marker() != nil:
		p = segments[idx].Marker().StartPoint()
	case idx > 0 && segments[idx-1].Marker() != nil:
		p = segments[idx-1].Marker().EndPoint()
	default:
		return nil
	}
	return &p
}

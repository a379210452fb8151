package parser

import (
	"fmt"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// SequenceGrammar matches its elements in order.
type SequenceGrammar struct {
	base
}

// Sequence matches each element in turn, skipping non-code between them.
func Sequence(elements ...Matcher) *SequenceGrammar {
	return &SequenceGrammar{base: newBase(elements)}
}

func (s *SequenceGrammar) Optional() *SequenceGrammar {
	s.optional = true
	return s
}

func (s *SequenceGrammar) Terminators(ts ...Matcher) *SequenceGrammar {
	s.terminators = append(s.terminators, ts...)
	return s
}

func (s *SequenceGrammar) ResetTerminators() *SequenceGrammar {
	s.resetTerms = true
	return s
}

// DisallowGaps requires elements to be directly adjacent.
func (s *SequenceGrammar) DisallowGaps() *SequenceGrammar {
	s.allowGaps = false
	return s
}

func (s *SequenceGrammar) Mode(m ParseMode) *SequenceGrammar {
	s.mode = m
	return s
}

// Copy returns an edited copy with a fresh cache key.
func (s *SequenceGrammar) Copy(opts CopyOpts) *SequenceGrammar {
	return &SequenceGrammar{base: s.copyWith(opts)}
}

func (s *SequenceGrammar) String() string {
	return fmt.Sprintf("<Sequence: [%s]>", joinMatchers(s.elements))
}

// Simple unions the hints of leading optional elements and the first
// required one.
func (s *SequenceGrammar) Simple(ctx *Context, crumbs []string) *SimpleHint {
	return sequenceSimple(s.elements, ctx, crumbs)
}

func sequenceSimple(elements []Matcher, ctx *Context, crumbs []string) *SimpleHint {
	out := newHint()
	for _, e := range elements {
		switch e.(type) {
		case *MetaGrammar, *ConditionalGrammar:
			continue
		}
		h := e.Simple(ctx, crumbs)
		if h == nil {
			return nil
		}
		out.merge(h)
		if !e.IsOptional() {
			break
		}
	}
	return out
}

func (s *SequenceGrammar) Match(segments []*segment.Segment, idx int, ctx *Context) (MatchResult, error) {
	return matchSequence(&s.base, s.mode, segments, idx, ctx)
}

// flushMetas places buffered metas. Indents go before any non-code gap and
// anything containing a dedent goes after it.
func flushMetas(preIdx, postIdx int, buffer []*MetaGrammar) []MetaInsert {
	at := preIdx
	for _, m := range buffer {
		if m.indentVal() < 0 {
			at = postIdx
			break
		}
	}
	out := make([]MetaInsert, len(buffer))
	for i, m := range buffer {
		out[i] = MetaInsert{Idx: at, Kind: m.kind}
	}
	return out
}

func matchSequence(g *base, mode ParseMode, segments []*segment.Segment, idx int, ctx *Context) (MatchResult, error) {
	startIdx := idx
	matchedIdx := idx
	maxIdx := len(segments)
	var (
		inserts  []MetaInsert
		children []MatchResult
		buffer   []*MetaGrammar
		err      error
	)
	firstMatch := true

	if mode == Greedy {
		maxIdx, err = trimToTerminator(segments, idx, g.allTerminators(ctx), ctx)
		if err != nil {
			return MatchResult{}, err
		}
	}

	for _, elem := range g.elements {
		switch e := elem.(type) {
		case *ConditionalGrammar:
			if e.enabled(ctx) {
				buffer = append(buffer, e.meta)
			}
			continue
		case *MetaGrammar:
			buffer = append(buffer, e)
			continue
		}

		at := matchedIdx
		if g.allowGaps {
			at = skipStartIndexForwardToCode(segments, matchedIdx, maxIdx)
		}

		if at >= maxIdx {
			if elem.IsOptional() {
				continue
			}
			if mode == Strict || matchedIdx == startIdx {
				return EmptyAt(idx), nil
			}
			inserts = append(inserts, flushMetas(matchedIdx, matchedIdx, buffer)...)
			res := MatchResult{
				Span:     Span{Start: startIdx, End: matchedIdx},
				Inserts:  inserts,
				Children: children,
			}
			return res.Wrap(Matched{
				Kind:     syntax.Unparsable,
				Expected: fmt.Sprintf("%s after %s. Found nothing.", elem, describe(segments, matchedIdx-1)),
			}), nil
		}

		bounded := segments[:maxIdx]
		elemMatch, err := ctx.DeeperMatch(false, nil, segAt(segments, at), func() (MatchResult, error) {
			return elem.Match(bounded, at, ctx)
		})
		if err != nil {
			return MatchResult{}, err
		}

		if !elemMatch.HasMatch() {
			if elem.IsOptional() {
				continue
			}
			if mode == Strict {
				return EmptyAt(idx), nil
			}
			if mode == GreedyOnceStarted && matchedIdx == startIdx {
				return EmptyAt(idx), nil
			}
			if matchedIdx == startIdx {
				return MatchResult{
					Span: Span{Start: startIdx, End: maxIdx},
					Matched: &Matched{
						Kind:     syntax.Unparsable,
						Expected: fmt.Sprintf("%s to start sequence. Found %s", elem, describe(segments, at)),
					},
				}, nil
			}
			from := skipStartIndexForwardToCode(segments, matchedIdx, maxIdx)
			children = append(children, MatchResult{
				Span: Span{Start: from, End: maxIdx},
				Matched: &Matched{
					Kind: syntax.Unparsable,
					Expected: fmt.Sprintf("%s after %s. Found %s",
						elem, describe(segments, matchedIdx-1), describe(segments, at)),
				},
			})
			return MatchResult{
				Span:     Span{Start: startIdx, End: maxIdx},
				Inserts:  inserts,
				Children: children,
			}, nil
		}

		inserts = append(inserts, flushMetas(matchedIdx, at, buffer)...)
		buffer = nil
		matchedIdx = elemMatch.Span.End

		if firstMatch && mode == GreedyOnceStarted {
			maxIdx, err = trimToTerminator(segments, matchedIdx, g.allTerminators(ctx), ctx)
			if err != nil {
				return MatchResult{}, err
			}
			firstMatch = false
		}

		if elemMatch.Matched != nil {
			children = append(children, elemMatch)
			continue
		}
		children = append(children, elemMatch.Children...)
		inserts = append(inserts, elemMatch.Inserts...)
	}

	for _, m := range buffer {
		inserts = append(inserts, MetaInsert{Idx: matchedIdx, Kind: m.kind})
	}

	if (mode == Greedy || mode == GreedyOnceStarted) && maxIdx > matchedIdx {
		from := skipStartIndexForwardToCode(segments, matchedIdx, maxIdx)
		to := skipStopIndexBackwardToCode(segments, maxIdx, from)
		if to > from {
			children = append(children, MatchResult{
				Span:    Span{Start: from, End: to},
				Matched: &Matched{Kind: syntax.Unparsable, Expected: "Nothing here."},
			})
			matchedIdx = to
		}
	}

	return MatchResult{
		Span:     Span{Start: startIdx, End: matchedIdx},
		Inserts:  inserts,
		Children: children,
	}, nil
}

package parser

import (
	"fmt"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// BracketedGrammar matches a bracket pair and a sequence inside it.
type BracketedGrammar struct {
	base
	bracketType string
	bracketSet  string
}

// Bracketed matches round brackets around the elements.
func Bracketed(elements ...Matcher) *BracketedGrammar {
	return &BracketedGrammar{
		base:        newBase(elements),
		bracketType: "round",
		bracketSet:  BracketPairsSet,
	}
}

func (b *BracketedGrammar) Optional() *BracketedGrammar {
	b.optional = true
	return b
}

func (b *BracketedGrammar) Terminators(ts ...Matcher) *BracketedGrammar {
	b.terminators = append(b.terminators, ts...)
	return b
}

func (b *BracketedGrammar) DisallowGaps() *BracketedGrammar {
	b.allowGaps = false
	return b
}

func (b *BracketedGrammar) Mode(m ParseMode) *BracketedGrammar {
	b.mode = m
	return b
}

// BracketType selects the pair, e.g. "square" or "curly".
func (b *BracketedGrammar) BracketType(t string) *BracketedGrammar {
	b.bracketType = t
	return b
}

// BracketSet selects the dialect bracket set, e.g. "angle_bracket_pairs".
func (b *BracketedGrammar) BracketSet(set string) *BracketedGrammar {
	b.bracketSet = set
	return b
}

func (b *BracketedGrammar) String() string {
	return fmt.Sprintf("<Bracketed(%s): [%s]>", b.bracketType, joinMatchers(b.elements))
}

func (b *BracketedGrammar) brackets(ctx *Context) (Matcher, Matcher, bool) {
	for _, p := range ctx.library.BracketPairs(b.bracketSet) {
		if p.Name == b.bracketType {
			return Ref(p.Start), Ref(p.End), p.Persists
		}
	}
	panic(fmt.Sprintf("parser: bracket type %q not found in set %q", b.bracketType, b.bracketSet))
}

func (b *BracketedGrammar) Simple(ctx *Context, crumbs []string) *SimpleHint {
	start, _, _ := b.brackets(ctx)
	return start.Simple(ctx, crumbs)
}

// effectiveMode applies the strict_brackets switch.
func (b *BracketedGrammar) effectiveMode(ctx *Context) ParseMode {
	if b.mode == Greedy && ctx.cfg.StrictBrackets {
		return Strict
	}
	return b.mode
}

func (b *BracketedGrammar) Match(segments []*segment.Segment, idx int, ctx *Context) (MatchResult, error) {
	start, end, persists := b.brackets(ctx)

	startMatch, err := ctx.DeeperMatch(false, nil, segAt(segments, idx), func() (MatchResult, error) {
		return start.Match(segments, idx, ctx)
	})
	if err != nil {
		return MatchResult{}, err
	}
	if !startMatch.HasMatch() {
		return EmptyAt(idx), nil
	}

	bracketed, err := resolveBracket(segments, startMatch, 0, b.bracketSet+"/"+b.bracketType,
		[]Matcher{start}, []Matcher{end}, []bool{persists}, ctx, false)
	if err != nil {
		return MatchResult{}, err
	}

	// Brackets are always single segments.
	contentIdx := startMatch.Span.End
	endIdx := bracketed.Span.End - 1
	if b.allowGaps {
		contentIdx = skipStartIndexForwardToCode(segments, contentIdx, len(segments))
		endIdx = skipStopIndexBackwardToCode(segments, endIdx, contentIdx)
	}

	mode := b.effectiveMode(ctx)
	bounded := segments[:endIdx]
	content, err := ctx.DeeperMatch(true, []Matcher{end}, segAt(segments, contentIdx), func() (MatchResult, error) {
		return matchSequence(&b.base, mode, bounded, contentIdx, ctx)
	})
	if err != nil {
		return MatchResult{}, err
	}

	if content.Span.End != endIdx && mode == Strict {
		return EmptyAt(idx), nil
	}

	gapStart, gapEnd := content.Span.End, bracketed.Span.End-1
	if !b.allowGaps && gapEnd > gapStart {
		content = content.Append(MatchResult{
			Span:    Span{Start: gapStart, End: gapEnd},
			Matched: &Matched{Kind: syntax.Unparsable, Expected: joinMatchers(b.elements)},
		})
	}

	// The bracket result is either wrapped as a Bracketed node (persisting
	// brackets) or a bare span whose children are the two brackets.
	outer := bracketed
	children := append([]MatchResult(nil), outer.Children...)
	inserts := append([]MetaInsert(nil), outer.Inserts...)
	if content.Matched != nil {
		children = append(children, content)
	} else {
		children = append(children, content.Children...)
		inserts = insertBeforeDedent(inserts, content.Inserts)
	}

	return MatchResult{
		Span:     outer.Span,
		Matched:  outer.Matched,
		Inserts:  inserts,
		Children: children,
	}, nil
}

// insertBeforeDedent keeps the closing Dedent of a bracket after any metas
// the content placed at the same index.
func insertBeforeDedent(bracket, content []MetaInsert) []MetaInsert {
	if len(content) == 0 {
		return bracket
	}
	out := make([]MetaInsert, 0, len(bracket)+len(content))
	var tail []MetaInsert
	for _, ins := range bracket {
		if ins.Kind == syntax.Dedent {
			tail = append(tail, ins)
			continue
		}
		out = append(out, ins)
	}
	out = append(out, content...)
	return append(out, tail...)
}

// OptionallyBracketed matches the elements with or without round brackets.
func OptionallyBracketed(elements ...Matcher) *AnyNumberOfGrammar {
	var bare Matcher
	if len(elements) == 1 {
		bare = elements[0]
	} else {
		bare = Sequence(elements...)
	}
	return OneOf(Bracketed(elements...), bare)
}

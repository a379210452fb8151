package parser

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// BracketPairsSet is the default bracket set used when scanning for terminators.
const BracketPairsSet = "bracket_pairs"

func skipStartIndexForwardToCode(segments []*segment.Segment, start, maxIdx int) int {
	idx := start
	for idx < maxIdx && !segments[idx].IsCode() {
		idx++
	}
	return idx
}

func skipStopIndexBackwardToCode(segments []*segment.Segment, stop, minIdx int) int {
	idx := stop
	for idx > minIdx && !segments[idx-1].IsCode() {
		idx--
	}
	return idx
}

func firstNonWhitespace(segments []*segment.Segment, start int) (string, syntax.Set, bool) {
	for _, s := range segments[start:] {
		if s.IsWhitespace() || s.IsMeta() {
			continue
		}
		return s.FirstNonWhitespaceRawUpper(), s.ClassTypes(), true
	}
	return "", syntax.Set{}, false
}

// pruneOptions drops matchers whose simple hint rules them out at idx.
func pruneOptions(options []Matcher, segments []*segment.Segment, idx int, ctx *Context) []Matcher {
	raw, types, ok := firstNonWhitespace(segments, idx)
	if !ok {
		return options
	}

	available := make([]Matcher, 0, len(options))
	for _, opt := range options {
		h := ctx.simpleOf(opt)
		if h == nil {
			available = append(available, opt)
			continue
		}
		if _, hit := h.Raws[raw]; hit {
			available = append(available, opt)
			continue
		}
		if h.Types.Intersects(types) {
			available = append(available, opt)
		}
	}
	return available
}

func cachedMatch(m Matcher, segments []*segment.Segment, idx int, ctx *Context) (MatchResult, error) {
	key := m.CacheKey()
	if key == 0 {
		return m.Match(segments, idx, ctx)
	}
	loc := cacheLoc{key: key, idx: idx, maxIdx: len(segments)}
	if res, ok := ctx.checkCache(loc); ok {
		return res, nil
	}
	res, err := m.Match(segments, idx, ctx)
	if err != nil {
		return res, err
	}
	ctx.putCache(loc, res)
	return res, nil
}

// longestMatch returns the longest match among matchers at idx. A match that
// reaches the end of segments wins outright, and the search stops early once
// a terminator is visible after the best match so far.
func longestMatch(segments []*segment.Segment, matchers []Matcher, idx int, ctx *Context) (MatchResult, Matcher, error) {
	maxIdx := len(segments)
	if len(matchers) == 0 || idx >= maxIdx {
		return EmptyAt(idx), nil, nil
	}

	available := pruneOptions(matchers, segments, idx, ctx)
	if len(available) == 0 {
		return EmptyAt(idx), nil, nil
	}

	terminators := ctx.terminators
	best := EmptyAt(idx)
	var bestMatcher Matcher

options:
	for i, m := range available {
		res, err := cachedMatch(m, segments, idx, ctx)
		if err != nil {
			return MatchResult{}, nil, err
		}
		if res.Span.End == maxIdx {
			return res, m, nil
		}
		if !res.IsBetterThan(best) {
			continue
		}
		best, bestMatcher = res, m

		if i == len(available)-1 {
			break
		}
		if len(terminators) == 0 {
			continue
		}
		next := skipStartIndexForwardToCode(segments, best.Span.End, maxIdx)
		if next == maxIdx {
			break
		}
		for _, t := range terminators {
			tm, err := t.Match(segments, next, ctx)
			if err != nil {
				return MatchResult{}, nil, err
			}
			if tm.HasMatch() {
				break options
			}
		}
	}
	return best, bestMatcher, nil
}

// nextMatch scans forward from idx for the first position where any of the
// matchers match. Every matcher must offer a simple hint. It returns the
// index of the matcher that matched or -1.
func nextMatch(segments []*segment.Segment, idx int, matchers []Matcher, ctx *Context) (MatchResult, int, error) {
	maxIdx := len(segments)
	if idx >= maxIdx {
		return EmptyAt(idx), -1, nil
	}

	rawMap := make(map[string][]int)
	typeMap := make(map[syntax.Kind][]int)
	for i, m := range matchers {
		h := ctx.simpleOf(m)
		if h == nil {
			panic(fmt.Sprintf("parser: %s has no simple hint and cannot be used to scan ahead", m))
		}
		for r := range h.Raws {
			rawMap[r] = append(rawMap[r], i)
		}
		for _, k := range h.Types.Slice() {
			typeMap[k] = append(typeMap[k], i)
		}
	}

	for ; idx < maxIdx; idx++ {
		seg := segments[idx]
		seen := make(map[int]struct{})
		var candidates []int
		add := func(list []int) {
			for _, i := range list {
				if _, dup := seen[i]; !dup {
					seen[i] = struct{}{}
					candidates = append(candidates, i)
				}
			}
		}
		if raw := seg.FirstTrimmedRawUpper(); raw != "" {
			add(rawMap[raw])
		}
		for _, k := range seg.ClassTypes().Slice() {
			add(typeMap[k])
		}
		if len(candidates) == 0 {
			continue
		}
		sort.Ints(candidates)

		for _, i := range candidates {
			res, err := matchers[i].Match(segments, idx, ctx)
			if err != nil {
				return MatchResult{}, -1, err
			}
			if res.HasMatch() {
				return res, i, nil
			}
		}
	}
	return EmptyAt(idx), -1, nil
}

// resolveBracket finds the bracket closing openingMatch, recursing through
// nested pairs. Unbalanced brackets are a ParseError. scope names the bracket
// pairs in play; resolved pairs are remembered per scope for the rest of the
// parse, so enclosing levels do not rescan nested ones.
func resolveBracket(
	segments []*segment.Segment,
	openingMatch MatchResult,
	openingIdx int,
	scope string,
	startBrackets, endBrackets []Matcher,
	persists []bool,
	ctx *Context,
	nested bool,
) (MatchResult, error) {
	key := bracketLoc{start: openingMatch.Span.Start, scope: scope, nested: nested}
	// A pair resolved over a longer slice holds for any slice that still
	// contains its closing bracket.
	if hit, ok := ctx.brackets[key]; ok && hit.Span.End <= len(segments) {
		return hit, nil
	}
	res, err := scanBracket(segments, openingMatch, openingIdx, scope, startBrackets, endBrackets, persists, ctx, nested)
	if err != nil {
		return MatchResult{}, err
	}
	ctx.brackets[key] = res
	return res, nil
}

func scanBracket(
	segments []*segment.Segment,
	openingMatch MatchResult,
	openingIdx int,
	scope string,
	startBrackets, endBrackets []Matcher,
	persists []bool,
	ctx *Context,
	nested bool,
) (MatchResult, error) {
	all := make([]Matcher, 0, len(startBrackets)+len(endBrackets))
	all = append(all, startBrackets...)
	all = append(all, endBrackets...)

	children := []MatchResult{openingMatch}
	matchedIdx := openingMatch.Span.End
	for {
		res, i, err := nextMatch(segments, matchedIdx, all, ctx)
		if err != nil {
			return MatchResult{}, err
		}
		if i < 0 {
			e := newParseError(segments[openingMatch.Span.Start], ErrMissingCloseBracket)
			return MatchResult{}, e
		}

		if i >= len(startBrackets) {
			closing := i - len(startBrackets)
			if closing != openingIdx {
				return MatchResult{}, newParseError(segments[res.Span.End-1], ErrUnexpectedEndBracket,
					endBrackets[openingIdx], endBrackets[closing])
			}
			children = append(children, res)
			out := MatchResult{
				Span: Span{Start: openingMatch.Span.Start, End: res.Span.End},
				Inserts: []MetaInsert{
					{Idx: openingMatch.Span.End, Kind: syntax.Indent},
					{Idx: res.Span.Start, Kind: syntax.Dedent},
				},
				Children: children,
			}
			if !persists[openingIdx] {
				return out, nil
			}
			return out.Wrap(Matched{Kind: syntax.Bracketed}), nil
		}

		inner, err := resolveBracket(segments, res, i, scope, startBrackets, endBrackets, persists, ctx, true)
		if err != nil {
			return MatchResult{}, err
		}
		matchedIdx = inner.Span.End
		if nested {
			children = append(children, inner)
		}
	}
}

type bracketScan struct {
	starts   []Matcher
	ends     []Matcher
	persists []bool
}

func bracketsOf(ctx *Context, set string) bracketScan {
	pairs := ctx.library.BracketPairs(set)
	var b bracketScan
	for _, p := range pairs {
		b.starts = append(b.starts, Ref(p.Start))
		b.ends = append(b.ends, Ref(p.End))
		b.persists = append(b.persists, p.Persists)
	}
	return b
}

// nextExBracketMatch is nextMatch that steps over bracketed regions, so a
// terminator inside brackets is never found. Hitting a stray closing bracket
// ends the search with no match.
func nextExBracketMatch(segments []*segment.Segment, idx int, matchers []Matcher, ctx *Context) (MatchResult, Matcher, []MatchResult, error) {
	if idx >= len(segments) {
		return EmptyAt(idx), nil, nil, nil
	}

	b := bracketsOf(ctx, BracketPairsSet)
	all := make([]Matcher, 0, len(matchers)+len(b.starts)+len(b.ends))
	all = append(all, matchers...)
	all = append(all, b.starts...)
	all = append(all, b.ends...)

	var children []MatchResult
	matchedIdx := idx
	for {
		res, i, err := nextMatch(segments, matchedIdx, all, ctx)
		if err != nil {
			return MatchResult{}, nil, nil, err
		}
		if i < 0 {
			return res, nil, children, nil
		}
		if i < len(matchers) {
			return res, matchers[i], children, nil
		}
		i -= len(matchers)
		if i >= len(b.starts) {
			return EmptyAt(idx), nil, nil, nil
		}

		done, err := ctx.deeper(true, nil, segments[res.Span.Start])
		if err != nil {
			return MatchResult{}, nil, nil, err
		}
		bm, err := resolveBracket(segments, res, i, BracketPairsSet, b.starts, b.ends, b.persists, ctx, false)
		done()
		if err != nil {
			return MatchResult{}, nil, nil, err
		}
		matchedIdx = bm.Span.End
		children = append(children, bm)
	}
}

// greedyMatch claims everything from idx up to the first terminator outside
// brackets. Keyword terminators only count when preceded by whitespace.
func greedyMatch(segments []*segment.Segment, idx int, ctx *Context, matchers []Matcher, includeTerminator, nested bool) (MatchResult, error) {
	maxIdx := len(segments)
	workingIdx := idx
	var children []MatchResult
	var startIdx, stopIdx int

	for {
		var (
			res     MatchResult
			matcher Matcher
			inner   []MatchResult
		)
		_, err := ctx.DeeperMatch(false, nil, segAt(segments, workingIdx), func() (MatchResult, error) {
			var err error
			res, matcher, inner, err = nextExBracketMatch(segments, workingIdx, matchers, ctx)
			return res, err
		})
		if err != nil {
			return MatchResult{}, err
		}
		if nested {
			children = append(children, inner...)
		}
		if matcher == nil {
			return MatchResult{Span: Span{Start: idx, End: maxIdx}, Children: children}, nil
		}

		startIdx, stopIdx = res.Span.Start, res.Span.End
		h := ctx.simpleOf(matcher)
		if h.Types.IsEmpty() && h.allAlpha() {
			allowable := false
			for i := startIdx; i > workingIdx; i-- {
				prev := segments[i-1]
				if prev.IsMeta() {
					continue
				}
				allowable = prev.IsType(syntax.Whitespace, syntax.Newline)
				break
			}
			if !allowable {
				workingIdx = stopIdx
				continue
			}
		}
		break
	}

	if includeTerminator {
		return MatchResult{Span: Span{Start: idx, End: stopIdx}, Children: children}, nil
	}
	stopIdx = skipStopIndexBackwardToCode(segments, startIdx, idx)
	return MatchResult{Span: Span{Start: idx, End: stopIdx}, Children: children}, nil
}

// trimToTerminator returns the index at which content before the first
// terminator ends, with trailing non-code excluded.
func trimToTerminator(segments []*segment.Segment, idx int, terminators []Matcher, ctx *Context) (int, error) {
	if idx >= len(segments) {
		return len(segments), nil
	}

	pruned := pruneOptions(terminators, segments, idx, ctx)
	for _, t := range pruned {
		res, err := t.Match(segments, idx, ctx)
		if err != nil {
			return 0, err
		}
		if res.HasMatch() {
			return idx, nil
		}
	}

	var res MatchResult
	_, err := ctx.DeeperMatch(false, nil, segAt(segments, idx), func() (MatchResult, error) {
		var err error
		res, err = greedyMatch(segments, idx, ctx, terminators, false, false)
		return res, err
	})
	if err != nil {
		return 0, err
	}
	return skipStopIndexBackwardToCode(segments, res.Span.End, idx), nil
}

package parser

import (
	"fmt"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
)

// AnyNumberOfGrammar repeats its options. OneOf and AnySetOf are special
// cases of it.
type AnyNumberOfGrammar struct {
	base
	exclude       Matcher
	minTimes      int
	maxTimes      int
	maxPerElement int
	oneOf         bool
	name          string
}

// AnyNumberOf matches any of the options zero or more times.
func AnyNumberOf(options ...Matcher) *AnyNumberOfGrammar {
	return &AnyNumberOfGrammar{base: newBase(options), name: "AnyNumberOf"}
}

// OneOf matches exactly one of the options, preferring the longest match.
func OneOf(options ...Matcher) *AnyNumberOfGrammar {
	g := AnyNumberOf(options...)
	g.minTimes, g.maxTimes, g.oneOf, g.name = 1, 1, true, "OneOf"
	return g
}

// AnySetOf matches the options in any order, each at most once.
func AnySetOf(options ...Matcher) *AnyNumberOfGrammar {
	g := AnyNumberOf(options...)
	g.maxPerElement, g.name = 1, "AnySetOf"
	return g
}

func (a *AnyNumberOfGrammar) Optional() *AnyNumberOfGrammar {
	a.optional = true
	return a
}

// IsOptional also holds when zero repetitions satisfy the grammar.
func (a *AnyNumberOfGrammar) IsOptional() bool {
	return a.optional || a.minTimes == 0
}

func (a *AnyNumberOfGrammar) Terminators(ts ...Matcher) *AnyNumberOfGrammar {
	a.terminators = append(a.terminators, ts...)
	return a
}

func (a *AnyNumberOfGrammar) ResetTerminators() *AnyNumberOfGrammar {
	a.resetTerms = true
	return a
}

func (a *AnyNumberOfGrammar) DisallowGaps() *AnyNumberOfGrammar {
	a.allowGaps = false
	return a
}

func (a *AnyNumberOfGrammar) Mode(m ParseMode) *AnyNumberOfGrammar {
	a.mode = m
	return a
}

// Exclude fails the match wherever m matches.
func (a *AnyNumberOfGrammar) Exclude(m Matcher) *AnyNumberOfGrammar {
	a.exclude = m
	return a
}

func (a *AnyNumberOfGrammar) Min(n int) *AnyNumberOfGrammar {
	a.minTimes = n
	return a
}

// Max bounds repetitions. Zero means unbounded.
func (a *AnyNumberOfGrammar) Max(n int) *AnyNumberOfGrammar {
	a.maxTimes = n
	return a
}

// MaxPerElement bounds how often each option may match.
func (a *AnyNumberOfGrammar) MaxPerElement(n int) *AnyNumberOfGrammar {
	a.maxPerElement = n
	return a
}

// Copy returns an edited copy with a fresh cache key.
func (a *AnyNumberOfGrammar) Copy(opts CopyOpts) *AnyNumberOfGrammar {
	c := *a
	c.base = a.copyWith(opts)
	return &c
}

func (a *AnyNumberOfGrammar) String() string {
	return fmt.Sprintf("<%s: [%s]>", a.name, joinMatchers(a.elements))
}

func (a *AnyNumberOfGrammar) Simple(ctx *Context, crumbs []string) *SimpleHint {
	return unionSimple(a.elements, ctx, crumbs)
}

func (a *AnyNumberOfGrammar) Match(segments []*segment.Segment, idx int, ctx *Context) (MatchResult, error) {
	if skip, err := excluded(a.exclude, segments, idx, ctx); err != nil || skip {
		return EmptyAt(idx), err
	}
	if a.oneOf {
		return a.matchOne(segments, idx, ctx)
	}

	maxIdx := len(segments)
	if a.mode == Greedy {
		var err error
		maxIdx, err = trimToTerminator(segments, idx, a.allTerminators(ctx), ctx)
		if err != nil {
			return MatchResult{}, err
		}
	}

	nMatches := 0
	perOption := make(map[uint64]int)
	matched := EmptyAt(idx)
	matchedIdx, workingIdx := idx, idx
	bounded := segments[:maxIdx]

	for {
		if nMatches >= a.minTimes {
			if matchedIdx >= maxIdx || (a.maxTimes > 0 && nMatches >= a.maxTimes) {
				return matched, nil
			}
			stop, err := terminatorAt(segments, workingIdx, maxIdx, a.allTerminators(ctx), ctx)
			if err != nil {
				return MatchResult{}, err
			}
			if stop {
				return matched, nil
			}
		}

		var (
			res    MatchResult
			option Matcher
		)
		_, err := ctx.DeeperMatch(a.resetTerms, a.terminators, segAt(segments, workingIdx), func() (MatchResult, error) {
			var err error
			res, option, err = longestMatch(bounded, a.elements, workingIdx, ctx)
			return res, err
		})
		if err != nil {
			return MatchResult{}, err
		}

		if !res.HasMatch() {
			if nMatches < a.minTimes {
				return EmptyAt(idx), nil
			}
			return matched, nil
		}

		if a.maxPerElement > 0 {
			key := option.CacheKey()
			if perOption[key] >= a.maxPerElement {
				if nMatches < a.minTimes {
					return EmptyAt(idx), nil
				}
				return matched, nil
			}
			perOption[key]++
		}

		matched = matched.Append(res)
		matchedIdx = matched.Span.End
		workingIdx = matchedIdx
		if a.allowGaps {
			workingIdx = skipStartIndexForwardToCode(segments, matchedIdx, maxIdx)
		}
		nMatches++
	}
}

func (a *AnyNumberOfGrammar) matchOne(segments []*segment.Segment, idx int, ctx *Context) (MatchResult, error) {
	var res MatchResult
	_, err := ctx.DeeperMatch(a.resetTerms, a.terminators, segAt(segments, idx), func() (MatchResult, error) {
		var err error
		res, _, err = longestMatch(segments, a.elements, idx, ctx)
		return res, err
	})
	return res, err
}

// terminatorAt reports whether any terminator matches at the next code
// segment from idx.
func terminatorAt(segments []*segment.Segment, idx, maxIdx int, terminators []Matcher, ctx *Context) (bool, error) {
	if len(terminators) == 0 {
		return false, nil
	}
	at := skipStartIndexForwardToCode(segments, idx, maxIdx)
	if at >= maxIdx {
		return false, nil
	}
	for _, t := range pruneOptions(terminators, segments, at, ctx) {
		res, err := t.Match(segments, at, ctx)
		if err != nil {
			return false, err
		}
		if res.HasMatch() {
			return true, nil
		}
	}
	return false, nil
}

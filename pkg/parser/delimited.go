package parser

import (
	"fmt"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
)

// DelimitedGrammar matches options separated by a delimiter.
type DelimitedGrammar struct {
	base
	delimiter     Matcher
	allowTrailing bool
	minDelimiters int
}

// Delimited matches a comma separated list of the options.
func Delimited(options ...Matcher) *DelimitedGrammar {
	return &DelimitedGrammar{base: newBase(options), delimiter: Ref("CommaSegment")}
}

func (d *DelimitedGrammar) Optional() *DelimitedGrammar {
	d.optional = true
	return d
}

func (d *DelimitedGrammar) Terminators(ts ...Matcher) *DelimitedGrammar {
	d.terminators = append(d.terminators, ts...)
	return d
}

func (d *DelimitedGrammar) DisallowGaps() *DelimitedGrammar {
	d.allowGaps = false
	return d
}

// Delimiter replaces the default comma.
func (d *DelimitedGrammar) Delimiter(m Matcher) *DelimitedGrammar {
	d.delimiter = m
	return d
}

// AllowTrailing accepts a dangling delimiter after the last element.
func (d *DelimitedGrammar) AllowTrailing() *DelimitedGrammar {
	d.allowTrailing = true
	return d
}

func (d *DelimitedGrammar) MinDelimiters(n int) *DelimitedGrammar {
	d.minDelimiters = n
	return d
}

func (d *DelimitedGrammar) Elements() []Matcher {
	return append(append([]Matcher(nil), d.elements...), d.delimiter)
}

func (d *DelimitedGrammar) String() string {
	return fmt.Sprintf("<Delimited: [%s]>", joinMatchers(d.elements))
}

func (d *DelimitedGrammar) Simple(ctx *Context, crumbs []string) *SimpleHint {
	return unionSimple(d.elements, ctx, crumbs)
}

func (d *DelimitedGrammar) Match(segments []*segment.Segment, idx int, ctx *Context) (MatchResult, error) {
	delimiters := 0
	seekingDelimiter := false
	maxIdx := len(segments)
	workingIdx := idx
	working := EmptyAt(idx)
	var delimiterMatch *MatchResult

	delims := []Matcher{d.delimiter}
	// A delimiter in force as a terminator only acts as a delimiter here.
	terminators := append([]Matcher(nil), d.terminators...)
	for _, t := range ctx.terminators {
		if !containsMatcher(delims, t) {
			terminators = append(terminators, t)
		}
	}
	if !d.allowGaps {
		terminators = append(terminators, NonCode())
	}

	for {
		if d.allowGaps && workingIdx > idx {
			workingIdx = skipStartIndexForwardToCode(segments, workingIdx, maxIdx)
		}
		if workingIdx >= maxIdx {
			break
		}

		var term MatchResult
		_, err := ctx.DeeperMatch(false, nil, segAt(segments, workingIdx), func() (MatchResult, error) {
			var err error
			term, _, err = longestMatch(segments, terminators, workingIdx, ctx)
			return term, err
		})
		if err != nil {
			return MatchResult{}, err
		}
		if term.HasMatch() {
			break
		}

		var push, options []Matcher
		if seekingDelimiter {
			options = delims
		} else {
			options = d.elements
			push = delims
		}
		var res MatchResult
		_, err = ctx.DeeperMatch(false, push, segAt(segments, workingIdx), func() (MatchResult, error) {
			var err error
			res, _, err = longestMatch(segments, options, workingIdx, ctx)
			return res, err
		})
		if err != nil {
			return MatchResult{}, err
		}
		if !res.HasMatch() {
			break
		}

		if seekingDelimiter {
			m := res
			delimiterMatch = &m
		} else {
			if delimiterMatch != nil {
				delimiters++
				working = working.Append(*delimiterMatch)
			}
			working = working.Append(res)
		}

		workingIdx = res.Span.End
		seekingDelimiter = !seekingDelimiter
	}

	if d.allowTrailing && delimiterMatch != nil && !seekingDelimiter {
		delimiters++
		working = working.Append(*delimiterMatch)
	}

	if delimiters < d.minDelimiters {
		return EmptyAt(idx), nil
	}
	return working, nil
}

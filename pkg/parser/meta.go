package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// MetaGrammar is an indentation hint inside a Sequence. It matches nothing
// and only records where an Indent or Dedent belongs.
type MetaGrammar struct {
	kind syntax.Kind
}

// Indentation hints for use as Sequence elements.
var (
	Indent         = &MetaGrammar{kind: syntax.Indent}
	Dedent         = &MetaGrammar{kind: syntax.Dedent}
	ImplicitIndent = &MetaGrammar{kind: syntax.ImplicitIndent}
)

func (m *MetaGrammar) Kind() syntax.Kind { return m.kind }

func (m *MetaGrammar) indentVal() int {
	if m.kind == syntax.Dedent {
		return -1
	}
	return 1
}

func (m *MetaGrammar) Match(_ []*segment.Segment, idx int, _ *Context) (MatchResult, error) {
	return MatchResult{Span: Span{Start: idx, End: idx}, Inserts: []MetaInsert{{Idx: idx, Kind: m.kind}}}, nil
}

func (m *MetaGrammar) Simple(*Context, []string) *SimpleHint { return nil }
func (m *MetaGrammar) CacheKey() uint64                      { return 0 }
func (m *MetaGrammar) IsOptional() bool                      { return true }
func (m *MetaGrammar) String() string                        { return "<" + m.kind.String() + ">" }

// ConditionalGrammar inserts its meta only when the indentation config
// holds the given values.
type ConditionalGrammar struct {
	meta  *MetaGrammar
	rules map[string]bool
}

// Conditional returns a meta that depends on indentation config, e.g.
// Conditional(Indent, "indented_joins", true).
func Conditional(meta *MetaGrammar, key string, value bool) *ConditionalGrammar {
	return &ConditionalGrammar{meta: meta, rules: map[string]bool{key: value}}
}

// And adds another condition.
func (c *ConditionalGrammar) And(key string, value bool) *ConditionalGrammar {
	c.rules[key] = value
	return c
}

func (c *ConditionalGrammar) enabled(ctx *Context) bool {
	for k, v := range c.rules {
		if ctx.cfg.Indentation[k] != v {
			return false
		}
	}
	return true
}

func (c *ConditionalGrammar) Match(segments []*segment.Segment, idx int, ctx *Context) (MatchResult, error) {
	if !c.enabled(ctx) {
		return EmptyAt(idx), nil
	}
	return c.meta.Match(segments, idx, ctx)
}

func (c *ConditionalGrammar) Simple(*Context, []string) *SimpleHint { return nil }
func (c *ConditionalGrammar) CacheKey() uint64                      { return 0 }
func (c *ConditionalGrammar) IsOptional() bool                      { return true }

func (c *ConditionalGrammar) String() string {
	keys := make([]string, 0, len(c.rules))
	for k, v := range c.rules {
		keys = append(keys, fmt.Sprintf("%s=%t", k, v))
	}
	sort.Strings(keys)
	return fmt.Sprintf("<Conditional: %s %s>", c.meta.kind, strings.Join(keys, ","))
}

// NonCodeMatcher claims a run of non-code segments.
type NonCodeMatcher struct{}

// NonCode returns the non-code matcher.
func NonCode() NonCodeMatcher { return NonCodeMatcher{} }

func (NonCodeMatcher) Match(segments []*segment.Segment, idx int, _ *Context) (MatchResult, error) {
	end := idx
	for end < len(segments) && !segments[end].IsCode() {
		end++
	}
	if end == idx {
		return EmptyAt(idx), nil
	}
	return FromSpan(idx, end), nil
}

func (NonCodeMatcher) Simple(*Context, []string) *SimpleHint { return nil }
func (NonCodeMatcher) CacheKey() uint64                      { return 0 }
func (NonCodeMatcher) IsOptional() bool                      { return false }
func (NonCodeMatcher) String() string                        { return "<NonCode>" }

// AnythingGrammar claims everything up to the next terminator.
type AnythingGrammar struct {
	base
}

// Anything matches all remaining segments, stopping at terminators.
func Anything() *AnythingGrammar {
	return &AnythingGrammar{base: newBase(nil)}
}

// Terminators sets where Anything stops.
func (a *AnythingGrammar) Terminators(ts ...Matcher) *AnythingGrammar {
	a.terminators = append(a.terminators, ts...)
	return a
}

// ResetTerminators ignores the terminators of enclosing grammars.
func (a *AnythingGrammar) ResetTerminators() *AnythingGrammar {
	a.resetTerms = true
	return a
}

func (a *AnythingGrammar) Match(segments []*segment.Segment, idx int, ctx *Context) (MatchResult, error) {
	terminators := a.allTerminators(ctx)
	if len(terminators) == 0 {
		return FromSpan(idx, len(segments)), nil
	}
	return greedyMatch(segments, idx, ctx, terminators, false, true)
}

func (a *AnythingGrammar) Simple(*Context, []string) *SimpleHint { return nil }
func (a *AnythingGrammar) String() string                        { return "<Anything>" }

// NothingGrammar never matches. Dialects use it to switch a grammar off.
type NothingGrammar struct{}

// Nothing returns a matcher that never matches.
func Nothing() NothingGrammar { return NothingGrammar{} }

func (NothingGrammar) Match(_ []*segment.Segment, idx int, _ *Context) (MatchResult, error) {
	return EmptyAt(idx), nil
}

func (NothingGrammar) Simple(*Context, []string) *SimpleHint { return newHint() }
func (NothingGrammar) CacheKey() uint64                      { return 0 }
func (NothingGrammar) IsOptional() bool                      { return false }
func (NothingGrammar) String() string                        { return "<Nothing>" }

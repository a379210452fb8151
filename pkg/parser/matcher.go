// Package parser is the grammar matching engine.
//
// Grammars are trees of Matchers built once per dialect and shared by every
// parse. Matching a grammar against a run of lexed segments produces a
// MatchResult, which is only turned into real segments by Apply once the
// whole match is known.
//
// # Usage
//
//	d := dialect.MustGet("ansi")
//	p := parser.New(d, parser.Config{})
//	tree, err := p.Parse(tokens, "query.sql")
//
// # Building grammars
//
//	parser.Sequence(
//		parser.Ref("SelectKeywordSegment"),
//		parser.Indent,
//		parser.Delimited(parser.Ref("SelectClauseElementSegment")).AllowTrailing(),
//	).Terminators(parser.Ref("FromKeywordSegment")).Mode(parser.GreedyOnceStarted)
package parser

import (
	"strings"
	"sync/atomic"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// Matcher is implemented by every grammar element.
type Matcher interface {
	// Match tries to match segments starting at idx. A failed match is an
	// empty MatchResult, not an error; errors are reserved for input the
	// engine cannot recover from, such as unbalanced brackets.
	Match(segments []*segment.Segment, idx int, ctx *Context) (MatchResult, error)

	// Simple returns the upper-cased raws or kinds that could start a match,
	// or nil when the matcher cannot say cheaply.
	Simple(ctx *Context, crumbs []string) *SimpleHint

	// CacheKey identifies the matcher in the parse cache.
	CacheKey() uint64

	IsOptional() bool

	String() string
}

// SimpleHint is the cheap pre-filter a matcher can offer.
type SimpleHint struct {
	Raws  map[string]struct{}
	Types syntax.Set
}

func newHint() *SimpleHint {
	return &SimpleHint{Raws: make(map[string]struct{})}
}

func (h *SimpleHint) merge(o *SimpleHint) {
	for r := range o.Raws {
		h.Raws[r] = struct{}{}
	}
	h.Types = h.Types.Union(o.Types)
}

// allAlpha reports whether every raw is purely alphabetical, i.e. a keyword.
func (h *SimpleHint) allAlpha() bool {
	for r := range h.Raws {
		if r == "" || strings.IndexFunc(r, func(c rune) bool {
			return !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z')
		}) >= 0 {
			return false
		}
	}
	return true
}

// Elementer is implemented by grammars with child matchers. Dialects use it
// to validate references after expansion.
type Elementer interface {
	Elements() []Matcher
}

// ParseMode controls how much a grammar claims when it cannot match everything.
type ParseMode uint8

const (
	// Strict grammars match completely or not at all.
	Strict ParseMode = iota
	// Greedy grammars claim everything up to the next terminator and mark what
	// they do not understand as unparsable.
	Greedy
	// GreedyOnceStarted is Strict until the first element matches, then Greedy.
	GreedyOnceStarted
)

func (m ParseMode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Greedy:
		return "greedy"
	case GreedyOnceStarted:
		return "greedy_once_started"
	default:
		return "unknown"
	}
}

// Cache key 0 is reserved for matchers that opt out of caching.
var lastCacheKey atomic.Uint64

func nextCacheKey() uint64 {
	return lastCacheKey.Add(1)
}

// sameMatcher compares matchers the way membership checks need: references
// by name, everything else by identity.
func sameMatcher(a, b Matcher) bool {
	ra, okA := a.(*RefGrammar)
	rb, okB := b.(*RefGrammar)
	if okA && okB {
		return ra.name == rb.name && ra.exclude == nil && rb.exclude == nil
	}
	return a == b
}

func indexOfMatcher(list []Matcher, m Matcher) int {
	for i, x := range list {
		if sameMatcher(x, m) {
			return i
		}
	}
	return -1
}

func containsMatcher(list []Matcher, m Matcher) bool {
	return indexOfMatcher(list, m) >= 0
}

func joinMatchers(ms []Matcher) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}

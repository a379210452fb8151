package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// parserBase is shared by the single token parsers.
type parserBase struct {
	kind     syntax.Kind
	optional bool
	key      uint64
}

func (p *parserBase) CacheKey() uint64 { return p.key }
func (p *parserBase) IsOptional() bool { return p.optional }

// Kind is the kind matched tokens are given.
func (p *parserBase) Kind() syntax.Kind { return p.kind }

func (p *parserBase) retype(idx int) MatchResult {
	return MatchResult{Span: Span{Start: idx, End: idx + 1}, Matched: &Matched{Kind: p.kind, Token: true}}
}

// StringMatcher matches one code token by its upper-cased raw text.
type StringMatcher struct {
	parserBase
	template string
}

// StringParser matches a token whose raw text equals template, ignoring
// case, and retypes it to kind.
func StringParser(template string, kind syntax.Kind) *StringMatcher {
	return &StringMatcher{
		parserBase: parserBase{kind: kind, key: nextCacheKey()},
		template:   strings.ToUpper(template),
	}
}

func (s *StringMatcher) Optional() *StringMatcher {
	s.optional = true
	return s
}

func (s *StringMatcher) Template() string { return s.template }

func (s *StringMatcher) Simple(*Context, []string) *SimpleHint {
	h := newHint()
	h.Raws[s.template] = struct{}{}
	return h
}

func (s *StringMatcher) Match(segments []*segment.Segment, idx int, _ *Context) (MatchResult, error) {
	if idx >= len(segments) {
		return EmptyAt(idx), nil
	}
	seg := segments[idx]
	if seg.IsToken() && seg.IsCode() && seg.RawUpper() == s.template {
		return s.retype(idx), nil
	}
	return EmptyAt(idx), nil
}

func (s *StringMatcher) String() string { return fmt.Sprintf("<StringParser: '%s'>", s.template) }

// MultiStringMatcher matches one of several literal raws.
type MultiStringMatcher struct {
	parserBase
	templates map[string]struct{}
}

// MultiStringParser is StringParser over a set of templates.
func MultiStringParser(templates []string, kind syntax.Kind) *MultiStringMatcher {
	set := make(map[string]struct{}, len(templates))
	for _, t := range templates {
		set[strings.ToUpper(t)] = struct{}{}
	}
	return &MultiStringMatcher{parserBase: parserBase{kind: kind, key: nextCacheKey()}, templates: set}
}

func (m *MultiStringMatcher) Optional() *MultiStringMatcher {
	m.optional = true
	return m
}

func (m *MultiStringMatcher) Simple(*Context, []string) *SimpleHint {
	h := newHint()
	for t := range m.templates {
		h.Raws[t] = struct{}{}
	}
	return h
}

func (m *MultiStringMatcher) Match(segments []*segment.Segment, idx int, _ *Context) (MatchResult, error) {
	if idx >= len(segments) {
		return EmptyAt(idx), nil
	}
	seg := segments[idx]
	if !seg.IsToken() || !seg.IsCode() {
		return EmptyAt(idx), nil
	}
	if _, ok := m.templates[seg.RawUpper()]; ok {
		return m.retype(idx), nil
	}
	return EmptyAt(idx), nil
}

func (m *MultiStringMatcher) String() string {
	ts := make([]string, 0, len(m.templates))
	for t := range m.templates {
		ts = append(ts, t)
	}
	sort.Strings(ts)
	return fmt.Sprintf("<MultiStringParser: %s>", strings.Join(ts, "|"))
}

// TypedMatcher matches one token by kind.
type TypedMatcher struct {
	parserBase
	template syntax.Kind
}

// TypedParser matches a token of kind template and retypes it to kind.
func TypedParser(template, kind syntax.Kind) *TypedMatcher {
	return &TypedMatcher{parserBase: parserBase{kind: kind, key: nextCacheKey()}, template: template}
}

func (t *TypedMatcher) Optional() *TypedMatcher {
	t.optional = true
	return t
}

func (t *TypedMatcher) Simple(*Context, []string) *SimpleHint {
	h := newHint()
	h.Types.Add(t.template)
	return h
}

func (t *TypedMatcher) Match(segments []*segment.Segment, idx int, _ *Context) (MatchResult, error) {
	if idx >= len(segments) {
		return EmptyAt(idx), nil
	}
	seg := segments[idx]
	if seg.IsToken() && seg.IsType(t.template) {
		return t.retype(idx), nil
	}
	return EmptyAt(idx), nil
}

func (t *TypedMatcher) String() string { return fmt.Sprintf("<TypedParser: %s>", t.template) }

// RegexMatcher matches one code token whose whole raw text matches a pattern.
type RegexMatcher struct {
	parserBase
	pattern string
	re      *regexp.Regexp
	anti    *regexp.Regexp
}

// RegexParser matches tokens whose raw text fully matches pattern, ignoring
// case. It panics on an invalid pattern.
func RegexParser(pattern string, kind syntax.Kind) *RegexMatcher {
	return &RegexMatcher{
		parserBase: parserBase{kind: kind, key: nextCacheKey()},
		pattern:    pattern,
		re:         regexp.MustCompile(`(?i)^(?:` + pattern + `)$`),
	}
}

// AntiTemplate rejects tokens that match anti from their start, such as
// reserved words for identifiers.
func (r *RegexMatcher) AntiTemplate(anti string) *RegexMatcher {
	r.anti = regexp.MustCompile(`(?i)^(?:` + anti + `)`)
	return r
}

func (r *RegexMatcher) Optional() *RegexMatcher {
	r.optional = true
	return r
}

func (r *RegexMatcher) Simple(*Context, []string) *SimpleHint { return nil }

func (r *RegexMatcher) Match(segments []*segment.Segment, idx int, _ *Context) (MatchResult, error) {
	if idx >= len(segments) {
		return EmptyAt(idx), nil
	}
	seg := segments[idx]
	if !seg.IsToken() || !seg.IsCode() || seg.Raw() == "" {
		return EmptyAt(idx), nil
	}
	if !r.re.MatchString(seg.Raw()) {
		return EmptyAt(idx), nil
	}
	if r.anti != nil && r.anti.MatchString(seg.RawUpper()) {
		return EmptyAt(idx), nil
	}
	return r.retype(idx), nil
}

func (r *RegexMatcher) String() string { return fmt.Sprintf("<RegexParser: %q>", r.pattern) }

// NodeGrammar wraps whatever its grammar matches in a node of one kind.
type NodeGrammar struct {
	kind     syntax.Kind
	grammar  Matcher
	optional bool
	key      uint64
}

// NodeMatcher builds the matcher for a segment kind from its grammar.
func NodeMatcher(kind syntax.Kind, grammar Matcher) *NodeGrammar {
	return &NodeGrammar{kind: kind, grammar: grammar, key: nextCacheKey()}
}

func (n *NodeGrammar) Kind() syntax.Kind   { return n.kind }
func (n *NodeGrammar) Grammar() Matcher    { return n.grammar }
func (n *NodeGrammar) Elements() []Matcher { return []Matcher{n.grammar} }
func (n *NodeGrammar) CacheKey() uint64    { return n.key }
func (n *NodeGrammar) IsOptional() bool    { return n.optional }
func (n *NodeGrammar) String() string      { return "<Node: " + n.kind.String() + ">" }

func (n *NodeGrammar) Optional() *NodeGrammar {
	n.optional = true
	return n
}

// WithGrammar returns a copy with another grammar, for dialect overrides.
func (n *NodeGrammar) WithGrammar(g Matcher) *NodeGrammar {
	return &NodeGrammar{kind: n.kind, grammar: g, optional: n.optional, key: nextCacheKey()}
}

func (n *NodeGrammar) Simple(ctx *Context, crumbs []string) *SimpleHint {
	return n.grammar.Simple(ctx, crumbs)
}

func (n *NodeGrammar) Match(segments []*segment.Segment, idx int, ctx *Context) (MatchResult, error) {
	if idx >= len(segments) {
		return EmptyAt(idx), nil
	}
	if segments[idx].Kind() == n.kind {
		return FromSpan(idx, idx+1), nil
	}
	res, err := ctx.DeeperMatch(false, nil, segAt(segments, idx), func() (MatchResult, error) {
		return n.grammar.Match(segments, idx, ctx)
	})
	if err != nil {
		return MatchResult{}, err
	}
	return res.Wrap(Matched{Kind: n.kind}), nil
}

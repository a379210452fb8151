package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
)

// RefGrammar is a named reference into the dialect library, resolved at
// match time so grammars can be mutually recursive.
type RefGrammar struct {
	base
	name    string
	exclude Matcher
}

// Ref refers to the grammar registered under name.
func Ref(name string) *RefGrammar {
	return &RefGrammar{base: newBase(nil), name: name}
}

// Keyword refers to the generated parser for a keyword, e.g. Keyword("select")
// is Ref("SelectKeywordSegment").
func Keyword(word string) *RefGrammar {
	return Ref(KeywordRefName(word))
}

// Keywords matches the keywords in order, e.g. Keywords("ORDER", "BY").
func Keywords(words ...string) *SequenceGrammar {
	ms := make([]Matcher, len(words))
	for i, w := range words {
		ms[i] = Keyword(w)
	}
	return Sequence(ms...)
}

// KeywordRefName is the library name of a keyword's parser.
func KeywordRefName(word string) string {
	if word == "" {
		return "KeywordSegment"
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:]) + "KeywordSegment"
}

func (r *RefGrammar) Name() string { return r.name }

func (r *RefGrammar) Optional() *RefGrammar {
	r.optional = true
	return r
}

func (r *RefGrammar) Terminators(ts ...Matcher) *RefGrammar {
	r.terminators = append(r.terminators, ts...)
	return r
}

func (r *RefGrammar) ResetTerminators() *RefGrammar {
	r.resetTerms = true
	return r
}

// Exclude fails the match wherever m matches.
func (r *RefGrammar) Exclude(m Matcher) *RefGrammar {
	r.exclude = m
	return r
}

func (r *RefGrammar) Elements() []Matcher {
	if r.exclude != nil {
		return []Matcher{r.exclude}
	}
	return nil
}

func (r *RefGrammar) String() string {
	if r.optional {
		return "<Ref: " + r.name + " [opt]>"
	}
	return "<Ref: " + r.name + ">"
}

func (r *RefGrammar) Simple(ctx *Context, crumbs []string) *SimpleHint {
	if slices.Contains(crumbs, r.name) {
		panic(fmt.Sprintf("parser: self referential grammar detected: %s -> %s", strings.Join(crumbs, " -> "), r.name))
	}
	if h, ok := ctx.refSimple[r.name]; ok {
		return h
	}
	next := append(append([]string(nil), crumbs...), r.name)
	h := ctx.Grammar(r.name).Simple(ctx, next)
	ctx.refSimple[r.name] = h
	return h
}

func (r *RefGrammar) Match(segments []*segment.Segment, idx int, ctx *Context) (MatchResult, error) {
	elem := ctx.Grammar(r.name)
	if r.exclude != nil {
		res, err := ctx.DeeperMatch(r.resetTerms, r.terminators, segAt(segments, idx), func() (MatchResult, error) {
			return r.exclude.Match(segments, idx, ctx)
		})
		if err != nil {
			return MatchResult{}, err
		}
		if res.HasMatch() {
			return EmptyAt(idx), nil
		}
	}
	return ctx.DeeperMatch(r.resetTerms, r.terminators, segAt(segments, idx), func() (MatchResult, error) {
		return elem.Match(segments, idx, ctx)
	})
}

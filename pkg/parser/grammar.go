package parser

import (
	"fmt"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
)

// base carries what every combinator shares. Chain methods on the concrete
// types mutate it and must only be used while a dialect is being built.
type base struct {
	elements    []Matcher
	optional    bool
	terminators []Matcher
	resetTerms  bool
	allowGaps   bool
	mode        ParseMode
	key         uint64
}

func newBase(elements []Matcher) base {
	return base{
		elements:  elements,
		allowGaps: true,
		key:       nextCacheKey(),
	}
}

func (b *base) CacheKey() uint64 { return b.key }

func (b *base) IsOptional() bool { return b.optional }

// Elements returns the child matchers.
func (b *base) Elements() []Matcher { return b.elements }

// ParseMode returns the parse mode.
func (b *base) ParseMode() ParseMode { return b.mode }

// allTerminators is the grammar's own terminators plus those in force.
func (b *base) allTerminators(ctx *Context) []Matcher {
	out := make([]Matcher, 0, len(b.terminators)+len(ctx.terminators))
	out = append(out, b.terminators...)
	if !b.resetTerms {
		out = append(out, ctx.terminators...)
	}
	return out
}

// excluded reports whether exclude matches at idx.
func excluded(exclude Matcher, segments []*segment.Segment, idx int, ctx *Context) (bool, error) {
	if exclude == nil {
		return false, nil
	}
	res, err := ctx.DeeperMatch(false, nil, segAt(segments, idx), func() (MatchResult, error) {
		return exclude.Match(segments, idx, ctx)
	})
	if err != nil {
		return false, err
	}
	return res.HasMatch(), nil
}

// unionSimple merges the hints of all options, or returns nil if any
// option has none.
func unionSimple(options []Matcher, ctx *Context, crumbs []string) *SimpleHint {
	out := newHint()
	for _, opt := range options {
		h := opt.Simple(ctx, crumbs)
		if h == nil {
			return nil
		}
		out.merge(h)
	}
	return out
}

// CopyOpts edits a grammar's elements while copying it, for dialects that
// derive one grammar from another.
type CopyOpts struct {
	// Insert adds elements before Before, at the head with Prepend, at a
	// positive index At, or else at the end.
	Insert  []Matcher
	Before  Matcher
	Prepend bool
	At      int
	// Remove drops elements equal to any of these.
	Remove []Matcher
	// Terminators are appended to (or replace, with ReplaceTerminators)
	// the existing terminators.
	Terminators        []Matcher
	ReplaceTerminators bool
}

func (b base) copyWith(opts CopyOpts) base {
	out := b
	out.key = nextCacheKey()

	elems := make([]Matcher, 0, len(b.elements)+len(opts.Insert))
	for _, e := range b.elements {
		if !containsMatcher(opts.Remove, e) {
			elems = append(elems, e)
		}
	}
	if len(opts.Remove) > 0 && len(elems) != len(b.elements)-len(opts.Remove) {
		panic(fmt.Sprintf("parser: copy asked to remove elements not present in [%s]", joinMatchers(b.elements)))
	}

	if len(opts.Insert) > 0 {
		at := len(elems)
		switch {
		case opts.Before != nil:
			at = indexOfMatcher(elems, opts.Before)
			if at < 0 {
				panic(fmt.Sprintf("parser: copy insert before %s, which is not in [%s]", opts.Before, joinMatchers(elems)))
			}
		case opts.Prepend:
			at = 0
		case opts.At > 0:
			at = opts.At
		}
		if at > len(elems) {
			at = len(elems)
		}
		merged := make([]Matcher, 0, len(elems)+len(opts.Insert))
		merged = append(merged, elems[:at]...)
		merged = append(merged, opts.Insert...)
		merged = append(merged, elems[at:]...)
		elems = merged
	}
	out.elements = elems

	if opts.ReplaceTerminators {
		out.terminators = append([]Matcher(nil), opts.Terminators...)
	} else if len(opts.Terminators) > 0 {
		out.terminators = append(append([]Matcher(nil), b.terminators...), opts.Terminators...)
	}
	return out
}

func describe(segments []*segment.Segment, idx int) string {
	if idx < 0 || idx >= len(segments) {
		return "nothing"
	}
	return segments[idx].String()
}

package parser

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
)

// Library resolves grammar references. Dialects implement it.
type Library interface {
	// Grammar returns the matcher registered under name. It panics for
	// unknown names, which are grammar authoring errors.
	Grammar(name string) Matcher
	// BracketPairs returns the bracket pairs of a bracket set.
	BracketPairs(set string) []BracketPair
}

// BracketPair names the grammar references of one kind of bracket.
type BracketPair struct {
	Name     string
	Start    string
	End      string
	Persists bool
}

// Config holds the parse options that come from configuration.
type Config struct {
	// StrictBrackets makes Greedy bracketed content behave as Strict.
	StrictBrackets bool
	// MaxDepth caps nested matching when positive. Zero leaves nesting
	// bounded only by the goroutine stack, which grows on demand.
	MaxDepth int
	// Indentation holds the flags Conditional grammars test, e.g. "indented_joins".
	Indentation map[string]bool
	Logger      *slog.Logger
}

type bracketLoc struct {
	start  int
	scope  string
	nested bool
}

type cacheLoc struct {
	key    uint64
	idx    int
	maxIdx int
}

// Context carries the mutable state of one parse. It must not be shared
// between concurrent parses.
type Context struct {
	library     Library
	cfg         Config
	terminators []Matcher
	cache       map[cacheLoc]MatchResult
	brackets    map[bracketLoc]MatchResult
	simple      map[uint64]*SimpleHint
	refSimple   map[string]*SimpleHint
	depth       int
	maxDepth    int
	logger      *slog.Logger
}

// NewContext builds a parse context over a grammar library.
func NewContext(lib Library, cfg Config) *Context {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		library:   lib,
		cfg:       cfg,
		cache:     make(map[cacheLoc]MatchResult),
		brackets:  make(map[bracketLoc]MatchResult),
		simple:    make(map[uint64]*SimpleHint),
		refSimple: make(map[string]*SimpleHint),
		maxDepth:  max(cfg.MaxDepth, 0),
		logger:    logger,
	}
}

// Library returns the grammar library of the parse.
func (c *Context) Library() Library { return c.library }

// Config returns the parse options.
func (c *Context) Config() Config { return c.cfg }

// Terminators returns the terminators currently in force.
func (c *Context) Terminators() []Matcher { return c.terminators }

// Depth returns the current match depth.
func (c *Context) Depth() int { return c.depth }

// Grammar resolves a reference through the library.
func (c *Context) Grammar(name string) Matcher {
	return c.library.Grammar(name)
}

// deeper enters a nested match. The returned func restores the previous
// terminators and depth and must be called whether or not the match succeeds.
func (c *Context) deeper(clearTerminators bool, push []Matcher, at *segment.Segment) (func(), error) {
	if c.maxDepth > 0 && c.depth >= c.maxDepth {
		e := newParseError(at, "%s (%d)", ErrMaxDepth.Error(), c.maxDepth)
		e.Err = ErrMaxDepth
		return func() {}, e
	}
	prev := c.terminators
	switch {
	case clearTerminators:
		c.terminators = append([]Matcher(nil), push...)
	case len(push) > 0:
		next := append([]Matcher(nil), prev...)
		for _, t := range push {
			if !containsMatcher(next, t) {
				next = append(next, t)
			}
		}
		c.terminators = next
	}
	c.depth++
	return func() {
		c.depth--
		c.terminators = prev
	}, nil
}

// DeeperMatch runs fn one level deeper with adjusted terminators. at is the
// segment being matched, used to place a depth error.
func (c *Context) DeeperMatch(clearTerminators bool, push []Matcher, at *segment.Segment, fn func() (MatchResult, error)) (MatchResult, error) {
	done, err := c.deeper(clearTerminators, push, at)
	if err != nil {
		return MatchResult{}, err
	}
	defer done()
	return fn()
}

// segAt is the segment at idx, or the last one when idx is past the end.
func segAt(segments []*segment.Segment, idx int) *segment.Segment {
	switch {
	case len(segments) == 0:
		return nil
	case idx < len(segments):
		return segments[max(idx, 0)]
	default:
		return segments[len(segments)-1]
	}
}

func (c *Context) checkCache(loc cacheLoc) (MatchResult, bool) {
	m, ok := c.cache[loc]
	return m, ok
}

func (c *Context) putCache(loc cacheLoc, m MatchResult) {
	c.cache[loc] = m
}

// simpleOf memoises Simple for matchers with a cache key.
func (c *Context) simpleOf(m Matcher) *SimpleHint {
	key := m.CacheKey()
	if key == 0 {
		return m.Simple(c, nil)
	}
	if h, ok := c.simple[key]; ok {
		return h
	}
	h := m.Simple(c, nil)
	c.simple[key] = h
	return h
}

func (c *Context) String() string {
	return fmt.Sprintf("Context(depth=%d, terminators=[%s])", c.depth, joinMatchers(c.terminators))
}

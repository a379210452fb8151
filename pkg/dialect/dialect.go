// Package dialect holds the grammar table of a SQL dialect.
//
// A Dialect maps grammar names ("SelectStatementSegment", "ExpressionSegment",
// ...) to matchers, and carries the keyword sets, bracket sets and lexer
// matchers the parser needs. Concrete dialects are built in pkg/dialects/* and
// registered lazily, so a dialect's grammar is only constructed the first time
// it is used.
package dialect

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/lexer"
	"github.com/leapstack-labs/sqlgrain/pkg/parser"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// Set labels with special meaning.
const (
	ReservedKeywords   = "reserved_keywords"
	UnreservedKeywords = "unreserved_keywords"
	BareFunctions      = "bare_functions"
	DatetimeUnits      = "datetime_units"

	BracketPairs      = parser.BracketPairsSet
	AngleBracketPairs = "angle_bracket_pairs"
)

// Generator builds a grammar from the dialect once all sets are final, e.g.
// an identifier parser that excludes the reserved keywords.
type Generator func(d *Dialect) parser.Matcher

type element struct {
	matcher parser.Matcher
	gen     Generator
}

// Dialect is a grammar library plus lexing configuration.
type Dialect struct {
	name     string
	root     string
	library  map[string]element
	sets     map[string]map[string]struct{}
	brackets map[string][]parser.BracketPair
	matchers []lexer.Matcher
	expanded bool

	// generated holds the keyword parsers Expand created.
	generated map[string]struct{}
}

// New creates an empty dialect whose root grammar is parser.DefaultRoot.
func New(name string) *Dialect {
	return &Dialect{
		name:      name,
		root:      parser.DefaultRoot,
		library:   make(map[string]element),
		sets:      make(map[string]map[string]struct{}),
		brackets:  make(map[string][]parser.BracketPair),
		generated: make(map[string]struct{}),
	}
}

// Name returns the dialect name.
func (d *Dialect) Name() string { return d.name }

// Root returns the name of the file grammar.
func (d *Dialect) Root() string { return d.root }

// SetRoot changes the file grammar name.
func (d *Dialect) SetRoot(name string) { d.root = name }

// Expanded reports whether Expand has run.
func (d *Dialect) Expanded() bool { return d.expanded }

// Add registers grammars. It panics if a name is already registered.
func (d *Dialect) Add(name string, m parser.Matcher) {
	if _, ok := d.library[name]; ok {
		panic(fmt.Sprintf("dialect %s: the name %q is already registered", d.name, name))
	}
	d.library[name] = element{matcher: m}
	d.expanded = false
}

// AddGenerator registers a grammar built during Expand.
func (d *Dialect) AddGenerator(name string, g Generator) {
	if _, ok := d.library[name]; ok {
		panic(fmt.Sprintf("dialect %s: the name %q is already registered", d.name, name))
	}
	d.library[name] = element{gen: g}
	d.expanded = false
}

// Replace swaps an existing grammar. It panics if name is not registered,
// which usually means a typo in a derived dialect.
func (d *Dialect) Replace(name string, m parser.Matcher) {
	if _, ok := d.library[name]; !ok {
		panic(fmt.Sprintf("dialect %s: cannot replace %q, it is not registered", d.name, name))
	}
	d.library[name] = element{matcher: m}
	d.expanded = false
}

// ReplaceNodeGrammar swaps the grammar inside a registered NodeMatcher and
// keeps its kind, so a derived dialect can change what a select statement
// matches without changing what it is.
func (d *Dialect) ReplaceNodeGrammar(name string, g parser.Matcher) {
	el, ok := d.library[name]
	if !ok {
		panic(fmt.Sprintf("dialect %s: cannot replace %q, it is not registered", d.name, name))
	}
	node, isNode := el.matcher.(*parser.NodeGrammar)
	if !isNode {
		panic(fmt.Sprintf("dialect %s: %q is not a node grammar", d.name, name))
	}
	d.library[name] = element{matcher: node.WithGrammar(g)}
	d.expanded = false
}

// ReplaceGenerator swaps an existing grammar for a generator.
func (d *Dialect) ReplaceGenerator(name string, g Generator) {
	if _, ok := d.library[name]; !ok {
		panic(fmt.Sprintf("dialect %s: cannot replace %q, it is not registered", d.name, name))
	}
	d.library[name] = element{gen: g}
	d.expanded = false
}

// Has reports whether name is registered.
func (d *Dialect) Has(name string) bool {
	_, ok := d.library[name]
	return ok
}

// Names returns every registered grammar name, sorted.
func (d *Dialect) Names() []string {
	return slices.Sorted(maps.Keys(d.library))
}

// Grammar resolves a name. It panics for unknown names and before Expand.
func (d *Dialect) Grammar(name string) parser.Matcher {
	if !d.expanded {
		panic(fmt.Sprintf("dialect %s: grammar %q requested before Expand", d.name, name))
	}
	el, ok := d.library[name]
	if !ok {
		if kw, isKw := strings.CutSuffix(name, "KeywordSegment"); isKw && kw != "" {
			panic(fmt.Sprintf("dialect %s: grammar refers to the %q keyword which was not found in the dialect. "+
				"Add it to the %s or %s set.", d.name, strings.ToUpper(kw), ReservedKeywords, UnreservedKeywords))
		}
		panic(fmt.Sprintf("dialect %s: grammar refers to %q which was not found in the dialect", d.name, name))
	}
	if el.matcher == nil {
		panic(fmt.Sprintf("dialect %s: unexpanded generator %q", d.name, name))
	}
	return el.matcher
}

// Set returns the live set for label, creating it if needed. Dialect
// construction code mutates it directly.
func (d *Dialect) Set(label string) map[string]struct{} {
	if label == BracketPairs || label == AngleBracketPairs {
		panic(fmt.Sprintf("dialect %s: use BracketSets to retrieve the %s set", d.name, label))
	}
	s, ok := d.sets[label]
	if !ok {
		s = make(map[string]struct{})
		d.sets[label] = s
	}
	return s
}

// Sets returns the sorted values of a set.
func (d *Dialect) Sets(label string) []string {
	return slices.Sorted(maps.Keys(d.Set(label)))
}

// AddToSet adds upper-cased values to a set.
func (d *Dialect) AddToSet(label string, values ...string) {
	s := d.Set(label)
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			s[strings.ToUpper(v)] = struct{}{}
		}
	}
	d.expanded = false
}

// RemoveFromSet removes values from a set.
func (d *Dialect) RemoveFromSet(label string, values ...string) {
	s := d.Set(label)
	for _, v := range values {
		delete(s, strings.ToUpper(v))
	}
	d.expanded = false
}

// UpdateKeywordsFromString adds one keyword per line of values.
func (d *Dialect) UpdateKeywordsFromString(label, values string) {
	d.AddToSet(label, strings.Split(values, "\n")...)
}

// IsKeyword reports whether word is in either keyword set.
func (d *Dialect) IsKeyword(word string) bool {
	word = strings.ToUpper(word)
	_, r := d.sets[ReservedKeywords][word]
	_, u := d.sets[UnreservedKeywords][word]
	return r || u
}

// IsReserved reports whether word is a reserved keyword.
func (d *Dialect) IsReserved(word string) bool {
	_, ok := d.sets[ReservedKeywords][strings.ToUpper(word)]
	return ok
}

// BracketSets returns the pairs of a bracket set.
func (d *Dialect) BracketSets(label string) []parser.BracketPair {
	if label != BracketPairs && label != AngleBracketPairs {
		panic(fmt.Sprintf("dialect %s: invalid bracket set %q", d.name, label))
	}
	return d.brackets[label]
}

// AddBracketPairs adds pairs to a bracket set. A pair with an existing name
// replaces it.
func (d *Dialect) AddBracketPairs(label string, pairs ...parser.BracketPair) {
	if label != BracketPairs && label != AngleBracketPairs {
		panic(fmt.Sprintf("dialect %s: invalid bracket set %q", d.name, label))
	}
	cur := d.brackets[label]
	for _, p := range pairs {
		idx := slices.IndexFunc(cur, func(c parser.BracketPair) bool { return c.Name == p.Name })
		if idx >= 0 {
			cur[idx] = p
		} else {
			cur = append(cur, p)
		}
	}
	d.brackets[label] = cur
}

// BracketPairs implements parser.Library.
func (d *Dialect) BracketPairs(set string) []parser.BracketPair {
	return d.BracketSets(set)
}

// SetLexerMatchers replaces the lexer configuration.
func (d *Dialect) SetLexerMatchers(ms []lexer.Matcher) {
	d.matchers = slices.Clone(ms)
}

// LexerMatchers returns the lexer configuration. It panics if none was set.
func (d *Dialect) LexerMatchers() []lexer.Matcher {
	if d.matchers == nil {
		panic(fmt.Sprintf("dialect %s: lexer matchers have not been set", d.name))
	}
	return d.matchers
}

// InsertLexerMatchers inserts ms before the matcher called before.
func (d *Dialect) InsertLexerMatchers(before string, ms ...lexer.Matcher) {
	idx := slices.IndexFunc(d.matchers, func(m lexer.Matcher) bool { return m.Name() == before })
	if idx < 0 {
		panic(fmt.Sprintf("dialect %s: no lexer matcher named %q", d.name, before))
	}
	d.matchers = slices.Insert(slices.Clone(d.matchers), idx, ms...)
}

// PatchLexerMatchers replaces matchers with the same name.
func (d *Dialect) PatchLexerMatchers(ms ...lexer.Matcher) {
	out := slices.Clone(d.matchers)
	for _, m := range ms {
		idx := slices.IndexFunc(out, func(c lexer.Matcher) bool { return c.Name() == m.Name() })
		if idx < 0 {
			panic(fmt.Sprintf("dialect %s: cannot patch missing lexer matcher %q", d.name, m.Name()))
		}
		out[idx] = m
	}
	d.matchers = out
}

// Lexer builds a lexer for the dialect.
func (d *Dialect) Lexer() *lexer.Lexer {
	return lexer.New(d.LexerMatchers())
}

// Expand resolves generators, creates a keyword parser for every keyword
// that has none, and checks that every reference resolves. It panics on a
// dangling reference.
func (d *Dialect) Expand() {
	for name, el := range d.library {
		if el.gen != nil {
			d.library[name] = element{matcher: el.gen(d), gen: el.gen}
		}
	}
	for _, label := range []string{UnreservedKeywords, ReservedKeywords} {
		for kw := range d.sets[label] {
			name := parser.KeywordRefName(kw)
			if _, ok := d.library[name]; !ok {
				d.library[name] = element{matcher: parser.StringParser(kw, syntax.Keyword)}
				d.generated[name] = struct{}{}
			}
		}
	}
	d.expanded = true
	d.validate()
}

func (d *Dialect) validate() {
	seen := make(map[uint64]struct{})
	var missing []string
	var walk func(m parser.Matcher)
	walk = func(m parser.Matcher) {
		if m == nil {
			return
		}
		if _, ok := seen[m.CacheKey()]; ok {
			return
		}
		seen[m.CacheKey()] = struct{}{}
		if r, ok := m.(*parser.RefGrammar); ok {
			if _, found := d.library[r.Name()]; !found {
				missing = append(missing, r.Name())
			}
		}
		if e, ok := m.(parser.Elementer); ok {
			for _, c := range e.Elements() {
				walk(c)
			}
		}
	}
	for _, name := range d.Names() {
		walk(d.library[name].matcher)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		missing = slices.Compact(missing)
		d.expanded = false
		panic(fmt.Sprintf("dialect %s: grammar refers to unknown names: %s", d.name, strings.Join(missing, ", ")))
	}
}

// Clone copies the tables so a derived dialect can change them without
// touching its parent. Matchers themselves are shared.
func (d *Dialect) Clone(name string) *Dialect {
	c := &Dialect{
		name:      name,
		root:      d.root,
		library:   maps.Clone(d.library),
		sets:      make(map[string]map[string]struct{}, len(d.sets)),
		brackets:  make(map[string][]parser.BracketPair, len(d.brackets)),
		matchers:  slices.Clone(d.matchers),
		generated: make(map[string]struct{}),
	}
	for k, v := range d.sets {
		c.sets[k] = maps.Clone(v)
	}
	for k, v := range d.brackets {
		c.brackets[k] = slices.Clone(v)
	}
	// Keyword parsers are regenerated against the new sets.
	for name := range d.generated {
		delete(c.library, name)
	}
	// Generators run again on Expand.
	for name, el := range c.library {
		if el.gen != nil {
			c.library[name] = element{gen: el.gen}
		}
	}
	return c
}

// Parser returns a parser over this dialect.
func (d *Dialect) Parser(cfg parser.Config) *parser.Parser {
	return parser.New(d, cfg).WithRoot(d.root)
}

func (d *Dialect) String() string { return "Dialect(" + d.name + ")" }

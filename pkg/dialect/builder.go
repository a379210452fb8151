package dialect

import (
	"github.com/leapstack-labs/sqlgrain/pkg/lexer"
	"github.com/leapstack-labs/sqlgrain/pkg/parser"
)

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name.
func NewDialect(name string) *Builder {
	return &Builder{dialect: New(name)}
}

// Derive starts a builder from a copy of base.
func Derive(base *Dialect, name string) *Builder {
	return &Builder{dialect: base.Clone(name)}
}

// Root sets the file grammar name.
func (b *Builder) Root(name string) *Builder {
	b.dialect.SetRoot(name)
	return b
}

// Lexer sets the lexer matchers.
func (b *Builder) Lexer(ms ...lexer.Matcher) *Builder {
	b.dialect.SetLexerMatchers(ms)
	return b
}

// InsertLexer inserts matchers before the one called before.
func (b *Builder) InsertLexer(before string, ms ...lexer.Matcher) *Builder {
	b.dialect.InsertLexerMatchers(before, ms...)
	return b
}

// PatchLexer replaces lexer matchers by name.
func (b *Builder) PatchLexer(ms ...lexer.Matcher) *Builder {
	b.dialect.PatchLexerMatchers(ms...)
	return b
}

// Keywords adds words to a set, usually ReservedKeywords or UnreservedKeywords.
func (b *Builder) Keywords(label string, words ...string) *Builder {
	b.dialect.AddToSet(label, words...)
	return b
}

// KeywordsFromString adds one word per line to a set.
func (b *Builder) KeywordsFromString(label, words string) *Builder {
	b.dialect.UpdateKeywordsFromString(label, words)
	return b
}

// RemoveKeywords removes words from a set.
func (b *Builder) RemoveKeywords(label string, words ...string) *Builder {
	b.dialect.RemoveFromSet(label, words...)
	return b
}

// Brackets adds bracket pairs to a bracket set.
func (b *Builder) Brackets(label string, pairs ...parser.BracketPair) *Builder {
	b.dialect.AddBracketPairs(label, pairs...)
	return b
}

// Grammar registers a grammar.
func (b *Builder) Grammar(name string, m parser.Matcher) *Builder {
	b.dialect.Add(name, m)
	return b
}

// Grammars registers several grammars at once.
func (b *Builder) Grammars(gs map[string]parser.Matcher) *Builder {
	for name, m := range gs {
		b.dialect.Add(name, m)
	}
	return b
}

// Generator registers a grammar built at expansion time.
func (b *Builder) Generator(name string, g Generator) *Builder {
	b.dialect.AddGenerator(name, g)
	return b
}

// Replace swaps an inherited grammar.
func (b *Builder) Replace(name string, m parser.Matcher) *Builder {
	b.dialect.Replace(name, m)
	return b
}

// ReplaceNode swaps the grammar of an inherited NodeMatcher.
func (b *Builder) ReplaceNode(name string, g parser.Matcher) *Builder {
	b.dialect.ReplaceNodeGrammar(name, g)
	return b
}

// ReplaceGenerator swaps an inherited grammar for a generator.
func (b *Builder) ReplaceGenerator(name string, g Generator) *Builder {
	b.dialect.ReplaceGenerator(name, g)
	return b
}

// Dialect gives access to the dialect under construction, for grammars that
// need to read inherited entries.
func (b *Builder) Dialect() *Dialect { return b.dialect }

// Build expands the dialect and returns it.
func (b *Builder) Build() *Dialect {
	b.dialect.Expand()
	return b.dialect
}

// Package ansi provides the base ANSI SQL dialect.
//
// This dialect serves as the foundation for all other SQL dialects. Dialects
// like Trino or Databricks derive from Base and add or override grammars,
// keywords and lexer matchers.
package ansi

import (
	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/parser"
)

// Name is the registry name of the dialect.
const Name = "ansi"

func init() {
	dialect.Register(Name, func() *dialect.Dialect { return Base().Build() })
}

// Base returns a fresh, unexpanded ANSI builder. Each call builds new
// tables, so derived dialects can change theirs freely.
func Base() *dialect.Builder {
	b := dialect.NewDialect(Name).
		Lexer(LexerMatchers()...).
		KeywordsFromString(dialect.ReservedKeywords, reservedKeywords).
		KeywordsFromString(dialect.UnreservedKeywords, unreservedKeywords).
		Keywords(dialect.BareFunctions, "current_timestamp", "current_time", "current_date").
		Keywords(dialect.DatetimeUnits,
			"DAY", "DAYOFYEAR", "HOUR", "MILLISECOND", "MINUTE", "MONTH",
			"QUARTER", "SECOND", "WEEK", "WEEKDAY", "YEAR",
		).
		Brackets(dialect.BracketPairs,
			parser.BracketPair{Name: "round", Start: "StartBracketSegment", End: "EndBracketSegment", Persists: true},
			parser.BracketPair{Name: "square", Start: "StartSquareBracketSegment", End: "EndSquareBracketSegment"},
			parser.BracketPair{Name: "curly", Start: "StartCurlyBracketSegment", End: "EndCurlyBracketSegment"},
		)

	return identifiers(b).
		Grammars(punctuation()).
		Grammars(operators()).
		Grammars(literals()).
		Grammars(expressions()).
		Grammars(functions()).
		Grammars(selectables()).
		Grammars(fromClause()).
		Grammars(clauses()).
		Grammars(datatypes()).
		Grammars(dml()).
		Grammars(ddl()).
		Grammars(statements())
}

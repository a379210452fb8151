// Package databricks is the Databricks SQL dialect, derived from ANSI.
//
// On top of ANSI it understands backtick quoted identifiers, QUALIFY,
// LIMIT ALL, SHOW TABLES/VIEWS, named arguments (=>), the `:` JSON path
// accessor and LEFT SEMI/ANTI joins.
package databricks

import (
	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/dialects/ansi"
	"github.com/leapstack-labs/sqlgrain/pkg/lexer"
	"github.com/leapstack-labs/sqlgrain/pkg/parser"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// Name is the registry name of the dialect.
const Name = "databricks"

// NamedArgument is the kind of a `name => value` function argument.
var NamedArgument = syntax.Register("named_argument")

const unreservedKeywords = `ANTI
COLUMNS
DATABASES
EXTENDED
FUNCTIONS
REGEXP
SCHEMAS
SEMI
SHOW
TABLES
VIEWS`

func init() {
	dialect.Register(Name, func() *dialect.Dialect { return Builder().Build() })
}

// Builder returns an unexpanded Databricks builder.
func Builder() *dialect.Builder {
	return dialect.Derive(ansi.Base().Dialect(), Name).
		InsertLexer("equals", lexer.NewStringLexer("right_arrow", "=>", syntax.RightArrow)).
		KeywordsFromString(dialect.UnreservedKeywords, unreservedKeywords).
		RemoveKeywords(dialect.UnreservedKeywords, "QUALIFY").
		Keywords(dialect.ReservedKeywords, "QUALIFY").
		Replace("QuotedIdentifierSegment", parser.OneOf(
			parser.TypedParser(syntax.BackQuote, syntax.QuotedIdentifier),
			parser.TypedParser(syntax.DoubleQuote, syntax.QuotedIdentifier),
		)).
		Replace("QualifyClauseSegment", parser.NodeMatcher(syntax.QualifyClause, parser.Sequence(
			parser.Keyword("QUALIFY"),
			parser.ImplicitIndent,
			parser.OptionallyBracketed(parser.Ref("ExpressionSegment")),
			parser.Dedent,
		))).
		Replace("NotNullGrammar", parser.Keywords("NOT", "NULL")).
		Replace("LikeGrammar", parser.OneOf(
			parser.Keyword("LIKE"),
			parser.Keyword("ILIKE"),
			parser.Keyword("RLIKE"),
			parser.Keyword("REGEXP"),
		)).
		Replace("JoinTypeKeywordsGrammar", parser.OneOf(
			parser.Keyword("CROSS"),
			parser.Keyword("INNER"),
			parser.Sequence(
				parser.OneOf(parser.Keyword("FULL"), parser.Keyword("LEFT"), parser.Keyword("RIGHT")),
				parser.Keyword("OUTER").Optional(),
			),
			parser.Sequence(
				parser.Keyword("LEFT").Optional(),
				parser.OneOf(parser.Keyword("SEMI"), parser.Keyword("ANTI")),
			),
		).Optional()).
		Replace("AccessorGrammar", parser.AnyNumberOf(
			parser.Ref("ArrayAccessorSegment"),
			parser.Ref("SemiStructuredAccessorSegment"),
		)).
		Replace("FunctionContentsExpressionGrammar", parser.OneOf(
			parser.Ref("NamedArgumentSegment"),
			parser.Ref("ExpressionSegment"),
		)).
		Grammars(map[string]parser.Matcher{
			"RightArrowSegment": parser.StringParser("=>", syntax.RightArrow),
			"NamedArgumentSegment": parser.NodeMatcher(NamedArgument, parser.Sequence(
				parser.Ref("NakedIdentifierSegment"),
				parser.Ref("RightArrowSegment"),
				parser.Ref("ExpressionSegment"),
			)),
			// col:a.b[0].c
			"SemiStructuredAccessorSegment": parser.NodeMatcher(syntax.SemiStructuredExpression, parser.Sequence(
				parser.Ref("ColonSegment"),
				parser.OneOf(
					parser.Ref("NakedIdentifierSegment"),
					parser.Ref("QuotedIdentifierSegment"),
					parser.Ref("ArrayAccessorSegment"),
				),
				parser.AnyNumberOf(parser.OneOf(
					parser.Sequence(
						parser.Ref("DotSegment"),
						parser.OneOf(parser.Ref("NakedIdentifierSegment"), parser.Ref("QuotedIdentifierSegment")),
					).DisallowGaps(),
					parser.Ref("ArrayAccessorSegment"),
				)),
			).DisallowGaps()),
			"ShowStatementSegment": parser.NodeMatcher(syntax.ShowStatement, parser.Sequence(
				parser.Keyword("SHOW"),
				parser.OneOf(
					parser.Ref("ShowTablesGrammar"),
					parser.Ref("ShowViewsGrammar"),
					parser.Sequence(
						parser.OneOf(parser.Keyword("SCHEMAS"), parser.Keyword("DATABASES")),
						parser.Ref("ShowLikeGrammar").Optional(),
					),
					parser.Sequence(
						parser.Keyword("COLUMNS"),
						parser.OneOf(parser.Keyword("FROM"), parser.Keyword("IN")),
						parser.Ref("TableReferenceSegment"),
						parser.Ref("ShowFromGrammar").Optional(),
					),
					parser.Sequence(
						parser.Keyword("FUNCTIONS"),
						parser.Ref("ShowLikeGrammar").Optional(),
					),
				),
			)),
			"ShowFromGrammar": parser.Sequence(
				parser.OneOf(parser.Keyword("FROM"), parser.Keyword("IN")),
				parser.Ref("SchemaReferenceSegment"),
			),
			"ShowLikeGrammar": parser.Sequence(
				parser.Keyword("LIKE").Optional(),
				parser.Ref("QuotedLiteralSegment"),
			),
			"ShowTablesGrammar": parser.Sequence(
				parser.Keyword("TABLES"),
				parser.Ref("ShowFromGrammar").Optional(),
				parser.Ref("ShowLikeGrammar").Optional(),
			),
			// LIKE is optional here, unlike SHOW TABLES EXTENDED.
			"ShowViewsGrammar": parser.Sequence(
				parser.Keyword("VIEWS"),
				parser.Ref("ShowFromGrammar").Optional(),
				parser.Ref("ShowLikeGrammar").Optional(),
			),
		}).
		ReplaceNode("LimitClauseSegment", parser.Sequence(
			parser.Keyword("LIMIT"),
			parser.Indent,
			parser.OneOf(
				parser.Keyword("ALL"),
				parser.OptionallyBracketed(parser.OneOf(
					parser.Ref("NumericLiteralSegment"),
					parser.Ref("ExpressionSegment"),
				)),
			),
			parser.Sequence(
				parser.Keyword("OFFSET"),
				parser.OneOf(parser.Ref("NumericLiteralSegment"), parser.Ref("ExpressionSegment")),
			).Optional(),
			parser.Dedent,
		)).
		ReplaceNode("StatementSegment", parser.OneOf(
			parser.Ref("SelectableGrammar"),
			parser.Ref("InsertStatementSegment"),
			parser.Ref("UpdateStatementSegment"),
			parser.Ref("DeleteStatementSegment"),
			parser.Ref("TransactionStatementSegment"),
			parser.Ref("DropTableStatementSegment"),
			parser.Ref("DropViewStatementSegment"),
			parser.Ref("DropSchemaStatementSegment"),
			parser.Ref("TruncateStatementSegment"),
			parser.Ref("CreateTableStatementSegment"),
			parser.Ref("CreateViewStatementSegment"),
			parser.Ref("CreateSchemaStatementSegment"),
			parser.Ref("ShowStatementSegment"),
		).Terminators(parser.Ref("DelimiterGrammar")))
}

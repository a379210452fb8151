// Package trino is the Trino dialect, derived from ANSI.
package trino

import (
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/dialects/ansi"
	"github.com/leapstack-labs/sqlgrain/pkg/lexer"
	"github.com/leapstack-labs/sqlgrain/pkg/parser"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// Name is the registry name of the dialect.
const Name = "trino"

// Kinds only Trino produces.
var (
	AnalyzeStatement      = syntax.Register("analyze_statement")
	CommentStatement      = syntax.Register("comment_statement")
	WithinGroupClause     = syntax.Register("withingroup_clause")
	ListaggOverflowClause = syntax.Register("listagg_overflow_clause")
	MapType               = syntax.Register("map_type")
	RowType               = syntax.Register("row_type")
)

func init() {
	dialect.Register(Name, func() *dialect.Dialect { return Builder().Build() })
}

// Builder returns an unexpanded Trino builder.
func Builder() *dialect.Builder {
	b := dialect.Derive(ansi.Base().Dialect(), Name).
		InsertLexer("equals", lexer.NewStringLexer("right_arrow", "->", syntax.RightArrow)).
		Keywords(dialect.BareFunctions, "localtime", "localtimestamp")
	b = keywords(b).
		Replace("DateTimeLiteralGrammar", parser.OneOf(
			parser.Sequence(
				parser.OneOf(parser.Keyword("DATE"), parser.Keyword("TIME"), parser.Keyword("TIMESTAMP")),
				parser.TypedParser(syntax.SingleQuote, syntax.DateConstructorLiteral),
			),
			parser.Ref("IntervalExpressionSegment"),
		)).
		Replace("LikeGrammar", parser.OneOf(parser.Keyword("LIKE"))).
		Replace("FunctionContentsExpressionGrammar", parser.OneOf(
			parser.Ref("LambdaFunctionSegment"),
			parser.Ref("ExpressionSegment"),
		)).
		Replace("FunctionContentsGrammar", ansi.FunctionContents(
			parser.Ref("ListaggOverflowClauseSegment"),
		)).
		Replace("PostFunctionGrammar", parser.OneOf(
			parser.Ref("OverClauseSegment"),
			parser.Ref("FilterClauseGrammar"),
			parser.Sequence(
				parser.Ref("WithinGroupClauseSegment"),
				parser.Ref("FilterClauseGrammar").Optional(),
			),
		)).
		Replace("ArrayExpressionSegment", parser.NodeMatcher(syntax.TypedArrayLiteral, parser.Sequence(
			parser.Keyword("ARRAY"),
			parser.Ref("ArrayLiteralSegment"),
		))).
		Replace("ArrayTypeSegment", parser.NodeMatcher(syntax.ArrayType, parser.Sequence(
			parser.Keyword("ARRAY"),
			parser.Bracketed(parser.Ref("DatatypeSegment")),
		))).
		Grammars(map[string]parser.Matcher{
			"RightArrowSegment": parser.StringParser("->", syntax.RightArrow),
			"LambdaFunctionSegment": parser.NodeMatcher(syntax.LambdaFunction, parser.Sequence(
				parser.OneOf(
					parser.Ref("ParameterNameSegment"),
					parser.Bracketed(parser.Delimited(parser.Ref("ParameterNameSegment"))),
				),
				parser.Ref("RightArrowSegment"),
				parser.Ref("ExpressionSegment"),
			)),
			"WithinGroupClauseSegment": parser.NodeMatcher(WithinGroupClause, parser.Sequence(
				parser.Keyword("WITHIN"),
				parser.Keyword("GROUP"),
				parser.Bracketed(parser.Ref("OrderByClauseSegment").Optional()).Mode(parser.Greedy),
			)),
			"ListaggOverflowClauseSegment": parser.NodeMatcher(ListaggOverflowClause, parser.Sequence(
				parser.Keyword("ON"),
				parser.Keyword("OVERFLOW"),
				parser.OneOf(
					parser.Keyword("ERROR"),
					parser.Sequence(
						parser.Keyword("TRUNCATE"),
						parser.Ref("QuotedLiteralSegment").Optional(),
						parser.OneOf(parser.Keyword("WITH"), parser.Keyword("WITHOUT")),
						parser.Keyword("COUNT"),
					),
				),
			)),
			"OffsetClauseSegment": parser.NodeMatcher(syntax.OffsetClause, parser.Sequence(
				parser.Keyword("OFFSET"),
				parser.Indent,
				parser.Ref("NumericLiteralSegment"),
				parser.OneOf(parser.Keyword("ROW"), parser.Keyword("ROWS")).Optional(),
				parser.Dedent,
			)),
			"AnalyzeStatementSegment": parser.NodeMatcher(AnalyzeStatement, parser.Sequence(
				parser.Keyword("ANALYZE"),
				parser.Ref("TableReferenceSegment"),
				parser.Sequence(
					parser.Keyword("WITH"),
					parser.Bracketed(parser.Delimited(parser.Sequence(
						parser.Ref("ParameterNameSegment"),
						parser.Ref("EqualsSegment"),
						parser.Ref("ExpressionSegment"),
					))),
				).Optional(),
			)),
			"CommentOnStatementSegment": parser.NodeMatcher(CommentStatement, parser.Sequence(
				parser.Keyword("COMMENT"),
				parser.Keyword("ON"),
				parser.OneOf(parser.Keyword("TABLE"), parser.Keyword("VIEW"), parser.Keyword("COLUMN")),
				parser.Ref("ObjectReferenceSegment"),
				parser.Keyword("IS"),
				parser.OneOf(parser.Ref("QuotedLiteralSegment"), parser.Keyword("NULL")),
			)),
		})
	for name, g := range terminators() {
		b.Replace(name, g)
	}

	return b.
		ReplaceNode("DatatypeSegment", datatype()).
		ReplaceNode("IntervalExpressionSegment", parser.Sequence(
			parser.Keyword("INTERVAL"),
			parser.Ref("SignedSegmentGrammar").Optional(),
			parser.Ref("QuotedLiteralSegment"),
			intervalUnit(),
			parser.Sequence(parser.Keyword("TO"), intervalUnit()).Optional(),
		)).
		ReplaceNode("ValuesClauseSegment", parser.Sequence(
			parser.Keyword("VALUES"),
			parser.Delimited(parser.Ref("ExpressionSegment")),
		)).
		ReplaceNode("SetOperatorSegment", parser.OneOf(
			parser.Ref("UnionGrammar"),
			parser.Sequence(
				parser.OneOf(parser.Keyword("INTERSECT"), parser.Keyword("EXCEPT")),
				parser.Keyword("ALL").Optional(),
			),
		).Exclude(parser.Sequence(parser.Keyword("EXCEPT"), parser.Bracketed(parser.Anything())))).
		ReplaceNode("SelectStatementSegment", parser.Sequence(
			parser.Ref("SelectClauseSegment"),
			parser.Dedent,
			parser.Ref("FromClauseSegment").Optional(),
			parser.Ref("WhereClauseSegment").Optional(),
			parser.Ref("GroupByClauseSegment").Optional(),
			parser.Ref("HavingClauseSegment").Optional(),
			parser.Ref("NamedWindowSegment").Optional(),
			parser.Ref("OrderByClauseSegment").Optional(),
			parser.Ref("OffsetClauseSegment").Optional(),
			parser.Ref("LimitClauseSegment").Optional(),
			parser.Ref("FetchClauseSegment").Optional(),
		).Terminators(parser.Ref("SetOperatorSegment")).Mode(parser.GreedyOnceStarted)).
		ReplaceNode("UnorderedSelectStatementSegment", parser.Sequence(
			parser.Ref("SelectClauseSegment"),
			parser.Dedent,
			parser.Ref("FromClauseSegment").Optional(),
			parser.Ref("WhereClauseSegment").Optional(),
			parser.Ref("GroupByClauseSegment").Optional(),
			parser.Ref("HavingClauseSegment").Optional(),
			parser.Ref("NamedWindowSegment").Optional(),
		).Terminators(
			parser.Ref("SetOperatorSegment"),
			parser.Ref("OrderByClauseSegment"),
			parser.Ref("OffsetClauseSegment"),
			parser.Ref("LimitClauseSegment"),
		).Mode(parser.GreedyOnceStarted)).
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
			parser.Ref("AnalyzeStatementSegment"),
			parser.Ref("CommentOnStatementSegment"),
		).Terminators(parser.Ref("DelimiterGrammar")))
}

// keywords swaps the ANSI sets for Trino's: words Trino does not reserve
// move to the unreserved set so the ANSI grammars still resolve.
func keywords(b *dialect.Builder) *dialect.Builder {
	d := b.Dialect()
	reserved := make(map[string]bool)
	for _, w := range strings.Split(reservedKeywords, "\n") {
		reserved[w] = true
	}
	var demoted []string
	for _, w := range d.Sets(dialect.ReservedKeywords) {
		if !reserved[w] {
			demoted = append(demoted, w)
		}
	}
	return b.
		RemoveKeywords(dialect.ReservedKeywords, demoted...).
		Keywords(dialect.UnreservedKeywords, demoted...).
		RemoveKeywords(dialect.UnreservedKeywords, strings.Split(reservedKeywords, "\n")...).
		KeywordsFromString(dialect.ReservedKeywords, reservedKeywords).
		KeywordsFromString(dialect.UnreservedKeywords, unreservedKeywords)
}

func intervalUnit() parser.Matcher {
	return parser.OneOf(
		parser.Keyword("YEAR"),
		parser.Keyword("MONTH"),
		parser.Keyword("DAY"),
		parser.Keyword("HOUR"),
		parser.Keyword("MINUTE"),
		parser.Keyword("SECOND"),
	)
}

func datatype() parser.Matcher {
	return parser.OneOf(
		parser.Keyword("BOOLEAN"),
		parser.Keyword("TINYINT"),
		parser.Keyword("SMALLINT"),
		parser.Keyword("INTEGER"),
		parser.Keyword("INT"),
		parser.Keyword("BIGINT"),
		parser.Keyword("REAL"),
		parser.Keywords("DOUBLE", "PRECISION"),
		parser.Keyword("DOUBLE"),
		parser.Sequence(
			parser.OneOf(parser.Keyword("DECIMAL"), parser.Keyword("NUMERIC")),
			parser.Ref("BracketedArguments").Optional(),
		),
		parser.Sequence(
			parser.OneOf(parser.Keyword("CHAR"), parser.Keyword("VARCHAR")),
			parser.Ref("BracketedArguments").Optional(),
		),
		parser.Keyword("VARBINARY"),
		parser.Keyword("JSON"),
		parser.Keyword("DATE"),
		parser.Sequence(
			parser.OneOf(parser.Keyword("TIME"), parser.Keyword("TIMESTAMP")),
			parser.Bracketed(parser.Ref("NumericLiteralSegment")).Optional(),
			parser.Sequence(
				parser.OneOf(parser.Keyword("WITH"), parser.Keyword("WITHOUT")),
				parser.Keyword("TIME"),
				parser.Keyword("ZONE"),
			).Optional(),
		),
		parser.Ref("ArrayTypeSegment"),
		parser.NodeMatcher(MapType, parser.Sequence(
			parser.Keyword("MAP"),
			parser.Bracketed(parser.Delimited(parser.Ref("DatatypeSegment"))),
		)),
		parser.NodeMatcher(RowType, parser.Sequence(
			parser.Keyword("ROW"),
			parser.Bracketed(parser.Delimited(parser.OneOf(
				parser.Sequence(parser.Ref("SingleIdentifierGrammar"), parser.Ref("DatatypeSegment")),
				parser.Ref("DatatypeSegment"),
			))),
		)),
		parser.Keyword("IPADDRESS"),
		parser.Keyword("UUID"),
	)
}

// Trino has no QUALIFY, and OFFSET may precede LIMIT.
func terminators() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"SelectClauseTerminatorGrammar": parser.OneOf(
			parser.Keyword("FROM"),
			parser.Keyword("WHERE"),
			parser.Keywords("ORDER", "BY"),
			parser.Keyword("OFFSET"),
			parser.Keyword("LIMIT"),
			parser.Ref("SetOperatorSegment"),
			parser.Keyword("FETCH"),
		),
		"FromClauseTerminatorGrammar": parser.OneOf(
			parser.Keyword("WHERE"),
			parser.Keywords("GROUP", "BY"),
			parser.Keywords("ORDER", "BY"),
			parser.Keyword("HAVING"),
			parser.Keyword("WINDOW"),
			parser.Keyword("OFFSET"),
			parser.Keyword("LIMIT"),
			parser.Ref("SetOperatorSegment"),
			parser.Keyword("FETCH"),
		),
		"WhereClauseTerminatorGrammar": parser.OneOf(
			parser.Keywords("GROUP", "BY"),
			parser.Keywords("ORDER", "BY"),
			parser.Keyword("HAVING"),
			parser.Keyword("WINDOW"),
			parser.Keyword("OFFSET"),
			parser.Keyword("LIMIT"),
			parser.Keyword("FETCH"),
		),
		"GroupByClauseTerminatorGrammar": parser.OneOf(
			parser.Keywords("ORDER", "BY"),
			parser.Keyword("HAVING"),
			parser.Keyword("WINDOW"),
			parser.Keyword("OFFSET"),
			parser.Keyword("LIMIT"),
			parser.Keyword("FETCH"),
		),
		"HavingClauseTerminatorGrammar": parser.OneOf(
			parser.Keywords("ORDER", "BY"),
			parser.Keyword("WINDOW"),
			parser.Keyword("OFFSET"),
			parser.Keyword("LIMIT"),
			parser.Keyword("FETCH"),
		),
		"OrderByClauseTerminators": parser.OneOf(
			parser.Keyword("OFFSET"),
			parser.Keyword("LIMIT"),
			parser.Keyword("HAVING"),
			parser.Keyword("WINDOW"),
			parser.Ref("FrameClauseUnitGrammar"),
			parser.Keyword("FETCH"),
		),
	}
}

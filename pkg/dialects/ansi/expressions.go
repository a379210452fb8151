package ansi

import (
	"github.com/leapstack-labs/sqlgrain/pkg/parser"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// Expressions are layered A to D, loosest binding first. A holds the
// boolean and predicate forms, B the comparisons, C casts and EXISTS, and D
// the operands themselves.
func expressions() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"ExpressionSegment": parser.NodeMatcher(syntax.Expression, parser.Ref("Expression_A_Grammar")),

		"Expression_A_Unary_Operator_Grammar": parser.OneOf(
			parser.Ref("SignedSegmentGrammar").Exclude(parser.Sequence(parser.Ref("QualifiedNumericLiteralSegment"))),
			parser.Ref("TildeSegment"),
			parser.Ref("NotOperatorGrammar"),
		),
		"Tail_Recurse_Expression_A_Grammar": parser.Sequence(
			parser.AnyNumberOf(parser.Ref("Expression_A_Unary_Operator_Grammar")).
				Terminators(parser.Ref("BinaryOperatorGrammar")),
			parser.Ref("Expression_C_Grammar"),
		),
		"Expression_A_Grammar": parser.Sequence(
			parser.Ref("Tail_Recurse_Expression_A_Grammar"),
			parser.AnyNumberOf(parser.OneOf(
				parser.Sequence(
					parser.Sequence(parser.Keyword("NOT").Optional(), parser.Ref("LikeGrammar")),
					parser.Ref("Expression_A_Grammar"),
					parser.Sequence(
						parser.Keyword("ESCAPE"),
						parser.Ref("Tail_Recurse_Expression_A_Grammar"),
					).Optional(),
				),
				parser.Sequence(
					parser.Ref("BinaryOperatorGrammar"),
					parser.Ref("Tail_Recurse_Expression_A_Grammar"),
				),
				parser.Sequence(
					parser.Keyword("NOT").Optional(),
					parser.Keyword("IN"),
					parser.Bracketed(parser.OneOf(
						parser.Delimited(parser.Ref("Expression_A_Grammar")),
						parser.Ref("SelectableGrammar"),
					)).Mode(parser.Greedy),
				),
				parser.Sequence(
					parser.Keyword("NOT").Optional(),
					parser.Keyword("IN"),
					parser.Ref("FunctionSegment"),
				),
				parser.Sequence(
					parser.Keyword("IS"),
					parser.Keyword("NOT").Optional(),
					parser.Ref("IsClauseGrammar"),
				),
				parser.Ref("IsNullGrammar"),
				parser.Ref("NotNullGrammar"),
				parser.Ref("CollateGrammar"),
				parser.Sequence(
					parser.Keyword("NOT").Optional(),
					parser.Keyword("BETWEEN"),
					parser.Ref("Expression_B_Grammar"),
					parser.Keyword("AND"),
					parser.Ref("Tail_Recurse_Expression_A_Grammar"),
				),
			)),
		),

		"Expression_B_Unary_Operator_Grammar": parser.OneOf(
			parser.Ref("SignedSegmentGrammar").Exclude(parser.Sequence(parser.Ref("QualifiedNumericLiteralSegment"))),
			parser.Ref("TildeSegment"),
		),
		"Tail_Recurse_Expression_B_Grammar": parser.Sequence(
			parser.AnyNumberOf(parser.Ref("Expression_B_Unary_Operator_Grammar")),
			parser.Ref("Expression_C_Grammar"),
		),
		"Expression_B_Grammar": parser.Sequence(
			parser.Ref("Tail_Recurse_Expression_B_Grammar"),
			parser.AnyNumberOf(parser.Sequence(
				parser.OneOf(
					parser.Ref("ArithmeticBinaryOperatorGrammar"),
					parser.Ref("StringBinaryOperatorGrammar"),
					parser.Ref("ComparisonOperatorGrammar"),
				),
				parser.Ref("Tail_Recurse_Expression_B_Grammar"),
			)),
		),

		"Expression_C_Grammar": parser.OneOf(
			parser.Sequence(parser.Keyword("EXISTS"), parser.Bracketed(parser.Ref("SelectableGrammar"))),
			parser.Sequence(
				parser.OneOf(parser.Ref("Expression_D_Grammar"), parser.Ref("CaseExpressionSegment")),
				parser.Ref("TimeZoneGrammar").Optional(),
			),
			parser.Ref("ShorthandCastSegment"),
		).Terminators(parser.Ref("CommaSegment")),

		"Expression_D_Grammar": parser.Sequence(
			parser.OneOf(
				parser.Ref("BareFunctionSegment"),
				parser.Ref("FunctionSegment"),
				parser.Bracketed(parser.OneOf(
					parser.Ref("ExpressionSegment"),
					parser.Ref("SelectableGrammar"),
					parser.Delimited(
						parser.Ref("ColumnReferenceSegment"),
						parser.Ref("FunctionSegment"),
						parser.Ref("LiteralGrammar"),
						parser.Ref("LocalAliasSegment"),
					),
				)).Mode(parser.Greedy),
				parser.Ref("SelectStatementSegment"),
				parser.Ref("LiteralGrammar"),
				parser.Ref("IntervalExpressionSegment"),
				parser.Ref("ArrayExpressionSegment"),
				parser.Ref("ColumnReferenceSegment"),
				parser.Sequence(
					parser.Ref("SingleIdentifierGrammar"),
					parser.Ref("ObjectReferenceDelimiterGrammar"),
					parser.Ref("StarSegment"),
				),
				parser.Sequence(
					parser.Ref("DatatypeSegment"),
					parser.OneOf(
						parser.Ref("QuotedLiteralSegment"),
						parser.Ref("NumericLiteralSegment"),
						parser.Ref("BooleanLiteralGrammar"),
						parser.Ref("NullLiteralSegment"),
					),
				),
			).Terminators(parser.Ref("CommaSegment")),
			parser.Ref("AccessorGrammar").Optional(),
		),
		"AccessorGrammar": parser.AnyNumberOf(parser.Ref("ArrayAccessorSegment")),
		"ArrayAccessorSegment": parser.NodeMatcher(syntax.ArrayAccessor, parser.Bracketed(
			parser.Delimited(
				parser.OneOf(parser.Ref("NumericLiteralSegment"), parser.Ref("ExpressionSegment")),
			).Delimiter(parser.Ref("SliceSegment")),
		).BracketType("square").Mode(parser.Greedy)),

		// Hooks that derived dialects fill in.
		"ArrayExpressionSegment": parser.Nothing(),
		"LocalAliasSegment":      parser.Nothing(),
		"IsNullGrammar":          parser.Nothing(),
		"NotNullGrammar":         parser.Nothing(),
		"CollateGrammar":         parser.Nothing(),

		"TimeZoneGrammar": parser.AnyNumberOf(parser.Sequence(
			parser.Keyword("AT"), parser.Keyword("TIME"), parser.Keyword("ZONE"),
			parser.Ref("ExpressionSegment"),
		)).Min(1),
		"LikeGrammar": parser.OneOf(
			parser.Keyword("LIKE"),
			parser.Keyword("RLIKE"),
			parser.Keyword("ILIKE"),
		),
		"IsClauseGrammar": parser.OneOf(
			parser.Ref("NullLiteralSegment"),
			parser.Ref("BooleanLiteralGrammar"),
		),
		"InOperatorGrammar": parser.Sequence(
			parser.Keyword("NOT").Optional(),
			parser.Keyword("IN"),
			parser.Bracketed(parser.OneOf(
				parser.Delimited(parser.Ref("Expression_A_Grammar")),
				parser.Ref("SelectableGrammar"),
			)).Mode(parser.Greedy),
		),

		"ShorthandCastSegment": parser.NodeMatcher(syntax.CastExpression, parser.Sequence(
			parser.OneOf(parser.Ref("Expression_D_Grammar"), parser.Ref("CaseExpressionSegment")),
			parser.AnyNumberOf(parser.Sequence(
				parser.Ref("CastOperatorSegment"),
				parser.Ref("DatatypeSegment"),
				parser.Ref("TimeZoneGrammar").Optional(),
			)).Min(1),
		)),

		"IntervalExpressionSegment": parser.NodeMatcher(syntax.IntervalExpression, parser.Sequence(
			parser.Keyword("INTERVAL"),
			parser.OneOf(
				parser.Sequence(
					parser.Ref("NumericLiteralSegment"),
					parser.OneOf(parser.Ref("QuotedLiteralSegment"), parser.Ref("DatetimeUnitSegment")),
				),
				parser.Ref("QuotedLiteralSegment"),
			),
		)),

		"CaseExpressionSegment": parser.NodeMatcher(syntax.CaseExpression, parser.OneOf(
			parser.Sequence(
				parser.Keyword("CASE"),
				parser.ImplicitIndent,
				parser.AnyNumberOf(parser.Ref("WhenClauseSegment")).
					ResetTerminators().
					Terminators(parser.Keyword("ELSE"), parser.Keyword("END")),
				parser.Ref("ElseClauseSegment").Optional(),
				parser.Dedent,
				parser.Keyword("END"),
			),
			parser.Sequence(
				parser.Keyword("CASE"),
				parser.Ref("ExpressionSegment"),
				parser.ImplicitIndent,
				parser.AnyNumberOf(parser.Ref("WhenClauseSegment")).
					ResetTerminators().
					Terminators(parser.Keyword("ELSE"), parser.Keyword("END")),
				parser.Ref("ElseClauseSegment").Optional(),
				parser.Dedent,
				parser.Keyword("END"),
			),
		).Terminators(
			parser.Ref("ComparisonOperatorGrammar"),
			parser.Ref("CommaSegment"),
			parser.Ref("BinaryOperatorGrammar"),
		)),
		"WhenClauseSegment": parser.NodeMatcher(syntax.WhenClause, parser.Sequence(
			parser.Keyword("WHEN"),
			parser.Sequence(parser.ImplicitIndent, parser.Ref("ExpressionSegment"), parser.Dedent),
			parser.Conditional(parser.Indent, "indented_then", true),
			parser.Keyword("THEN"),
			parser.Conditional(parser.ImplicitIndent, "indented_then_contents", true),
			parser.Ref("ExpressionSegment"),
			parser.Conditional(parser.Dedent, "indented_then_contents", true),
			parser.Conditional(parser.Dedent, "indented_then", true),
		)),
		"ElseClauseSegment": parser.NodeMatcher(syntax.ElseClause, parser.Sequence(
			parser.Keyword("ELSE"),
			parser.ImplicitIndent,
			parser.Ref("ExpressionSegment"),
			parser.Dedent,
		)),
	}
}

func functions() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"FunctionNameSegment": parser.NodeMatcher(syntax.FunctionName, parser.Sequence(
			parser.AnyNumberOf(parser.Sequence(
				parser.Ref("SingleIdentifierGrammar"),
				parser.Ref("DotSegment"),
			)).Terminators(parser.Ref("StartBracketSegment")),
			parser.OneOf(
				parser.Ref("FunctionNameIdentifierSegment"),
				parser.Ref("QuotedIdentifierSegment"),
			),
		).Terminators(parser.Ref("StartBracketSegment")).DisallowGaps()),

		"FunctionSegment": parser.NodeMatcher(syntax.Function, parser.OneOf(
			parser.Sequence(
				parser.Sequence(
					parser.Ref("DatePartFunctionNameSegment"),
					parser.Bracketed(parser.Delimited(
						parser.Ref("DatetimeUnitSegment"),
						parser.Ref("FunctionContentsGrammar").Optional(),
					)).Mode(parser.Greedy),
				),
			),
			parser.Sequence(
				parser.Sequence(
					parser.Ref("FunctionNameSegment").Exclude(parser.OneOf(
						parser.Ref("DatePartFunctionNameSegment"),
						parser.Ref("ValuesClauseSegment"),
					)),
					parser.Bracketed(
						parser.Ref("FunctionContentsGrammar").Optional(),
					).Mode(parser.Greedy),
				),
				parser.Ref("PostFunctionGrammar").Optional(),
			),
		)),
		"DatePartFunctionNameSegment": parser.NodeMatcher(syntax.FunctionName,
			parser.StringParser("DATEADD", syntax.FunctionNameIdentifier)),

		"FunctionContentsExpressionGrammar": parser.Ref("ExpressionSegment"),
		"FunctionContentsGrammar": FunctionContents(),
		"TrimParametersGrammar": parser.OneOf(
			parser.Keyword("BOTH"),
			parser.Keyword("LEADING"),
			parser.Keyword("TRAILING"),
		),
		"PostFunctionGrammar": parser.OneOf(
			parser.Ref("OverClauseSegment"),
			parser.Ref("FilterClauseGrammar"),
		),
		"FilterClauseGrammar": parser.Sequence(
			parser.Keyword("FILTER"),
			parser.Bracketed(parser.Sequence(parser.Keyword("WHERE"), parser.Ref("ExpressionSegment"))),
		),
		"IgnoreRespectNullsGrammar": parser.Sequence(
			parser.OneOf(parser.Keyword("IGNORE"), parser.Keyword("RESPECT")),
			parser.Keyword("NULLS"),
		),

		"OverClauseSegment": parser.NodeMatcher(syntax.OverClause, parser.Sequence(
			parser.Indent,
			parser.Ref("IgnoreRespectNullsGrammar").Optional(),
			parser.Keyword("OVER"),
			parser.OneOf(
				parser.Ref("SingleIdentifierGrammar"),
				parser.Bracketed(parser.Ref("WindowSpecificationSegment").Optional()).Mode(parser.Greedy),
			),
			parser.Dedent,
		)),
		"WindowSpecificationSegment": parser.NodeMatcher(syntax.WindowSpecification, parser.Sequence(
			parser.Ref("SingleIdentifierGrammar").Optional().Exclude(parser.OneOf(
				parser.Keyword("PARTITION"),
				parser.Keyword("ORDER"),
				parser.Ref("FrameClauseUnitGrammar"),
			)),
			parser.Ref("PartitionClauseSegment").Optional(),
			parser.Ref("OrderByClauseSegment").Optional(),
			parser.Ref("FrameClauseSegment").Optional(),
		).Optional()),
		"PartitionClauseSegment": parser.NodeMatcher(syntax.PartitionbyClause, parser.Sequence(
			parser.Keyword("PARTITION"),
			parser.Keyword("BY"),
			parser.Indent,
			parser.OptionallyBracketed(parser.Delimited(parser.Ref("ExpressionSegment"))),
			parser.Dedent,
		)),
		"FrameClauseUnitGrammar": parser.OneOf(parser.Keyword("ROWS"), parser.Keyword("RANGE")),
		"FrameClauseSegment": parser.NodeMatcher(syntax.FrameClause, parser.Sequence(
			parser.Ref("FrameClauseUnitGrammar"),
			parser.OneOf(
				frameExtent(),
				parser.Sequence(parser.Keyword("BETWEEN"), frameExtent(), parser.Keyword("AND"), frameExtent()),
			),
		)),
	}
}

// FunctionContents is what may appear between the brackets of a function
// call. Dialects pass extra options, such as an overflow clause.
func FunctionContents(extra ...parser.Matcher) parser.Matcher {
	opts := []parser.Matcher{
		parser.Ref("ExpressionSegment"),
		parser.Sequence(
			parser.Ref("ExpressionSegment"),
			parser.Keyword("AS"),
			parser.Ref("DatatypeSegment"),
		),
		parser.Sequence(
			parser.Ref("TrimParametersGrammar"),
			parser.Ref("ExpressionSegment").Optional().Exclude(parser.Keyword("FROM")),
			parser.Keyword("FROM"),
			parser.Ref("ExpressionSegment"),
		),
		parser.Sequence(
			parser.OneOf(parser.Ref("DatetimeUnitSegment"), parser.Ref("ExpressionSegment")),
			parser.Keyword("FROM"),
			parser.Ref("ExpressionSegment"),
		),
		parser.Sequence(
			parser.Keyword("DISTINCT").Optional(),
			parser.OneOf(
				parser.Ref("StarSegment"),
				parser.Delimited(parser.Ref("FunctionContentsExpressionGrammar")),
			),
		),
		parser.Ref("OrderByClauseSegment"),
		parser.Ref("IgnoreRespectNullsGrammar"),
	}
	return parser.AnyNumberOf(append(opts, extra...)...)
}

func frameExtent() parser.Matcher {
	return parser.OneOf(
		parser.Keywords("CURRENT", "ROW"),
		parser.Sequence(
			parser.OneOf(
				parser.Ref("NumericLiteralSegment"),
				parser.Keyword("UNBOUNDED"),
				parser.Ref("IntervalExpressionSegment"),
			),
			parser.OneOf(parser.Keyword("PRECEDING"), parser.Keyword("FOLLOWING")),
		),
	)
}

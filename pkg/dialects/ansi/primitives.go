package ansi

import (
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/parser"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func punctuation() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"SemicolonSegment":          parser.StringParser(";", syntax.StatementTerminator),
		"ColonSegment":              parser.StringParser(":", syntax.Colon),
		"SliceSegment":              parser.StringParser(":", syntax.Slice),
		"ColonDelimiterSegment":     parser.StringParser(":", syntax.ColonDelimiter),
		"StartBracketSegment":       parser.StringParser("(", syntax.StartBracket),
		"EndBracketSegment":         parser.StringParser(")", syntax.EndBracket),
		"StartSquareBracketSegment": parser.StringParser("[", syntax.StartSquareBracket),
		"EndSquareBracketSegment":   parser.StringParser("]", syntax.EndSquareBracket),
		"StartCurlyBracketSegment":  parser.StringParser("{", syntax.StartCurlyBracket),
		"EndCurlyBracketSegment":    parser.StringParser("}", syntax.EndCurlyBracket),
		"CommaSegment":              parser.StringParser(",", syntax.Comma),
		"DotSegment":                parser.StringParser(".", syntax.Dot),
		"StarSegment":               parser.StringParser("*", syntax.Star),
		"TildeSegment":              parser.StringParser("~", syntax.Tilde),
		"ParameterSegment":          parser.StringParser("?", syntax.Parameter),
		"CastOperatorSegment":       parser.StringParser("::", syntax.CastingOperator),
		"PlusSegment":               parser.StringParser("+", syntax.BinaryOperator),
		"MinusSegment":              parser.StringParser("-", syntax.BinaryOperator),
		"PositiveSegment":           parser.StringParser("+", syntax.SignIndicator),
		"NegativeSegment":           parser.StringParser("-", syntax.SignIndicator),
		"DivideSegment":             parser.StringParser("/", syntax.BinaryOperator),
		"MultiplySegment":           parser.StringParser("*", syntax.BinaryOperator),
		"ModuloSegment":             parser.StringParser("%", syntax.BinaryOperator),
		"BitwiseXorSegment":         parser.StringParser("^", syntax.BinaryOperator),
		"AmpersandSegment":          parser.StringParser("&", syntax.Ampersand),
		"PipeSegment":               parser.StringParser("|", syntax.Pipe),
		"LikeOperatorSegment":       parser.TypedParser(syntax.LikeOperator, syntax.ComparisonOperator),
		"RawNotSegment":             parser.StringParser("!", syntax.RawComparisonOperator),
		"RawEqualsSegment":          parser.StringParser("=", syntax.RawComparisonOperator),
		"RawGreaterThanSegment":     parser.StringParser(">", syntax.RawComparisonOperator),
		"RawLessThanSegment":        parser.StringParser("<", syntax.RawComparisonOperator),
		"DelimiterGrammar":          parser.Ref("SemicolonSegment"),
	}
}

func operators() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"EqualsSegment":      parser.NodeMatcher(syntax.ComparisonOperator, parser.Ref("RawEqualsSegment")),
		"GreaterThanSegment": parser.NodeMatcher(syntax.ComparisonOperator, parser.Ref("RawGreaterThanSegment")),
		"LessThanSegment":    parser.NodeMatcher(syntax.ComparisonOperator, parser.Ref("RawLessThanSegment")),
		"GreaterThanOrEqualToSegment": parser.NodeMatcher(syntax.ComparisonOperator, parser.Sequence(
			parser.Ref("RawGreaterThanSegment"), parser.Ref("RawEqualsSegment"),
		).DisallowGaps()),
		"LessThanOrEqualToSegment": parser.NodeMatcher(syntax.ComparisonOperator, parser.Sequence(
			parser.Ref("RawLessThanSegment"), parser.Ref("RawEqualsSegment"),
		).DisallowGaps()),
		"NotEqualToSegment": parser.NodeMatcher(syntax.ComparisonOperator, parser.OneOf(
			parser.Sequence(parser.Ref("RawNotSegment"), parser.Ref("RawEqualsSegment")).DisallowGaps(),
			parser.Sequence(parser.Ref("RawLessThanSegment"), parser.Ref("RawGreaterThanSegment")).DisallowGaps(),
		)),
		"ConcatSegment": parser.NodeMatcher(syntax.BinaryOperator, parser.Sequence(
			parser.Ref("PipeSegment"), parser.Ref("PipeSegment"),
		).DisallowGaps()),
		"BitwiseAndSegment": parser.NodeMatcher(syntax.BinaryOperator, parser.Ref("AmpersandSegment")),
		"BitwiseOrSegment":  parser.NodeMatcher(syntax.BinaryOperator, parser.Ref("PipeSegment")),
		"BitwiseLShiftSegment": parser.NodeMatcher(syntax.BinaryOperator, parser.Sequence(
			parser.Ref("RawLessThanSegment"), parser.Ref("RawLessThanSegment"),
		).DisallowGaps()),
		"BitwiseRShiftSegment": parser.NodeMatcher(syntax.BinaryOperator, parser.Sequence(
			parser.Ref("RawGreaterThanSegment"), parser.Ref("RawGreaterThanSegment"),
		).DisallowGaps()),

		"ArithmeticBinaryOperatorGrammar": parser.OneOf(
			parser.Ref("PlusSegment"),
			parser.Ref("MinusSegment"),
			parser.Ref("DivideSegment"),
			parser.Ref("MultiplySegment"),
			parser.Ref("ModuloSegment"),
			parser.Ref("BitwiseAndSegment"),
			parser.Ref("BitwiseOrSegment"),
			parser.Ref("BitwiseXorSegment"),
			parser.Ref("BitwiseLShiftSegment"),
			parser.Ref("BitwiseRShiftSegment"),
		),
		"SignedSegmentGrammar":        parser.OneOf(parser.Ref("PositiveSegment"), parser.Ref("NegativeSegment")),
		"StringBinaryOperatorGrammar": parser.OneOf(parser.Ref("ConcatSegment")),
		"BooleanBinaryOperatorGrammar": parser.OneOf(
			parser.Ref("AndOperatorGrammar"),
			parser.Ref("OrOperatorGrammar"),
		),
		"AndOperatorGrammar": parser.StringParser("AND", syntax.BinaryOperator),
		"OrOperatorGrammar":  parser.StringParser("OR", syntax.BinaryOperator),
		"NotOperatorGrammar": parser.StringParser("NOT", syntax.Keyword),
		"ComparisonOperatorGrammar": parser.OneOf(
			parser.Ref("EqualsSegment"),
			parser.Ref("GreaterThanSegment"),
			parser.Ref("LessThanSegment"),
			parser.Ref("GreaterThanOrEqualToSegment"),
			parser.Ref("LessThanOrEqualToSegment"),
			parser.Ref("NotEqualToSegment"),
			parser.Ref("LikeOperatorSegment"),
			parser.Sequence(
				parser.Keyword("IS"), parser.Keyword("DISTINCT"), parser.Keyword("FROM"),
			),
			parser.Sequence(
				parser.Keyword("IS"), parser.Keyword("NOT"), parser.Keyword("DISTINCT"), parser.Keyword("FROM"),
			),
		),
		"BinaryOperatorGrammar": parser.OneOf(
			parser.Ref("ArithmeticBinaryOperatorGrammar"),
			parser.Ref("StringBinaryOperatorGrammar"),
			parser.Ref("BooleanBinaryOperatorGrammar"),
			parser.Ref("ComparisonOperatorGrammar"),
		),
	}
}

// anti builds the AntiTemplate alternation for a keyword set.
func anti(words []string) string {
	return "(" + strings.Join(words, "|") + ")$"
}

func identifiers(b *dialect.Builder) *dialect.Builder {
	return b.
		Generator("NakedIdentifierSegment", func(d *dialect.Dialect) parser.Matcher {
			return parser.RegexParser(`[A-Z0-9_]*[A-Z][A-Z0-9_]*`, syntax.NakedIdentifier).
				AntiTemplate(anti(d.Sets(dialect.ReservedKeywords)))
		}).
		Generator("DatetimeUnitSegment", func(d *dialect.Dialect) parser.Matcher {
			return parser.MultiStringParser(d.Sets(dialect.DatetimeUnits), syntax.DatetimeUnit)
		}).
		Generator("BareFunctionSegment", func(d *dialect.Dialect) parser.Matcher {
			return parser.MultiStringParser(d.Sets(dialect.BareFunctions), syntax.BareFunction)
		}).
		Grammars(map[string]parser.Matcher{
			"ParameterNameSegment":          parser.RegexParser(`"?[A-Z][A-Z0-9_]*"?`, syntax.Parameter),
			"FunctionNameIdentifierSegment": parser.TypedParser(syntax.Word, syntax.FunctionNameIdentifier),
			"DatatypeIdentifierSegment": parser.OneOf(
				parser.RegexParser(`[A-Z_][A-Z0-9_]*`, syntax.DataTypeIdentifier).AntiTemplate(`NOT$`),
				parser.Ref("SingleIdentifierGrammar").Exclude(parser.Ref("NakedIdentifierSegment")),
			),
			"QuotedIdentifierSegment":       parser.TypedParser(syntax.DoubleQuote, syntax.QuotedIdentifier),
			"SingleQuotedIdentifierSegment": parser.TypedParser(syntax.SingleQuote, syntax.QuotedIdentifier),
			"SingleIdentifierGrammar": parser.OneOf(
				parser.Ref("NakedIdentifierSegment"),
				parser.Ref("QuotedIdentifierSegment"),
			).Terminators(parser.Ref("DotSegment")),
			"ObjectReferenceDelimiterGrammar": parser.OneOf(
				parser.Ref("DotSegment"),
				parser.Sequence(parser.Ref("DotSegment"), parser.Ref("DotSegment")),
			),
			"ObjectReferenceTerminatorGrammar": parser.OneOf(
				parser.Keyword("ON"),
				parser.Keyword("AS"),
				parser.Keyword("USING"),
				parser.Ref("CommaSegment"),
				parser.Ref("CastOperatorSegment"),
				parser.Ref("StartSquareBracketSegment"),
				parser.Ref("StartBracketSegment"),
				parser.Ref("BinaryOperatorGrammar"),
				parser.Ref("ColonSegment"),
				parser.Ref("DelimiterGrammar"),
			),
			"ObjectReferenceSegment": parser.NodeMatcher(syntax.ObjectReference, objectReference()),
			"TableReferenceSegment":  parser.NodeMatcher(syntax.TableReference, objectReference()),
			"SchemaReferenceSegment": parser.NodeMatcher(syntax.SchemaReference, objectReference()),
			"ColumnReferenceSegment": parser.NodeMatcher(syntax.ColumnReference, parser.Delimited(
				parser.Ref("SingleIdentifierGrammar"),
			).Delimiter(parser.Ref("ObjectReferenceDelimiterGrammar")).
				DisallowGaps().
				Terminators(parser.Ref("ObjectReferenceTerminatorGrammar"))),
			"SingleIdentifierListSegment": parser.NodeMatcher(syntax.IdentifierList, parser.Delimited(
				parser.Ref("SingleIdentifierGrammar"),
			).Terminators(parser.Ref("EndBracketSegment"))),
			"WildcardIdentifierSegment": parser.NodeMatcher(syntax.WildcardIdentifier, parser.Sequence(
				parser.AnyNumberOf(parser.Sequence(
					parser.Ref("SingleIdentifierGrammar"),
					parser.Ref("ObjectReferenceDelimiterGrammar"),
				).DisallowGaps()),
				parser.Ref("StarSegment"),
			).DisallowGaps()),
			"WildcardExpressionSegment": parser.NodeMatcher(syntax.WildcardExpression, parser.Sequence(
				parser.Ref("WildcardIdentifierSegment"),
			)),
		})
}

func objectReference() parser.Matcher {
	return parser.Delimited(parser.Ref("SingleIdentifierGrammar")).
		Delimiter(parser.Ref("ObjectReferenceDelimiterGrammar")).
		DisallowGaps().
		Terminators(parser.Ref("ObjectReferenceTerminatorGrammar"))
}

func literals() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"QuotedLiteralSegment":  parser.TypedParser(syntax.SingleQuote, syntax.QuotedLiteral),
		"NumericLiteralSegment": parser.TypedParser(syntax.NumericLiteral, syntax.NumericLiteral),
		"NullLiteralSegment":    parser.StringParser("null", syntax.NullLiteral),
		"TrueSegment":           parser.StringParser("true", syntax.BooleanLiteral),
		"FalseSegment":          parser.StringParser("false", syntax.BooleanLiteral),
		"BooleanLiteralGrammar": parser.OneOf(parser.Ref("TrueSegment"), parser.Ref("FalseSegment")),
		"QualifiedNumericLiteralSegment": parser.NodeMatcher(syntax.NumericLiteral, parser.Sequence(
			parser.Ref("SignedSegmentGrammar"),
			parser.Ref("NumericLiteralSegment"),
		)),
		"DateTimeLiteralGrammar": parser.Sequence(
			parser.OneOf(
				parser.Keyword("DATE"),
				parser.Keyword("TIME"),
				parser.Keyword("TIMESTAMP"),
				parser.Keyword("INTERVAL"),
			),
			parser.TypedParser(syntax.SingleQuote, syntax.DateConstructorLiteral),
		),
		"ArrayLiteralSegment": parser.NodeMatcher(syntax.ArrayLiteral, parser.Bracketed(
			parser.Delimited(parser.Ref("BaseExpressionElementGrammar")).Optional(),
		).BracketType("square").Mode(parser.Greedy)),
		"LiteralGrammar": parser.OneOf(
			parser.Ref("QuotedLiteralSegment"),
			parser.Ref("NumericLiteralSegment"),
			parser.Ref("BooleanLiteralGrammar"),
			parser.Ref("QualifiedNumericLiteralSegment"),
			parser.Ref("NullLiteralSegment"),
			parser.Ref("DateTimeLiteralGrammar"),
			parser.Ref("ArrayLiteralSegment"),
			parser.Ref("ParameterSegment"),
		),
	}
}

package ansi

import (
	"github.com/leapstack-labs/sqlgrain/pkg/parser"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func selectables() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"SelectableGrammar": parser.OneOf(
			parser.OptionallyBracketed(parser.Ref("WithCompoundStatementSegment")),
			parser.Ref("NonWithSelectableGrammar"),
			parser.Bracketed(parser.Ref("SelectableGrammar")),
		),
		"NonWithSelectableGrammar": parser.OneOf(
			parser.Ref("SetExpressionSegment"),
			parser.OptionallyBracketed(parser.Ref("SelectStatementSegment")),
			parser.Ref("NonSetSelectableGrammar"),
		),
		"NonWithNonSelectableGrammar": parser.OneOf(
			parser.Ref("UpdateStatementSegment"),
			parser.Ref("InsertStatementSegment"),
			parser.Ref("DeleteStatementSegment"),
		),
		"NonSetSelectableGrammar": parser.OneOf(
			parser.Ref("ValuesClauseSegment"),
			parser.Ref("UnorderedSelectStatementSegment"),
			parser.Bracketed(parser.Ref("SelectStatementSegment")),
			parser.Bracketed(parser.Ref("NonSetSelectableGrammar")),
		),

		"UnorderedSelectStatementSegment": parser.NodeMatcher(syntax.SelectStatement, parser.Sequence(
			parser.Ref("SelectClauseSegment"),
			parser.Dedent,
			parser.Ref("FromClauseSegment").Optional(),
			parser.Ref("WhereClauseSegment").Optional(),
			parser.Ref("GroupByClauseSegment").Optional(),
			parser.Ref("HavingClauseSegment").Optional(),
			parser.Ref("QualifyClauseSegment").Optional(),
			parser.Ref("NamedWindowSegment").Optional(),
		).Terminators(
			parser.Ref("SetOperatorSegment"),
			parser.Ref("OrderByClauseSegment"),
			parser.Ref("LimitClauseSegment"),
		).Mode(parser.GreedyOnceStarted)),
		"SelectStatementSegment": parser.NodeMatcher(syntax.SelectStatement, parser.Sequence(
			parser.Ref("SelectClauseSegment"),
			parser.Dedent,
			parser.Ref("FromClauseSegment").Optional(),
			parser.Ref("WhereClauseSegment").Optional(),
			parser.Ref("GroupByClauseSegment").Optional(),
			parser.Ref("HavingClauseSegment").Optional(),
			parser.Ref("QualifyClauseSegment").Optional(),
			parser.Ref("NamedWindowSegment").Optional(),
			parser.Ref("OrderByClauseSegment").Optional(),
			parser.Ref("FetchClauseSegment").Optional(),
			parser.Ref("LimitClauseSegment").Optional(),
			parser.Ref("NamedWindowSegment").Optional(),
		).Terminators(parser.Ref("SetOperatorSegment")).Mode(parser.GreedyOnceStarted)),

		"SelectClauseSegment": parser.NodeMatcher(syntax.SelectClause, parser.Sequence(
			parser.Keyword("SELECT"),
			parser.Ref("SelectClauseModifierSegment").Optional(),
			parser.Indent,
			parser.Delimited(parser.Ref("SelectClauseElementSegment")).AllowTrailing(),
		).Terminators(parser.Ref("SelectClauseTerminatorGrammar")).Mode(parser.GreedyOnceStarted)),
		"SelectClauseModifierSegment": parser.NodeMatcher(syntax.SelectClauseModifier, parser.OneOf(
			parser.Keyword("DISTINCT"),
			parser.Keyword("ALL"),
		)),
		"SelectClauseElementSegment": parser.NodeMatcher(syntax.SelectClauseElement, parser.OneOf(
			parser.Ref("WildcardExpressionSegment"),
			parser.Sequence(
				parser.Ref("BaseExpressionElementGrammar"),
				parser.Ref("AliasExpressionSegment").Optional(),
			),
		)),
		"BaseExpressionElementGrammar": parser.OneOf(
			parser.Ref("LiteralGrammar"),
			parser.Ref("BareFunctionSegment"),
			parser.Ref("IntervalExpressionSegment"),
			parser.Ref("FunctionSegment"),
			parser.Ref("ColumnReferenceSegment"),
			parser.Ref("ExpressionSegment"),
			parser.Sequence(parser.Ref("DatatypeSegment"), parser.Ref("LiteralGrammar")),
		).Terminators(parser.Ref("CommaSegment"), parser.Keyword("AS")),
		"AliasExpressionSegment": parser.NodeMatcher(syntax.AliasExpression, parser.Sequence(
			parser.Indent,
			parser.Keyword("AS").Optional(),
			parser.OneOf(
				parser.Sequence(
					parser.Ref("SingleIdentifierGrammar"),
					parser.Bracketed(parser.Ref("SingleIdentifierListSegment")).Optional(),
				),
				parser.Ref("SingleQuotedIdentifierSegment"),
			),
			parser.Dedent,
		)),

		"SelectClauseTerminatorGrammar": parser.OneOf(
			parser.Keyword("FROM"),
			parser.Keyword("WHERE"),
			parser.Keywords("ORDER", "BY"),
			parser.Keyword("LIMIT"),
			parser.Ref("SetOperatorSegment"),
			parser.Keyword("FETCH"),
		),
		"FromClauseTerminatorGrammar": parser.OneOf(
			parser.Keyword("WHERE"),
			parser.Keyword("LIMIT"),
			parser.Keywords("GROUP", "BY"),
			parser.Keywords("ORDER", "BY"),
			parser.Keyword("HAVING"),
			parser.Keyword("QUALIFY"),
			parser.Keyword("WINDOW"),
			parser.Ref("SetOperatorSegment"),
			parser.Keyword("FETCH"),
		),
		"WhereClauseTerminatorGrammar": parser.OneOf(
			parser.Keyword("LIMIT"),
			parser.Keywords("GROUP", "BY"),
			parser.Keywords("ORDER", "BY"),
			parser.Keyword("HAVING"),
			parser.Keyword("QUALIFY"),
			parser.Keyword("WINDOW"),
			parser.Keyword("FETCH"),
		),
		"GroupByClauseTerminatorGrammar": parser.OneOf(
			parser.Keywords("ORDER", "BY"),
			parser.Keyword("LIMIT"),
			parser.Keyword("HAVING"),
			parser.Keyword("QUALIFY"),
			parser.Keyword("WINDOW"),
			parser.Keyword("FETCH"),
		),
		"HavingClauseTerminatorGrammar": parser.OneOf(
			parser.Keywords("ORDER", "BY"),
			parser.Keyword("LIMIT"),
			parser.Keyword("QUALIFY"),
			parser.Keyword("WINDOW"),
			parser.Keyword("FETCH"),
		),
		"OrderByClauseTerminators": parser.OneOf(
			parser.Keyword("LIMIT"),
			parser.Keyword("HAVING"),
			parser.Keyword("QUALIFY"),
			parser.Keyword("WINDOW"),
			parser.Ref("FrameClauseUnitGrammar"),
			parser.Keyword("SEPARATOR"),
			parser.Keyword("FETCH"),
		),
	}
}

func fromClause() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"FromClauseSegment": parser.NodeMatcher(syntax.FromClause, parser.Sequence(
			parser.Keyword("FROM"),
			parser.Delimited(parser.Ref("FromExpressionSegment")),
		)),
		"FromExpressionSegment": parser.NodeMatcher(syntax.FromExpression, parser.OptionallyBracketed(parser.Sequence(
			parser.Indent,
			parser.OneOf(
				parser.Ref("FromExpressionElementSegment"),
				parser.Bracketed(parser.Ref("FromExpressionSegment")),
			).Terminators(parser.Keywords("ORDER", "BY"), parser.Keywords("GROUP", "BY")),
			parser.Dedent,
			parser.Conditional(parser.Indent, "indented_joins", true),
			parser.AnyNumberOf(parser.Sequence(
				parser.OneOf(parser.Ref("JoinClauseSegment"), parser.Ref("JoinLikeClauseGrammar")),
			).Optional().Terminators(
				parser.Keywords("ORDER", "BY"),
				parser.Keywords("GROUP", "BY"),
			)),
			parser.Conditional(parser.Dedent, "indented_joins", true),
		))),
		"FromExpressionElementSegment": parser.NodeMatcher(syntax.FromExpressionElement, parser.Sequence(
			parser.Ref("PreTableFunctionKeywordsGrammar").Optional(),
			parser.OptionallyBracketed(parser.Ref("TableExpressionSegment")),
			parser.Ref("AliasExpressionSegment").Exclude(parser.OneOf(
				parser.Ref("FromClauseTerminatorGrammar"),
				parser.Ref("SamplingExpressionSegment"),
				parser.Ref("JoinLikeClauseGrammar"),
			)).Optional(),
			parser.Ref("SamplingExpressionSegment").Optional(),
			parser.Ref("PostTableExpressionGrammar").Optional(),
		)),
		"TableExpressionSegment": parser.NodeMatcher(syntax.TableExpression, parser.OneOf(
			parser.Ref("ValuesClauseSegment"),
			parser.Ref("BareFunctionSegment"),
			parser.Ref("FunctionSegment"),
			parser.Ref("TableReferenceSegment"),
			parser.Bracketed(parser.Ref("SelectableGrammar")),
		)),
		"SamplingExpressionSegment": parser.NodeMatcher(syntax.SamplingExpression, parser.Sequence(
			parser.Keyword("TABLESAMPLE"),
			parser.OneOf(parser.Keyword("BERNOULLI"), parser.Keyword("SYSTEM")),
			parser.Bracketed(parser.Ref("NumericLiteralSegment")),
			parser.Sequence(
				parser.Keyword("REPEATABLE"),
				parser.Bracketed(parser.Ref("NumericLiteralSegment")),
			).Optional(),
		)),

		"PreTableFunctionKeywordsGrammar":    parser.Nothing(),
		"PostTableExpressionGrammar":         parser.Nothing(),
		"JoinLikeClauseGrammar":              parser.Nothing(),
		"ExtendedNaturalJoinKeywordsGrammar": parser.Nothing(),
		"NestedJoinGrammar":                  parser.Nothing(),

		"JoinTypeKeywordsGrammar": parser.OneOf(
			parser.Keyword("CROSS"),
			parser.Keyword("INNER"),
			parser.Sequence(
				parser.OneOf(parser.Keyword("FULL"), parser.Keyword("LEFT"), parser.Keyword("RIGHT")),
				parser.Keyword("OUTER").Optional(),
			),
		).Optional(),
		"JoinKeywordsGrammar": parser.Sequence(parser.Keyword("JOIN")),
		"NaturalJoinKeywordsGrammar": parser.Sequence(
			parser.Keyword("NATURAL"),
			parser.OneOf(
				parser.Keyword("INNER"),
				parser.Sequence(
					parser.OneOf(parser.Keyword("LEFT"), parser.Keyword("RIGHT"), parser.Keyword("FULL")),
					parser.Keyword("OUTER").Optional(),
				),
			).Optional(),
		),
		"JoinClauseSegment": parser.NodeMatcher(syntax.JoinClause, parser.OneOf(
			parser.Sequence(
				parser.Ref("JoinTypeKeywordsGrammar").Optional(),
				parser.Ref("JoinKeywordsGrammar"),
				parser.Indent,
				parser.Sequence(
					parser.Ref("FromExpressionElementSegment"),
					parser.AnyNumberOf(parser.Ref("NestedJoinGrammar")),
					parser.Dedent,
					parser.Sequence(
						parser.Conditional(parser.Indent, "indented_using_on", true),
						parser.OneOf(
							parser.Ref("JoinOnConditionSegment"),
							parser.Sequence(
								parser.Keyword("USING"),
								parser.Indent,
								parser.Bracketed(parser.Delimited(parser.Ref("SingleIdentifierGrammar"))).
									Mode(parser.Greedy),
								parser.Dedent,
							),
						),
						parser.Conditional(parser.Dedent, "indented_using_on", true),
					).Optional(),
				),
			),
			parser.Sequence(
				parser.Ref("NaturalJoinKeywordsGrammar"),
				parser.Ref("JoinKeywordsGrammar"),
				parser.Indent,
				parser.Ref("FromExpressionElementSegment"),
				parser.Dedent,
			),
			parser.Sequence(
				parser.Ref("ExtendedNaturalJoinKeywordsGrammar"),
				parser.Indent,
				parser.Ref("FromExpressionElementSegment"),
				parser.Dedent,
			),
		)),
		"JoinOnConditionSegment": parser.NodeMatcher(syntax.JoinOnCondition, parser.Sequence(
			parser.Keyword("ON"),
			parser.Conditional(parser.ImplicitIndent, "indented_on_contents", true),
			parser.OptionallyBracketed(parser.Ref("ExpressionSegment")),
			parser.Conditional(parser.Dedent, "indented_on_contents", true),
		)),
	}
}

func clauses() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"WhereClauseSegment": parser.NodeMatcher(syntax.WhereClause, parser.Sequence(
			parser.Keyword("WHERE"),
			parser.ImplicitIndent,
			parser.OptionallyBracketed(parser.Ref("ExpressionSegment")),
			parser.Dedent,
		)),
		"GroupByClauseSegment": parser.NodeMatcher(syntax.GroupbyClause, parser.Sequence(
			parser.Keyword("GROUP"),
			parser.Keyword("BY"),
			parser.Indent,
			parser.Delimited(parser.OneOf(
				parser.Ref("ColumnReferenceSegment"),
				parser.Ref("NumericLiteralSegment"),
				parser.Ref("ExpressionSegment"),
			)).Terminators(parser.Ref("GroupByClauseTerminatorGrammar")),
			parser.Dedent,
		)),
		"HavingClauseSegment": parser.NodeMatcher(syntax.HavingClause, parser.Sequence(
			parser.Keyword("HAVING"),
			parser.ImplicitIndent,
			parser.OptionallyBracketed(parser.Ref("ExpressionSegment")),
			parser.Dedent,
		)),
		"QualifyClauseSegment": parser.Nothing(),
		"OrderByClauseSegment": parser.NodeMatcher(syntax.OrderbyClause, parser.Sequence(
			parser.Keyword("ORDER"),
			parser.Keyword("BY"),
			parser.Indent,
			parser.Delimited(parser.Sequence(
				parser.OneOf(
					parser.Ref("ColumnReferenceSegment"),
					parser.Ref("NumericLiteralSegment"),
					parser.Ref("ExpressionSegment"),
				),
				parser.OneOf(parser.Keyword("ASC"), parser.Keyword("DESC")).Optional(),
				parser.Sequence(
					parser.Keyword("NULLS"),
					parser.OneOf(parser.Keyword("FIRST"), parser.Keyword("LAST")),
				).Optional(),
			)).Terminators(parser.Ref("OrderByClauseTerminators")),
			parser.Dedent,
		)),
		"LimitClauseSegment": parser.NodeMatcher(syntax.LimitClause, parser.Sequence(
			parser.Keyword("LIMIT"),
			parser.Indent,
			parser.OptionallyBracketed(parser.OneOf(
				parser.Ref("NumericLiteralSegment"),
				parser.Ref("ExpressionSegment"),
			)),
			parser.OneOf(
				parser.Sequence(
					parser.Keyword("OFFSET"),
					parser.OneOf(parser.Ref("NumericLiteralSegment"), parser.Ref("ExpressionSegment")),
				),
				parser.Sequence(parser.Ref("CommaSegment"), parser.Ref("NumericLiteralSegment")),
			).Optional(),
			parser.Dedent,
		)),
		"FetchClauseSegment": parser.NodeMatcher(syntax.FetchClause, parser.Sequence(
			parser.Keyword("FETCH"),
			parser.OneOf(parser.Keyword("FIRST"), parser.Keyword("NEXT")),
			parser.Ref("NumericLiteralSegment").Optional(),
			parser.OneOf(parser.Keyword("ROW"), parser.Keyword("ROWS")),
			parser.Keyword("ONLY"),
		)),
		"NamedWindowSegment": parser.NodeMatcher(syntax.NamedWindow, parser.Sequence(
			parser.Keyword("WINDOW"),
			parser.Indent,
			parser.Delimited(parser.Ref("NamedWindowExpressionSegment")),
			parser.Dedent,
		)),
		"NamedWindowExpressionSegment": parser.NodeMatcher(syntax.NamedWindowExpression, parser.Sequence(
			parser.Ref("SingleIdentifierGrammar"),
			parser.Keyword("AS"),
			parser.OneOf(
				parser.Ref("SingleIdentifierGrammar"),
				parser.Bracketed(parser.Ref("WindowSpecificationSegment")).Mode(parser.Greedy),
			),
		)),

		"SetOperatorSegment": parser.NodeMatcher(syntax.SetOperator, parser.OneOf(
			parser.Ref("UnionGrammar"),
			parser.Sequence(
				parser.OneOf(parser.Keyword("INTERSECT"), parser.Keyword("EXCEPT")),
				parser.Keyword("ALL").Optional(),
			),
		)),
		"UnionGrammar": parser.Sequence(
			parser.Keyword("UNION"),
			parser.OneOf(parser.Keyword("DISTINCT"), parser.Keyword("ALL")).Optional(),
		),
		"SetExpressionSegment": parser.NodeMatcher(syntax.SetExpression, parser.Sequence(
			parser.Ref("NonSetSelectableGrammar"),
			parser.AnyNumberOf(parser.Sequence(
				parser.Ref("SetOperatorSegment"),
				parser.Ref("NonSetSelectableGrammar"),
			)).Min(1),
			parser.Ref("OrderByClauseSegment").Optional(),
			parser.Ref("LimitClauseSegment").Optional(),
		)),

		"ValuesClauseSegment": parser.NodeMatcher(syntax.ValuesClause, parser.Sequence(
			parser.OneOf(parser.Keyword("VALUE"), parser.Keyword("VALUES")),
			parser.Delimited(parser.Sequence(
				parser.Keyword("ROW").Optional(),
				parser.Bracketed(parser.Delimited(
					parser.Keyword("DEFAULT"),
					parser.Ref("LiteralGrammar"),
					parser.Ref("ExpressionSegment"),
				)).Mode(parser.Greedy),
			)),
		)),

		"WithCompoundStatementSegment": parser.NodeMatcher(syntax.WithCompoundStatement, parser.Sequence(
			parser.Keyword("WITH"),
			parser.Keyword("RECURSIVE").Optional(),
			parser.Conditional(parser.Indent, "indented_ctes", true),
			parser.Delimited(parser.Ref("CTEDefinitionSegment")).
				Terminators(parser.Keyword("SELECT")).
				AllowTrailing(),
			parser.Conditional(parser.Dedent, "indented_ctes", true),
			parser.OneOf(
				parser.Ref("NonWithSelectableGrammar"),
				parser.Ref("NonWithNonSelectableGrammar"),
			),
		)),
		"CTEDefinitionSegment": parser.NodeMatcher(syntax.CommonTableExpression, parser.Sequence(
			parser.Ref("SingleIdentifierGrammar"),
			parser.Ref("CTEColumnList").Optional(),
			parser.Keyword("AS").Optional(),
			parser.Bracketed(parser.Ref("SelectableGrammar")),
		)),
		"CTEColumnList": parser.NodeMatcher(syntax.CteColumnList, parser.Bracketed(
			parser.Ref("SingleIdentifierListSegment"),
		)),
	}
}

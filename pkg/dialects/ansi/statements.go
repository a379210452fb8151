package ansi

import (
	"github.com/leapstack-labs/sqlgrain/pkg/parser"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func datatypes() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"DatatypeSegment": parser.NodeMatcher(syntax.DataType, parser.OneOf(
			parser.Sequence(
				parser.OneOf(parser.Keyword("TIME"), parser.Keyword("TIMESTAMP")),
				parser.Bracketed(parser.Ref("NumericLiteralSegment")).Optional(),
				parser.Sequence(
					parser.OneOf(parser.Keyword("WITH"), parser.Keyword("WITHOUT")),
					parser.Keyword("TIME"),
					parser.Keyword("ZONE"),
				).Optional(),
			),
			parser.Keywords("DOUBLE", "PRECISION"),
			parser.Sequence(
				parser.OneOf(
					parser.Sequence(
						parser.OneOf(parser.Keyword("CHARACTER"), parser.Keyword("BINARY")),
						parser.OneOf(parser.Keyword("VARYING"), parser.Keywords("LARGE", "OBJECT")),
					),
					parser.Sequence(
						parser.Sequence(parser.Ref("SingleIdentifierGrammar"), parser.Ref("DotSegment")).Optional(),
						parser.Ref("DatatypeIdentifierSegment"),
					),
				),
				parser.Ref("BracketedArguments").Optional(),
				parser.Keyword("UNSIGNED").Optional(),
			),
			parser.Ref("ArrayTypeSegment"),
		)),
		"ArrayTypeSegment": parser.Nothing(),
		"BracketedArguments": parser.NodeMatcher(syntax.BracketedArguments, parser.Bracketed(
			parser.Delimited(parser.Ref("LiteralGrammar")).Optional(),
		)),
	}
}

func dml() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"InsertStatementSegment": parser.NodeMatcher(syntax.InsertStatement, parser.Sequence(
			parser.Keyword("INSERT"),
			parser.Keyword("OVERWRITE").Optional(),
			parser.Keyword("INTO"),
			parser.Ref("TableReferenceSegment"),
			parser.OneOf(
				parser.Ref("SelectableGrammar"),
				parser.Sequence(
					parser.Ref("BracketedColumnReferenceListGrammar"),
					parser.Ref("SelectableGrammar"),
				),
				parser.Ref("DefaultValuesGrammar"),
			),
		)),
		"BracketedColumnReferenceListGrammar": parser.Bracketed(
			parser.Delimited(parser.Ref("ColumnReferenceSegment")),
		),
		"DefaultValuesGrammar": parser.Keywords("DEFAULT", "VALUES"),

		"UpdateStatementSegment": parser.NodeMatcher(syntax.UpdateStatement, parser.Sequence(
			parser.Keyword("UPDATE"),
			parser.Ref("TableReferenceSegment"),
			parser.Ref("AliasExpressionSegment").Exclude(parser.Keyword("SET")).Optional(),
			parser.Ref("SetClauseListSegment"),
			parser.Ref("FromClauseSegment").Optional(),
			parser.Ref("WhereClauseSegment").Optional(),
		)),
		"SetClauseListSegment": parser.NodeMatcher(syntax.SetClauseList, parser.Sequence(
			parser.Keyword("SET"),
			parser.Indent,
			parser.Delimited(parser.Ref("SetClauseSegment")),
			parser.Dedent,
		)),
		"SetClauseSegment": parser.NodeMatcher(syntax.SetClause, parser.Sequence(
			parser.Ref("ColumnReferenceSegment"),
			parser.Ref("EqualsSegment"),
			parser.OneOf(
				parser.Ref("LiteralGrammar"),
				parser.Ref("BareFunctionSegment"),
				parser.Ref("FunctionSegment"),
				parser.Ref("ColumnReferenceSegment"),
				parser.Ref("ExpressionSegment"),
				parser.Keyword("DEFAULT"),
			),
		)),

		"DeleteStatementSegment": parser.NodeMatcher(syntax.DeleteStatement, parser.Sequence(
			parser.Keyword("DELETE"),
			parser.Ref("FromClauseSegment"),
			parser.Ref("WhereClauseSegment").Optional(),
		)),

		"TransactionStatementSegment": parser.NodeMatcher(syntax.TransactionStatement, parser.Sequence(
			parser.OneOf(
				parser.Keyword("START"),
				parser.Keyword("BEGIN"),
				parser.Keyword("COMMIT"),
				parser.Keyword("ROLLBACK"),
			),
			parser.OneOf(parser.Keyword("TRANSACTION"), parser.Keyword("WORK")).Optional(),
		)),
	}
}

func ddl() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"OrReplaceGrammar": parser.Keywords("OR", "REPLACE"),
		"TemporaryGrammar": parser.OneOf(parser.Keyword("TEMP"), parser.Keyword("TEMPORARY")),
		"TemporaryTransientGrammar": parser.OneOf(
			parser.Keyword("TRANSIENT"),
			parser.Ref("TemporaryGrammar"),
		),
		"IfExistsGrammar":    parser.Keywords("IF", "EXISTS"),
		"IfNotExistsGrammar": parser.Keywords("IF", "NOT", "EXISTS"),
		"DropBehaviorGrammar": parser.OneOf(
			parser.Keyword("RESTRICT"),
			parser.Keyword("CASCADE"),
		).Optional(),
		"PrimaryKeyGrammar": parser.Keywords("PRIMARY", "KEY"),
		"ForeignKeyGrammar": parser.Keywords("FOREIGN", "KEY"),
		"UniqueKeyGrammar":  parser.Sequence(parser.Keyword("UNIQUE")),
		"ReferentialActionGrammar": parser.OneOf(
			parser.Keyword("RESTRICT"),
			parser.Keyword("CASCADE"),
			parser.Keywords("SET", "NULL"),
			parser.Keywords("NO", "ACTION"),
			parser.Keywords("SET", "DEFAULT"),
		),
		"ReferenceDefinitionGrammar": parser.Sequence(
			parser.Keyword("REFERENCES"),
			parser.Ref("TableReferenceSegment"),
			parser.Ref("BracketedColumnReferenceListGrammar").Optional(),
			parser.Sequence(
				parser.Keyword("MATCH"),
				parser.OneOf(parser.Keyword("FULL"), parser.Keyword("PARTIAL"), parser.Keyword("SIMPLE")),
			).Optional(),
			parser.AnySetOf(
				parser.Sequence(
					parser.Keyword("ON"),
					parser.Keyword("DELETE"),
					parser.Ref("ReferentialActionGrammar"),
				),
				parser.Sequence(
					parser.Keyword("ON"),
					parser.Keyword("UPDATE"),
					parser.Ref("ReferentialActionGrammar"),
				),
			),
		),
		"ColumnConstraintDefaultGrammar": parser.OneOf(
			parser.Ref("ShorthandCastSegment"),
			parser.Ref("LiteralGrammar"),
			parser.Ref("FunctionSegment"),
			parser.Ref("BareFunctionSegment"),
		),

		"CreateTableStatementSegment": parser.NodeMatcher(syntax.CreateTableStatement, parser.Sequence(
			parser.Keyword("CREATE"),
			parser.Ref("OrReplaceGrammar").Optional(),
			parser.Ref("TemporaryTransientGrammar").Optional(),
			parser.Keyword("TABLE"),
			parser.Ref("IfNotExistsGrammar").Optional(),
			parser.Ref("TableReferenceSegment"),
			parser.OneOf(
				parser.Bracketed(parser.Delimited(parser.OneOf(
					parser.Ref("TableConstraintSegment"),
					parser.Ref("ColumnDefinitionSegment"),
				))),
				parser.Sequence(
					parser.Keyword("AS"),
					parser.OptionallyBracketed(parser.Ref("SelectableGrammar")),
				),
				parser.Sequence(parser.Keyword("LIKE"), parser.Ref("TableReferenceSegment")),
			),
		)),
		"ColumnDefinitionSegment": parser.NodeMatcher(syntax.ColumnDefinition, parser.Sequence(
			parser.Ref("SingleIdentifierGrammar"),
			parser.Ref("DatatypeSegment"),
			parser.Bracketed(parser.Anything()).Optional(),
			parser.AnyNumberOf(parser.Ref("ColumnConstraintSegment")),
		)),
		"ColumnConstraintSegment": parser.NodeMatcher(syntax.ColumnConstraintSegment, parser.Sequence(
			parser.Sequence(
				parser.Keyword("CONSTRAINT"),
				parser.Ref("ObjectReferenceSegment"),
			).Optional(),
			parser.OneOf(
				parser.Sequence(parser.Keyword("NOT").Optional(), parser.Keyword("NULL")),
				parser.Sequence(parser.Keyword("CHECK"), parser.Bracketed(parser.Ref("ExpressionSegment"))),
				parser.Sequence(parser.Keyword("DEFAULT"), parser.Ref("ColumnConstraintDefaultGrammar")),
				parser.Ref("PrimaryKeyGrammar"),
				parser.Ref("UniqueKeyGrammar"),
				parser.Ref("ReferenceDefinitionGrammar"),
			),
		)),
		"TableConstraintSegment": parser.NodeMatcher(syntax.TableConstraint, parser.Sequence(
			parser.Sequence(
				parser.Keyword("CONSTRAINT"),
				parser.Ref("ObjectReferenceSegment"),
			).Optional(),
			parser.OneOf(
				parser.Sequence(
					parser.Ref("UniqueKeyGrammar"),
					parser.Ref("BracketedColumnReferenceListGrammar"),
				),
				parser.Sequence(
					parser.Ref("PrimaryKeyGrammar"),
					parser.Ref("BracketedColumnReferenceListGrammar"),
				),
				parser.Sequence(
					parser.Ref("ForeignKeyGrammar"),
					parser.Ref("BracketedColumnReferenceListGrammar"),
					parser.Ref("ReferenceDefinitionGrammar"),
				),
			),
		)),
		"CreateViewStatementSegment": parser.NodeMatcher(syntax.CreateViewStatement, parser.Sequence(
			parser.Keyword("CREATE"),
			parser.Ref("OrReplaceGrammar").Optional(),
			parser.Keyword("VIEW"),
			parser.Ref("IfNotExistsGrammar").Optional(),
			parser.Ref("TableReferenceSegment"),
			parser.Ref("BracketedColumnReferenceListGrammar").Optional(),
			parser.Keyword("AS"),
			parser.OptionallyBracketed(parser.Ref("SelectableGrammar")),
		)),
		"CreateSchemaStatementSegment": parser.NodeMatcher(syntax.CreateSchemaStatement, parser.Sequence(
			parser.Keyword("CREATE"),
			parser.Keyword("SCHEMA"),
			parser.Ref("IfNotExistsGrammar").Optional(),
			parser.Ref("SchemaReferenceSegment"),
		)),
		"DropTableStatementSegment": parser.NodeMatcher(syntax.DropTableStatement, parser.Sequence(
			parser.Keyword("DROP"),
			parser.Ref("TemporaryGrammar").Optional(),
			parser.Keyword("TABLE"),
			parser.Ref("IfExistsGrammar").Optional(),
			parser.Delimited(parser.Ref("TableReferenceSegment")),
			parser.Ref("DropBehaviorGrammar").Optional(),
		)),
		"DropViewStatementSegment": parser.NodeMatcher(syntax.DropViewStatement, parser.Sequence(
			parser.Keyword("DROP"),
			parser.Keyword("VIEW"),
			parser.Ref("IfExistsGrammar").Optional(),
			parser.Ref("TableReferenceSegment"),
			parser.Ref("DropBehaviorGrammar").Optional(),
		)),
		"DropSchemaStatementSegment": parser.NodeMatcher(syntax.DropSchemaStatement, parser.Sequence(
			parser.Keyword("DROP"),
			parser.Keyword("SCHEMA"),
			parser.Ref("IfExistsGrammar").Optional(),
			parser.Ref("SchemaReferenceSegment"),
			parser.Ref("DropBehaviorGrammar").Optional(),
		)),
		"TruncateStatementSegment": parser.NodeMatcher(syntax.TruncateStatement, parser.Sequence(
			parser.Keyword("TRUNCATE"),
			parser.Keyword("TABLE").Optional(),
			parser.Ref("TableReferenceSegment"),
		)),
	}
}

func statements() map[string]parser.Matcher {
	return map[string]parser.Matcher{
		"StatementSegment": parser.NodeMatcher(syntax.Statement, parser.OneOf(
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
		).Terminators(parser.Ref("DelimiterGrammar"))),
		"FileSegment": parser.NodeMatcher(syntax.File, parser.Delimited(
			parser.Ref("StatementSegment"),
		).AllowTrailing().Delimiter(
			parser.AnyNumberOf(parser.Ref("DelimiterGrammar")).Min(1),
		)),
	}
}

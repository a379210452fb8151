// Package syntax defines the syntax kinds attached to every segment of a parse tree.
//
// Built-in kinds are constants so that switches stay cheap. Dialects that need
// kinds the core does not know about register them at init time via Register().
package syntax

import "fmt"

// Kind tags a segment with what it represents (keyword, select_clause, ...).
type Kind uint16

//nolint:revive // kind names mirror their snake_case rendering
const (
	Unknown Kind = iota

	// Core, dialect independent kinds.
	File
	Raw
	Code
	Word
	Symbol
	Whitespace
	Newline
	Comment
	InlineComment
	BlockComment
	Indent
	Dedent
	ImplicitIndent
	Placeholder
	EndOfFile
	Unlexable
	Unparsable
	Bracketed
	Keyword

	// Literals and lexed primitives.
	NumericLiteral
	QuotedLiteral
	BooleanLiteral
	NullLiteral
	Literal
	SingleQuote
	DoubleQuote
	BackQuote
	DollarQuote
	Comma
	Dot
	Star
	Colon
	ColonDelimiter
	Slice
	StatementTerminator
	Parameter
	CastingOperator
	LikeOperator
	RightArrow
	Tilde
	Ampersand
	Pipe
	Caret
	BinaryOperator
	ComparisonOperator
	RawComparisonOperator
	SignIndicator
	StartBracket
	EndBracket
	StartSquareBracket
	EndSquareBracket
	StartCurlyBracket
	EndCurlyBracket
	EqualsSign
	GreaterThan
	LessThan
	Not
	Percent
	Question
	Plus
	Minus
	Divide
	Semicolon
	BareFunction
	DateConstructorLiteral

	// Identifiers and references.
	Identifier
	NakedIdentifier
	QuotedIdentifier
	ObjectReference
	ColumnReference
	TableReference
	SchemaReference
	WildcardIdentifier
	WildcardExpression
	AliasExpression
	DataType
	DataTypeIdentifier
	ArrayType
	StructType
	BracketedArguments
	FunctionName
	FunctionNameIdentifier
	Function
	LambdaFunction
	IdentifierList
	NamedWindowExpression

	// Statements.
	Statement
	SelectStatement
	SetExpression
	SetOperator
	WithCompoundStatement
	CommonTableExpression
	CteColumnList
	ValuesClause
	InsertStatement
	UpdateStatement
	DeleteStatement
	CreateTableStatement
	CreateViewStatement
	CreateSchemaStatement
	DropTableStatement
	DropViewStatement
	DropSchemaStatement
	TruncateStatement
	ShowStatement
	ColumnDefinition
	ColumnConstraintSegment
	TableConstraint
	SetClauseList
	SetClause
	TransactionStatement

	// Clauses.
	SelectClause
	SelectClauseModifier
	SelectClauseElement
	FromClause
	FromExpression
	FromExpressionElement
	TableExpression
	JoinClause
	JoinOnCondition
	JoinKeywords
	UsingClause
	WhereClause
	GroupbyClause
	HavingClause
	OrderbyClause
	LimitClause
	OffsetClause
	FetchClause
	QualifyClause
	OverClause
	WindowSpecification
	PartitionbyClause
	FrameClause
	NamedWindow
	SamplingExpression

	// Expressions.
	Expression
	CaseExpression
	WhenClause
	ElseClause
	CastExpression
	ArrayLiteral
	ArrayAccessor
	IntervalExpression
	DatetimeUnit
	SemiStructuredExpression
	TypedArrayLiteral

	maxBuiltin
)

var builtinNames = [...]string{
	Unknown:                  "unknown",
	File:                     "file",
	Raw:                      "raw",
	Code:                     "code",
	Word:                     "word",
	Symbol:                   "symbol",
	Whitespace:               "whitespace",
	Newline:                  "newline",
	Comment:                  "comment",
	InlineComment:            "inline_comment",
	BlockComment:             "block_comment",
	Indent:                   "indent",
	Dedent:                   "dedent",
	ImplicitIndent:           "implicit_indent",
	Placeholder:              "placeholder",
	EndOfFile:                "end_of_file",
	Unlexable:                "unlexable",
	Unparsable:               "unparsable",
	Bracketed:                "bracketed",
	Keyword:                  "keyword",
	NumericLiteral:           "numeric_literal",
	QuotedLiteral:            "quoted_literal",
	BooleanLiteral:           "boolean_literal",
	NullLiteral:              "null_literal",
	Literal:                  "literal",
	SingleQuote:              "single_quote",
	DoubleQuote:              "double_quote",
	BackQuote:                "back_quote",
	DollarQuote:              "dollar_quote",
	Comma:                    "comma",
	Dot:                      "dot",
	Star:                     "star",
	Colon:                    "colon",
	ColonDelimiter:           "colon_delimiter",
	Slice:                    "slice",
	StatementTerminator:      "statement_terminator",
	Parameter:                "parameter",
	CastingOperator:          "casting_operator",
	LikeOperator:             "like_operator",
	RightArrow:               "right_arrow",
	Tilde:                    "tilde",
	Ampersand:                "ampersand",
	Pipe:                     "pipe",
	Caret:                    "caret",
	BinaryOperator:           "binary_operator",
	ComparisonOperator:       "comparison_operator",
	RawComparisonOperator:    "raw_comparison_operator",
	SignIndicator:            "sign_indicator",
	StartBracket:             "start_bracket",
	EndBracket:               "end_bracket",
	StartSquareBracket:       "start_square_bracket",
	EndSquareBracket:         "end_square_bracket",
	StartCurlyBracket:        "start_curly_bracket",
	EndCurlyBracket:          "end_curly_bracket",
	EqualsSign:               "equals",
	GreaterThan:              "greater_than",
	LessThan:                 "less_than",
	Not:                      "not",
	Percent:                  "percent",
	Question:                 "question",
	Plus:                     "plus",
	Minus:                    "minus",
	Divide:                   "divide",
	Semicolon:                "semicolon",
	BareFunction:             "bare_function",
	DateConstructorLiteral:   "date_constructor_literal",
	Identifier:               "identifier",
	NakedIdentifier:          "naked_identifier",
	QuotedIdentifier:         "quoted_identifier",
	ObjectReference:          "object_reference",
	ColumnReference:          "column_reference",
	TableReference:           "table_reference",
	SchemaReference:          "schema_reference",
	WildcardIdentifier:       "wildcard_identifier",
	WildcardExpression:       "wildcard_expression",
	AliasExpression:          "alias_expression",
	DataType:                 "data_type",
	DataTypeIdentifier:       "data_type_identifier",
	ArrayType:                "array_type",
	StructType:               "struct_type",
	BracketedArguments:       "bracketed_arguments",
	FunctionName:             "function_name",
	FunctionNameIdentifier:   "function_name_identifier",
	Function:                 "function",
	LambdaFunction:           "lambda_function",
	IdentifierList:           "identifier_list",
	NamedWindowExpression:    "named_window_expression",
	Statement:                "statement",
	SelectStatement:          "select_statement",
	SetExpression:            "set_expression",
	SetOperator:              "set_operator",
	WithCompoundStatement:    "with_compound_statement",
	CommonTableExpression:    "common_table_expression",
	CteColumnList:            "cte_column_list",
	ValuesClause:             "values_clause",
	InsertStatement:          "insert_statement",
	UpdateStatement:          "update_statement",
	DeleteStatement:          "delete_statement",
	CreateTableStatement:     "create_table_statement",
	CreateViewStatement:      "create_view_statement",
	CreateSchemaStatement:    "create_schema_statement",
	DropTableStatement:       "drop_table_statement",
	DropViewStatement:        "drop_view_statement",
	DropSchemaStatement:      "drop_schema_statement",
	TruncateStatement:        "truncate_table",
	ShowStatement:            "show_statement",
	ColumnDefinition:         "column_definition",
	ColumnConstraintSegment:  "column_constraint_segment",
	TableConstraint:          "table_constraint",
	SetClauseList:            "set_clause_list",
	SetClause:                "set_clause",
	TransactionStatement:     "transaction_statement",
	SelectClause:             "select_clause",
	SelectClauseModifier:     "select_clause_modifier",
	SelectClauseElement:      "select_clause_element",
	FromClause:               "from_clause",
	FromExpression:           "from_expression",
	FromExpressionElement:    "from_expression_element",
	TableExpression:          "table_expression",
	JoinClause:               "join_clause",
	JoinOnCondition:          "join_on_condition",
	JoinKeywords:             "join_keywords",
	UsingClause:              "using_clause",
	WhereClause:              "where_clause",
	GroupbyClause:            "groupby_clause",
	HavingClause:             "having_clause",
	OrderbyClause:            "orderby_clause",
	LimitClause:              "limit_clause",
	OffsetClause:             "offset_clause",
	FetchClause:              "fetch_clause",
	QualifyClause:            "qualify_clause",
	OverClause:               "over_clause",
	WindowSpecification:      "window_specification",
	PartitionbyClause:        "partitionby_clause",
	FrameClause:              "frame_clause",
	NamedWindow:              "named_window",
	SamplingExpression:       "sample_expression",
	Expression:               "expression",
	CaseExpression:           "case_expression",
	WhenClause:               "when_clause",
	ElseClause:               "else_clause",
	CastExpression:           "cast_expression",
	ArrayLiteral:             "array_literal",
	ArrayAccessor:            "array_accessor",
	IntervalExpression:       "interval_expression",
	DatetimeUnit:             "date_part",
	SemiStructuredExpression: "semi_structured_expression",
	TypedArrayLiteral:        "typed_array_literal",
}

// String returns the snake_case name used in parse output and rule configuration.
func (k Kind) String() string {
	if int(k) < len(builtinNames) && builtinNames[k] != "" {
		return builtinNames[k]
	}
	if name, ok := dynamicName(k); ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint16(k))
}

// IsDynamic returns true if the kind was registered at runtime by a dialect.
func (k Kind) IsDynamic() bool {
	return k > maxBuiltin
}

// IsMeta reports whether segments of this kind carry no source text of their own.
func (k Kind) IsMeta() bool {
	switch k {
	case Indent, Dedent, ImplicitIndent, Placeholder, EndOfFile:
		return true
	}
	return false
}

// IsWhitespace covers the kinds the layout rules treat as spacing.
func (k Kind) IsWhitespace() bool {
	return k == Whitespace || k == Newline
}

// IsComment covers every comment flavour.
func (k Kind) IsComment() bool {
	return k == Comment || k == InlineComment || k == BlockComment
}

// IsCode is false for whitespace, comments and metas.
func (k Kind) IsCode() bool {
	return !k.IsWhitespace() && !k.IsComment() && !k.IsMeta()
}

// ClassTypes returns the kinds a segment of this kind answers to in IsType checks.
// A column reference is also an object reference, a keyword in a join is still a keyword.
func (k Kind) ClassTypes() Set {
	s := NewSet(k)
	switch k {
	case ColumnReference, TableReference, SchemaReference, WildcardIdentifier:
		s.Add(ObjectReference)
	case InlineComment, BlockComment:
		s.Add(Comment)
	case NakedIdentifier, QuotedIdentifier:
		s.Add(Identifier)
	case NumericLiteral, QuotedLiteral, BooleanLiteral, NullLiteral, DateConstructorLiteral:
		s.Add(Literal)
	case ImplicitIndent:
		s.Add(Indent)
	case ComparisonOperator:
		s.Add(BinaryOperator)
	}
	return s
}

// Lookup resolves a kind from its snake_case name.
func Lookup(name string) (Kind, bool) {
	for i, n := range builtinNames {
		if n == name {
			return Kind(i), true
		}
	}
	return lookupDynamic(name)
}

// MustLookup is Lookup for static tables; it panics on unknown names.
func MustLookup(name string) Kind {
	k, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("syntax: unknown kind %q", name))
	}
	return k
}

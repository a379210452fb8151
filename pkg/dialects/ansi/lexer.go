package ansi

import (
	"github.com/leapstack-labs/sqlgrain/pkg/lexer"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// LexerMatchers returns the ANSI lexer table. Order matters: the first
// matcher that matches wins, so longer operators come before their prefixes.
func LexerMatchers() []lexer.Matcher {
	return []lexer.Matcher{
		lexer.NewRegexLexer("whitespace", `[^\S\r\n]+`, syntax.Whitespace),
		lexer.NewRegexLexer("inline_comment", `(--|#)[^\n]*`, syntax.InlineComment),
		lexer.NewRegexLexer("block_comment", `/\*([^*]|\*+[^*/])*\*+/`, syntax.BlockComment).
			Subdivider(lexer.NewPattern("newline", `\r\n|\n`, syntax.Newline)).
			PostSubdivide(lexer.NewPattern("whitespace", `[^\S\r\n]+`, syntax.Whitespace)),
		lexer.NewRegexLexer("single_quote", `'([^'\\]|\\.|'')*'`, syntax.SingleQuote),
		lexer.NewRegexLexer("double_quote", `"([^"\\]|\\.)*"`, syntax.DoubleQuote),
		lexer.NewRegexLexer("back_quote", "`[^`]*`", syntax.BackQuote),
		lexer.NewFuncLexer("dollar_quote", syntax.DollarQuote, lexer.ScanDollarQuote),
		lexer.NewFuncLexer("numeric_literal", syntax.NumericLiteral, lexer.ScanNumber),
		lexer.NewRegexLexer("like_operator", `!?~~?\*?`, syntax.LikeOperator),
		lexer.NewRegexLexer("newline", `\r\n|\n`, syntax.Newline),
		lexer.NewStringLexer("casting_operator", "::", syntax.CastingOperator),
		lexer.NewStringLexer("equals", "=", syntax.RawComparisonOperator),
		lexer.NewStringLexer("greater_than", ">", syntax.RawComparisonOperator),
		lexer.NewStringLexer("less_than", "<", syntax.RawComparisonOperator),
		lexer.NewStringLexer("not", "!", syntax.RawComparisonOperator),
		lexer.NewStringLexer("dot", ".", syntax.Dot),
		lexer.NewStringLexer("comma", ",", syntax.Comma),
		lexer.NewStringLexer("plus", "+", syntax.Plus),
		lexer.NewStringLexer("minus", "-", syntax.Minus),
		lexer.NewStringLexer("divide", "/", syntax.Divide),
		lexer.NewStringLexer("percent", "%", syntax.Percent),
		lexer.NewStringLexer("question", "?", syntax.Question),
		lexer.NewStringLexer("ampersand", "&", syntax.Ampersand),
		lexer.NewStringLexer("vertical_bar", "|", syntax.Pipe),
		lexer.NewStringLexer("caret", "^", syntax.Caret),
		lexer.NewStringLexer("star", "*", syntax.Star),
		lexer.NewStringLexer("start_bracket", "(", syntax.StartBracket),
		lexer.NewStringLexer("end_bracket", ")", syntax.EndBracket),
		lexer.NewStringLexer("start_square_bracket", "[", syntax.StartSquareBracket),
		lexer.NewStringLexer("end_square_bracket", "]", syntax.EndSquareBracket),
		lexer.NewStringLexer("start_curly_bracket", "{", syntax.StartCurlyBracket),
		lexer.NewStringLexer("end_curly_bracket", "}", syntax.EndCurlyBracket),
		lexer.NewStringLexer("colon", ":", syntax.Colon),
		lexer.NewStringLexer("semicolon", ";", syntax.Semicolon),
		lexer.NewRegexLexer("word", `[0-9a-zA-Z_]+`, syntax.Word),
	}
}

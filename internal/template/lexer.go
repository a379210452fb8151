package template

import (
	"strings"
	"unicode/utf8"
)

// TokenType is the kind of a template token.
type TokenType int

const (
	TokenText    TokenType = iota // literal SQL
	TokenExpr                     // {{ expr }}
	TokenStmt                     // {% stmt %}
	TokenComment                  // {# comment #}
	TokenEOF
)

var tokenTypeNames = [...]string{"TEXT", "EXPR", "STMT", "COMMENT", "EOF"}

func (t TokenType) String() string {
	if t < 0 || int(t) >= len(tokenTypeNames) {
		return "UNKNOWN"
	}
	return tokenTypeNames[t]
}

// Token represents a lexical token. Raw is the exact source text, delimiters
// included, and Offset its byte offset in the input.
type Token struct {
	Type   TokenType
	Value  string
	Raw    string
	Offset int
	Pos    Position

	// TrimBefore and TrimAfter record the "-" whitespace control markers,
	// as in {%- and -%}.
	TrimBefore bool
	TrimAfter  bool
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Raw)
}

type delimiters struct {
	open, close string
	typ         TokenType
	name        string
}

var tags = []delimiters{
	{open: "{{", close: "}}", typ: TokenExpr, name: "expression"},
	{open: "{%", close: "%}", typ: TokenStmt, name: "statement"},
	{open: "{#", close: "#}", typ: TokenComment, name: "comment"},
}

// Lexer splits a template into text and tag tokens.
type Lexer struct {
	input    string
	file     string
	pos      int
	line     int // 1-based, as col
	col      int
	lastLine int // start of the token being scanned
	lastCol  int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input, file string) *Lexer {
	return &Lexer{
		input: input,
		file:  file,
		line:  1,
		col:   1,
	}
}

// Tokenize converts the input into a slice of tokens ending with TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token

	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}

func (l *Lexer) nextToken() (Token, error) {
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Offset: l.pos, Pos: l.position()}, nil
	}
	if d, ok := l.openTag(); ok {
		return l.scanTag(d)
	}
	return l.scanText()
}

// openTag reports the tag whose opening delimiter starts at the cursor.
func (l *Lexer) openTag() (delimiters, bool) {
	rest := l.input[l.pos:]
	if len(rest) < 2 || rest[0] != '{' {
		return delimiters{}, false
	}
	for _, d := range tags {
		if rest[1] == d.open[1] {
			return d, true
		}
	}
	return delimiters{}, false
}

func (l *Lexer) scanText() (Token, error) {
	l.markStart()
	start := l.pos
	for l.pos < len(l.input) {
		if _, ok := l.openTag(); ok {
			break
		}
		l.advance()
	}

	if l.pos == start {
		return Token{}, NewLexError(l.position(), "unexpected state in lexer")
	}

	return Token{
		Type:   TokenText,
		Value:  l.input[start:l.pos],
		Raw:    l.input[start:l.pos],
		Offset: start,
		Pos:    l.startPosition(),
	}, nil
}

// scanTag scans one delimited tag. Braces and quotes are tracked outside
// comments so a closing delimiter inside a string or dict does not end it.
func (l *Lexer) scanTag(d delimiters) (Token, error) {
	l.markStart()
	start := l.pos
	l.skip(len(d.open))

	tok := Token{Type: d.typ, Offset: start}
	if l.matchString("-") {
		tok.TrimBefore = true
		l.skip(1)
	}
	contentStart := l.pos

	depth := 0
	var quote rune
	for l.pos < len(l.input) {
		if quote == 0 && depth == 0 {
			contentEnd := l.pos
			if l.matchString("-" + d.close) {
				tok.TrimAfter = true
				l.skip(len(d.close) + 1)
			} else if l.matchString(d.close) {
				l.skip(len(d.close))
			} else {
				contentEnd = -1
			}
			if contentEnd >= 0 {
				tok.Value = strings.TrimSpace(l.input[contentStart:contentEnd])
				tok.Raw = l.input[start:l.pos]
				tok.Pos = l.startPosition()
				return tok, nil
			}
		}

		r := l.peek()
		if d.typ != TokenComment {
			switch {
			case quote != 0:
				if r == '\\' {
					l.advance()
				} else if r == quote {
					quote = 0
				}
			case r == '"' || r == '\'':
				quote = r
			case r == '{':
				depth++
			case r == '}' && depth > 0:
				depth--
			}
		}
		l.advance()
	}

	return Token{}, NewLexErrorf(l.startPosition(), "unclosed %s: missing '%s'", d.name, d.close)
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// advance consumes one rune and keeps line and column current.
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) skip(n int) {
	for range n {
		l.advance()
	}
}

func (l *Lexer) matchString(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

func (l *Lexer) markStart() {
	l.lastLine = l.line
	l.lastCol = l.col
}

func (l *Lexer) position() Position {
	return Position{File: l.file, Line: l.line, Column: l.col}
}

func (l *Lexer) startPosition() Position {
	return Position{File: l.file, Line: l.lastLine, Column: l.lastCol}
}

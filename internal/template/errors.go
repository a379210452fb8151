package template

import "fmt"

// Error is implemented by every error the lexer, parser and renderer return.
type Error interface {
	error
	Position() Position
	// Message is the error text without the position prefix.
	Message() string
}

// located is the position and message every template error carries.
type located struct {
	pos Position
	msg string
}

func (e *located) Position() Position { return e.pos }
func (e *located) Message() string    { return e.msg }

func (e *located) Error() string {
	prefix := fmt.Sprintf("%d:%d", e.pos.Line, e.pos.Column)
	if e.pos.File != "" {
		prefix = e.pos.File + ":" + prefix
	}
	return prefix + ": " + e.msg
}

func at(pos Position, format string, args ...any) located {
	if len(args) == 0 {
		return located{pos: pos, msg: format}
	}
	return located{pos: pos, msg: fmt.Sprintf(format, args...)}
}

// LexError is an unterminated or malformed tag.
type LexError struct{ located }

func NewLexError(pos Position, msg string) *LexError {
	return &LexError{located{pos: pos, msg: msg}}
}

func NewLexErrorf(pos Position, format string, args ...any) *LexError {
	return &LexError{at(pos, format, args...)}
}

// ParseError is a statement tag the parser cannot build a node from.
type ParseError struct{ located }

func NewParseError(pos Position, msg string) *ParseError {
	return &ParseError{located{pos: pos, msg: msg}}
}

func NewParseErrorf(pos Position, format string, args ...any) *ParseError {
	return &ParseError{at(pos, format, args...)}
}

// RenderError is a failure while evaluating the template. Cause holds the
// Starlark error, if any.
type RenderError struct {
	located
	Cause error
}

func NewRenderErrorf(pos Position, format string, args ...any) *RenderError {
	return &RenderError{located: at(pos, format, args...)}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.located.Error()
	}
	return fmt.Sprintf("%s: %v", e.located.Error(), e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }

// UnmatchedBlockError is an opening block tag without its end tag, or an
// end or branch tag without its opening tag.
type UnmatchedBlockError struct {
	located
	BlockKind StmtKind
}

var unmatchedMessages = map[StmtKind]string{
	StmtFor:    "unclosed 'for' block (missing 'endfor')",
	StmtIf:     "unclosed 'if' block (missing 'endif')",
	StmtEndFor: "'endfor' without matching 'for'",
	StmtEndIf:  "'endif' without matching 'if'",
	StmtElse:   "'else' without matching 'if'",
	StmtElif:   "'elif' without matching 'if'",
}

func NewUnmatchedBlockError(pos Position, kind StmtKind) *UnmatchedBlockError {
	msg, ok := unmatchedMessages[kind]
	if !ok {
		msg = fmt.Sprintf("unmatched block: %s", kind)
	}
	return &UnmatchedBlockError{located: located{pos: pos, msg: msg}, BlockKind: kind}
}

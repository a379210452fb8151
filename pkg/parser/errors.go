package parser

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
)

// Position is a 1-based line/column location in the source file.
type Position struct {
	Line   int
	Column int
}

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     Position
	Message string
	Segment *segment.Segment
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrMaxDepth is wrapped by the ParseError returned when matching nests deeper
// than Config.MaxDepth.
var ErrMaxDepth = errors.New("maximum match depth exceeded")

func newParseError(seg *segment.Segment, format string, args ...any) *ParseError {
	e := &ParseError{Message: fmt.Sprintf(format, args...), Segment: seg}
	if seg != nil && seg.Marker() != nil {
		e.Pos.Line, e.Pos.Column = seg.Marker().SourcePosition()
	}
	return e
}

// Common error messages
const (
	ErrMissingCloseBracket  = "couldn't find closing bracket for opening bracket"
	ErrUnexpectedEndBracket = "found unexpected end bracket, was expecting %s, but got %s"
)

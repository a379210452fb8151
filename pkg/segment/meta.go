package segment

import "github.com/leapstack-labs/sqlgrain/pkg/syntax"

// NewIndent builds an indent meta at the given point.
func NewIndent(marker *Marker) *Segment {
	s := NewToken(syntax.Indent, "", marker)
	s.indentVal = 1
	return s
}

// NewImplicitIndent builds an indent that only applies if a line break follows it.
func NewImplicitIndent(marker *Marker) *Segment {
	s := NewToken(syntax.ImplicitIndent, "", marker)
	s.indentVal = 1
	s.implicit = true
	return s
}

// NewDedent builds a dedent meta at the given point.
func NewDedent(marker *Marker) *Segment {
	s := NewToken(syntax.Dedent, "", marker)
	s.indentVal = -1
	return s
}

// NewMeta builds the meta segment for kind.
func NewMeta(kind syntax.Kind, marker *Marker) *Segment {
	switch kind {
	case syntax.Indent:
		return NewIndent(marker)
	case syntax.ImplicitIndent:
		return NewImplicitIndent(marker)
	case syntax.Dedent:
		return NewDedent(marker)
	default:
		return NewToken(kind, "", marker)
	}
}

// NewEndOfFile builds the trailing end of file meta.
func NewEndOfFile(marker *Marker) *Segment {
	return NewToken(syntax.EndOfFile, "", marker)
}

// NewPlaceholder marks a template region that produced no output, such as a
// comment or a block tag.
func NewPlaceholder(marker *Marker, sourceStr, blockType string) *Segment {
	s := NewToken(syntax.Placeholder, "", marker)
	s.sourceStr = sourceStr
	s.blockType = blockType
	return s
}

// NewKeyword builds an unpositioned keyword token, for use in fixes.
func NewKeyword(raw string) *Segment {
	return NewToken(syntax.Keyword, raw, nil)
}

// NewWhitespace builds an unpositioned whitespace token.
func NewWhitespace(raw string) *Segment {
	return NewToken(syntax.Whitespace, raw, nil)
}

// NewNewline builds an unpositioned newline token.
func NewNewline(raw string) *Segment {
	return NewToken(syntax.Newline, raw, nil)
}

// NewSymbol builds an unpositioned token of an arbitrary kind.
func NewSymbol(kind syntax.Kind, raw string) *Segment {
	return NewToken(kind, raw, nil)
}

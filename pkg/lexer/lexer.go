// Package lexer splits a templated file into positioned tokens.
//
// Lexing runs over the templated string. Each token is then mapped back to the
// source through the templated file's slices, and template regions that left
// no text behind (comments, block tags) are kept as placeholder metas so the
// token stream still covers the whole source file.
package lexer

import (
	"fmt"
	"log/slog"
	"regexp"
	"unicode/utf8"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

// LexError reports text no matcher accepted.
type LexError struct {
	Line    int
	Column  int
	Message string
	Segment *segment.Segment
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// lastResort takes everything up to the next whitespace as unlexable.
var lastResort = regexp.MustCompile(`^[^\t\n ]*`)

// Lexer lexes templated files with an ordered list of matchers. The first
// matcher that accepts the input wins.
type Lexer struct {
	matchers []Matcher
	logger   *slog.Logger
}

// New creates a lexer. Matchers are tried in order.
func New(matchers []Matcher) *Lexer {
	return &Lexer{matchers: matchers, logger: slog.Default()}
}

// WithLogger sets the logger used for lexing diagnostics.
func (l *Lexer) WithLogger(logger *slog.Logger) *Lexer {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Matchers returns the matchers in priority order.
func (l *Lexer) Matchers() []Matcher { return l.matchers }

// LexString lexes an untemplated string.
func (l *Lexer) LexString(sql string) ([]*segment.Segment, []*LexError) {
	return l.Lex(templater.FromString(sql))
}

// Lex returns the token stream for tf, terminated by an end of file meta,
// together with an error for every unlexable token.
func (l *Lexer) Lex(tf *templater.TemplatedFile) ([]*segment.Segment, []*LexError) {
	var (
		segs  []*segment.Segment
		errs  []*LexError
		chunk int
	)
	templated := tf.TemplatedStr

	for i, ts := range tf.SlicedFile {
		if !ts.TemplatedSlice.IsZero() || ts.SliceType == templater.SliceLiteral {
			continue
		}
		segs, errs = l.lexChunk(tf, chunk, ts.TemplatedSlice.Start, segs, errs)
		chunk = ts.TemplatedSlice.Start
		segs = append(segs, l.templateMetas(tf, i)...)
	}
	segs, errs = l.lexChunk(tf, chunk, len(templated), segs, errs)

	eof := segment.MarkerFromPoint(len(tf.SourceStr), len(templated), tf)
	segs = append(segs, segment.NewEndOfFile(&eof))
	l.logger.Debug("lexed file", "file", tf.FName, "segments", len(segs), "errors", len(errs))
	return segs, errs
}

func (l *Lexer) lexChunk(tf *templater.TemplatedFile, start, stop int, segs []*segment.Segment, errs []*LexError) ([]*segment.Segment, []*LexError) {
	if start >= stop {
		return segs, errs
	}
	pos := start
	forward := tf.TemplatedStr[start:stop]
	for forward != "" {
		elems, n := l.matchOne(forward)
		for _, e := range elems {
			tslice := templater.Slice{Start: pos, Stop: pos + len(e.Raw)}
			m := l.marker(tf, tslice)
			seg := segment.NewToken(e.Kind, e.Raw, &m)
			segs = append(segs, seg)
			if e.Kind == syntax.Unlexable {
				errs = append(errs, newLexError(seg))
				l.logger.Debug("unlexable text", "file", tf.FName, "raw", e.Raw, "pos", pos)
			}
			pos += len(e.Raw)
		}
		forward = forward[n:]
	}
	return segs, errs
}

func (l *Lexer) matchOne(forward string) ([]Element, int) {
	for _, m := range l.matchers {
		if elems, n := m.Match(forward); n > 0 {
			return elems, n
		}
	}
	n := len(lastResort.FindString(forward))
	if n == 0 {
		_, n = utf8.DecodeRuneInString(forward)
	}
	return []Element{{Raw: forward[:n], Kind: syntax.Unlexable}}, n
}

// marker maps a templated range to the source. Ranges inside a single literal
// slice map byte for byte.
func (l *Lexer) marker(tf *templater.TemplatedFile, ts templater.Slice) segment.Marker {
	for _, fs := range tf.SlicedFile {
		if fs.SliceType != templater.SliceLiteral {
			continue
		}
		if fs.TemplatedSlice.Start <= ts.Start && ts.Stop <= fs.TemplatedSlice.Stop && !fs.TemplatedSlice.IsZero() {
			off := fs.SourceSlice.Start - fs.TemplatedSlice.Start
			return segment.NewMarker(templater.Slice{Start: ts.Start + off, Stop: ts.Stop + off}, ts, tf)
		}
	}
	src, err := tf.TemplatedSliceToSourceSlice(ts)
	if err != nil {
		l.logger.Warn("cannot map templated range to source", "file", tf.FName, "range", ts.String(), "error", err)
		src = ts
	}
	return segment.NewMarker(src, ts, tf)
}

// templateMetas builds the metas for a template region with no output:
// block starts open an indent and block ends close it.
func (l *Lexer) templateMetas(tf *templater.TemplatedFile, idx int) []*segment.Segment {
	ts := tf.SlicedFile[idx]
	m := segment.NewMarker(ts.SourceSlice, ts.TemplatedSlice, tf)
	point := segment.MarkerFromPoint(ts.SourceSlice.Stop, ts.TemplatedSlice.Start, tf)
	before := segment.MarkerFromPoint(ts.SourceSlice.Start, ts.TemplatedSlice.Start, tf)
	ph := segment.NewPlaceholder(&m, ts.SourceSlice.Of(tf.SourceStr), ts.SliceType)
	switch ts.SliceType {
	case templater.SliceBlockStart:
		return []*segment.Segment{ph, segment.NewIndent(&point)}
	case templater.SliceBlockEnd:
		return []*segment.Segment{segment.NewDedent(&before), ph}
	case templater.SliceBlockMid:
		return []*segment.Segment{segment.NewDedent(&before), ph, segment.NewIndent(&point)}
	default:
		return []*segment.Segment{ph}
	}
}

func newLexError(seg *segment.Segment) *LexError {
	raw := seg.Raw()
	if r := []rune(raw); len(r) > 10 {
		raw = string(r[:10])
	}
	line, col := seg.Marker().SourcePosition()
	return &LexError{
		Line:    line,
		Column:  col,
		Message: "Unable to lex characters: " + raw,
		Segment: seg,
	}
}

package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

func testMatchers() []Matcher {
	return []Matcher{
		NewRegexLexer("whitespace", `[^\S\r\n]+`, syntax.Whitespace),
		NewRegexLexer("inline_comment", `(--|#)[^\n]*`, syntax.InlineComment),
		NewRegexLexer("block_comment", `/\*([^*]|\*+[^*/])*\*+/`, syntax.BlockComment).
			Subdivider(NewPattern("newline", `\r\n|\n`, syntax.Newline)).
			PostSubdivide(NewPattern("whitespace", `[^\S\r\n]+`, syntax.Whitespace)),
		NewRegexLexer("single_quote", `'([^'\\]|\\.|'')*'`, syntax.SingleQuote),
		NewFuncLexer("numeric_literal", syntax.NumericLiteral, ScanNumber),
		NewRegexLexer("newline", `\r\n|\n`, syntax.Newline),
		NewStringLexer("comma", ",", syntax.Comma),
		NewStringLexer("dot", ".", syntax.Dot),
		NewStringLexer("star", "*", syntax.Star),
		NewRegexLexer("word", `[0-9a-zA-Z_]+`, syntax.Word),
	}
}

type tok struct {
	kind syntax.Kind
	raw  string
}

func toks(segs []*segment.Segment) []tok {
	out := make([]tok, len(segs))
	for i, s := range segs {
		out[i] = tok{s.Kind(), s.Raw()}
	}
	return out
}

func TestLexString(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []tok
	}{
		{
			name: "select",
			sql:  "SELECT a, 1.5 FROM t",
			want: []tok{
				{syntax.Word, "SELECT"}, {syntax.Whitespace, " "}, {syntax.Word, "a"}, {syntax.Comma, ","},
				{syntax.Whitespace, " "}, {syntax.NumericLiteral, "1.5"}, {syntax.Whitespace, " "},
				{syntax.Word, "FROM"}, {syntax.Whitespace, " "}, {syntax.Word, "t"}, {syntax.EndOfFile, ""},
			},
		},
		{
			name: "comments and newlines",
			sql:  "a -- note\n'it''s'",
			want: []tok{
				{syntax.Word, "a"}, {syntax.Whitespace, " "}, {syntax.InlineComment, "-- note"},
				{syntax.Newline, "\n"}, {syntax.SingleQuote, "'it''s'"}, {syntax.EndOfFile, ""},
			},
		},
		{
			name: "number glued to word",
			sql:  "1abc a.b",
			want: []tok{
				{syntax.Word, "1abc"}, {syntax.Whitespace, " "}, {syntax.Word, "a"}, {syntax.Dot, "."},
				{syntax.Word, "b"}, {syntax.EndOfFile, ""},
			},
		},
		{
			name: "block comment is subdivided",
			sql:  "/* a\n  b */",
			want: []tok{
				{syntax.BlockComment, "/* a"}, {syntax.Newline, "\n"}, {syntax.Whitespace, "  "},
				{syntax.BlockComment, "b */"}, {syntax.EndOfFile, ""},
			},
		},
		{
			name: "empty",
			sql:  "",
			want: []tok{{syntax.EndOfFile, ""}},
		},
	}

	lx := New(testMatchers())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, errs := lx.LexString(tt.sql)
			assert.Empty(t, errs)
			assert.Equal(t, tt.want, toks(segs))
		})
	}
}

func TestLexRoundTrip(t *testing.T) {
	inputs := []string{
		"select a.b, c from t where x = 1",
		"\n\n  select *\n\tfrom  t;;",
		"select ✓ from nowhere",
	}
	lx := New(testMatchers())
	for _, in := range inputs {
		segs, _ := lx.LexString(in)
		var b strings.Builder
		for _, s := range segs {
			b.WriteString(s.Raw())
		}
		assert.Equal(t, in, b.String())
	}
}

func TestLexPositions(t *testing.T) {
	segs, _ := New(testMatchers()).LexString("a\n  bb")
	require.Len(t, segs, 5)

	bb := segs[3]
	assert.Equal(t, "bb", bb.Raw())
	assert.Equal(t, templater.Slice{Start: 4, Stop: 6}, bb.Marker().SourceSlice)
	assert.Equal(t, 2, bb.LineNo())
	assert.Equal(t, 3, bb.LinePos())

	eof := segs[4]
	assert.Equal(t, syntax.EndOfFile, eof.Kind())
	assert.True(t, eof.Marker().IsPoint())
	assert.Equal(t, 6, eof.Marker().SourceSlice.Start)
}

func TestLexUnlexable(t *testing.T) {
	segs, errs := New(testMatchers()).LexString("select ✓x;y from")
	require.Len(t, errs, 1)
	assert.Equal(t, "Unable to lex characters: ✓x;y", errs[0].Message)
	assert.Equal(t, 1, errs[0].Line)
	assert.Equal(t, 8, errs[0].Column)
	assert.Equal(t, "lexer error at line 1, column 8: Unable to lex characters: ✓x;y", errs[0].Error())
	assert.Equal(t, syntax.Unlexable, segs[2].Kind())
	assert.Equal(t, syntax.Whitespace, segs[3].Kind())
}

func TestLexTemplatedComment(t *testing.T) {
	templated := "acc"
	tf, err := templater.New("a{# b #}cc", "t.sql", &templated,
		[]templater.TemplatedFileSlice{
			{SliceType: templater.SliceLiteral, SourceSlice: templater.Slice{Start: 0, Stop: 1}, TemplatedSlice: templater.Slice{Start: 0, Stop: 1}},
			{SliceType: templater.SliceComment, SourceSlice: templater.Slice{Start: 1, Stop: 8}, TemplatedSlice: templater.Slice{Start: 1, Stop: 1}},
			{SliceType: templater.SliceLiteral, SourceSlice: templater.Slice{Start: 8, Stop: 10}, TemplatedSlice: templater.Slice{Start: 1, Stop: 3}},
		},
		[]templater.RawFileSlice{
			{Raw: "a", SliceType: templater.SliceLiteral, SourceIdx: 0},
			{Raw: "{# b #}", SliceType: templater.SliceComment, SourceIdx: 1},
			{Raw: "cc", SliceType: templater.SliceLiteral, SourceIdx: 8},
		})
	require.NoError(t, err)

	segs, errs := New(testMatchers()).Lex(tf)
	assert.Empty(t, errs)
	assert.Equal(t, []tok{
		{syntax.Word, "a"}, {syntax.Placeholder, ""}, {syntax.Word, "cc"}, {syntax.EndOfFile, ""},
	}, toks(segs))

	ph := segs[1]
	assert.Equal(t, "{# b #}", ph.SourceStr())
	assert.Equal(t, templater.SliceComment, ph.BlockType())
	assert.Equal(t, templater.Slice{Start: 1, Stop: 8}, ph.Marker().SourceSlice)
	assert.Equal(t, templater.Slice{Start: 8, Stop: 10}, segs[2].Marker().SourceSlice)
}

func TestLexTemplatedBlock(t *testing.T) {
	src := "{% if x %}a{% endif %}"
	templated := "a"
	tf, err := templater.New(src, "t.sql", &templated,
		[]templater.TemplatedFileSlice{
			{SliceType: templater.SliceBlockStart, SourceSlice: templater.Slice{Start: 0, Stop: 10}, TemplatedSlice: templater.Slice{Start: 0, Stop: 0}},
			{SliceType: templater.SliceLiteral, SourceSlice: templater.Slice{Start: 10, Stop: 11}, TemplatedSlice: templater.Slice{Start: 0, Stop: 1}},
			{SliceType: templater.SliceBlockEnd, SourceSlice: templater.Slice{Start: 11, Stop: 22}, TemplatedSlice: templater.Slice{Start: 1, Stop: 1}},
		},
		[]templater.RawFileSlice{
			{Raw: "{% if x %}", SliceType: templater.SliceBlockStart, SourceIdx: 0},
			{Raw: "a", SliceType: templater.SliceLiteral, SourceIdx: 10},
			{Raw: "{% endif %}", SliceType: templater.SliceBlockEnd, SourceIdx: 11},
		})
	require.NoError(t, err)

	segs, _ := New(testMatchers()).Lex(tf)
	assert.Equal(t, []syntax.Kind{
		syntax.Placeholder, syntax.Indent, syntax.Word, syntax.Dedent, syntax.Placeholder, syntax.EndOfFile,
	}, kinds(segs))
	assert.Equal(t, templater.Slice{Start: 10, Stop: 11}, segs[2].Marker().SourceSlice)
}

func kinds(segs []*segment.Segment) []syntax.Kind {
	out := make([]syntax.Kind, len(segs))
	for i, s := range segs {
		out[i] = s.Kind()
	}
	return out
}

func TestScanNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1", 1},
		{"12.5 ", 4},
		{".5", 2},
		{"1.", 2},
		{"1..2", 1},
		{"1.e5", 4},
		{"2E-3,", 4},
		{"1abc", 0},
		{"1.x", 1},
		{"abc", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ScanNumber(tt.in))
		})
	}
}

func TestScanDollarQuote(t *testing.T) {
	assert.Equal(t, 9, ScanDollarQuote("$$a b c$$ rest"))
	assert.Equal(t, 14, ScanDollarQuote("$fn$ body $fn$"))
	assert.Equal(t, 0, ScanDollarQuote("$1"))
	assert.Equal(t, 0, ScanDollarQuote("$$unterminated"))
}

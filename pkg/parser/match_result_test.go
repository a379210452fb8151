package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func tagged(start, end int, kind syntax.Kind) MatchResult {
	return MatchResult{Span: Span{Start: start, End: end}, Matched: &Matched{Kind: kind}}
}

func TestAppendIdentity(t *testing.T) {
	x := tagged(1, 3, syntax.Expression)
	assert.Equal(t, x, EmptyAt(1).Append(x))
	assert.Equal(t, x, x.Append(EmptyAt(3)))
}

func TestAppendAssociative(t *testing.T) {
	a := tagged(0, 1, syntax.Keyword)
	b := tagged(1, 2, syntax.Expression)
	c := tagged(2, 3, syntax.Expression)

	left := a.Append(b).Append(c)
	right := a.Append(b.Append(c))
	assert.Equal(t, left, right)
	assert.Equal(t, Span{Start: 0, End: 3}, left.Span)
	assert.Len(t, left.Children, 3)
}

func TestAppendUnionsSpans(t *testing.T) {
	tests := []struct {
		name string
		a, b MatchResult
		want Span
	}{
		{"adjacent", tagged(0, 2, syntax.Keyword), tagged(2, 4, syntax.Expression), Span{0, 4}},
		{"gap", tagged(0, 1, syntax.Keyword), tagged(3, 4, syntax.Expression), Span{0, 4}},
		{"second ends first", tagged(0, 5, syntax.Keyword), tagged(2, 3, syntax.Expression), Span{0, 5}},
		{"second starts first", tagged(2, 4, syntax.Keyword), tagged(1, 3, syntax.Expression), Span{1, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Append(tt.b).Span)
		})
	}
}

func TestAppendFlattensUntagged(t *testing.T) {
	a := tagged(0, 1, syntax.Keyword)
	b := MatchResult{
		Span:     Span{Start: 1, End: 3},
		Inserts:  []MetaInsert{{Idx: 1, Kind: syntax.Indent}},
		Children: []MatchResult{tagged(2, 3, syntax.Expression)},
	}
	got := a.Append(b)
	assert.Nil(t, got.Matched)
	assert.Equal(t, []MatchResult{a, b.Children[0]}, got.Children)
	assert.Equal(t, b.Inserts, got.Inserts)
}

func TestWrap(t *testing.T) {
	assert.True(t, EmptyAt(2).Wrap(Matched{Kind: syntax.Expression}).IsEmpty())

	inner := MatchResult{
		Span:     Span{Start: 0, End: 2},
		Inserts:  []MetaInsert{{Idx: 1, Kind: syntax.Indent}},
		Children: []MatchResult{tagged(0, 1, syntax.Keyword)},
	}
	w := inner.Wrap(Matched{Kind: syntax.SelectClause})
	require.NotNil(t, w.Matched)
	assert.Equal(t, syntax.SelectClause, w.Matched.Kind)
	assert.Equal(t, inner.Children, w.Children)
	assert.Equal(t, inner.Inserts, w.Inserts)

	ww := w.Wrap(Matched{Kind: syntax.SelectStatement})
	require.Len(t, ww.Children, 1)
	assert.Equal(t, w, ww.Children[0])
	assert.Empty(t, ww.Inserts)
}

func TestApplyKeepsUntouchedSegments(t *testing.T) {
	segs := lex(t, "a b c")
	res := MatchResult{
		Span:     Span{Start: 0, End: 5},
		Children: []MatchResult{tagged(2, 3, syntax.Expression)},
		Inserts:  []MetaInsert{{Idx: 5, Kind: syntax.Dedent}},
	}
	out := res.Apply(segs)
	assert.Equal(t, []syntax.Kind{
		syntax.Word, syntax.Whitespace, syntax.Expression, syntax.Whitespace, syntax.Word, syntax.Dedent,
	}, kindsOf(out))
	assert.Same(t, segs[0], out[0])

	dedent := out[5]
	require.NotNil(t, dedent.Marker())
	assert.Equal(t, 5, dedent.Marker().SourceSlice.Start)
}

func TestApplyOverlapPanics(t *testing.T) {
	segs := lex(t, "a b c")
	res := MatchResult{
		Span:     Span{Start: 0, End: 3},
		Children: []MatchResult{FromSpan(0, 2), FromSpan(1, 3)},
	}
	assert.Panics(t, func() { res.Apply(segs) })
}

func TestApplyUnparsableKeepsExpected(t *testing.T) {
	segs := lex(t, "a b")
	res := FromSpan(0, 3).Wrap(Matched{Kind: syntax.Unparsable, Expected: "Nothing here."})
	out := res.Apply(segs)
	require.Len(t, out, 1)
	assert.Equal(t, "Nothing here.", out[0].Expected())
	assert.Equal(t, "a b", out[0].Raw())
}

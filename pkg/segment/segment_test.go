package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

// tokens positions a run of (kind, raw) pairs over one templated file.
func tokens(t *testing.T, tf *templater.TemplatedFile, parts ...any) []*Segment {
	t.Helper()
	require.Zero(t, len(parts)%2)
	var out []*Segment
	pos := 0
	for i := 0; i < len(parts); i += 2 {
		kind := parts[i].(syntax.Kind)
		raw := parts[i+1].(string)
		sl := templater.Slice{Start: pos, Stop: pos + len(raw)}
		m := NewMarker(sl, sl, tf)
		out = append(out, NewToken(kind, raw, &m))
		pos += len(raw)
	}
	return out
}

func sampleTree(t *testing.T) (*Segment, []*Segment) {
	t.Helper()
	tf := templater.FromString("select a\nfrom b")
	toks := tokens(t, tf,
		syntax.Keyword, "select",
		syntax.Whitespace, " ",
		syntax.NakedIdentifier, "a",
		syntax.Newline, "\n",
		syntax.Keyword, "from",
		syntax.Whitespace, " ",
		syntax.NakedIdentifier, "b",
	)
	col := NewNode(syntax.ColumnReference, toks[2:3])
	sel := NewNode(syntax.SelectClause, []*Segment{toks[0], toks[1], col})
	tbl := NewNode(syntax.TableReference, toks[6:7])
	from := NewNode(syntax.FromClause, []*Segment{toks[4], toks[5], tbl})
	stmt := NewNode(syntax.SelectStatement, []*Segment{sel, toks[3], from})
	return NewNode(syntax.File, []*Segment{stmt}), toks
}

func TestRawRoundTrip(t *testing.T) {
	root, _ := sampleTree(t)
	assert.Equal(t, "select a\nfrom b", root.Raw())

	var b strings.Builder
	for _, r := range root.RawSegments() {
		b.WriteString(r.Raw())
	}
	assert.Equal(t, root.Raw(), b.String())
}

func TestNodeMarkerFromChildren(t *testing.T) {
	root, _ := sampleTree(t)
	stmt := root.Segments()[0]
	from := stmt.Segments()[2]
	require.NotNil(t, from.Marker())
	assert.Equal(t, templater.Slice{Start: 9, Stop: 15}, from.Marker().SourceSlice)
	assert.Equal(t, 2, from.LineNo())
	assert.Equal(t, 1, from.LinePos())
	assert.Equal(t, templater.Slice{Start: 0, Stop: 15}, root.Marker().SourceSlice)
}

func TestRecursiveCrawl(t *testing.T) {
	root, _ := sampleTree(t)

	refs := root.Crawl(syntax.ObjectReference)
	require.Len(t, refs, 2)
	assert.Equal(t, syntax.ColumnReference, refs[0].Kind())
	assert.Equal(t, syntax.TableReference, refs[1].Kind())

	kws := root.RecursiveCrawl(syntax.NewSet(syntax.Keyword), true, syntax.NewSet(syntax.FromClause), true)
	require.Len(t, kws, 1)
	assert.Equal(t, "select", kws[0].Raw())

	assert.Empty(t, root.Crawl(syntax.CaseExpression))
}

func TestDescendantTypeSet(t *testing.T) {
	root, _ := sampleTree(t)
	d := root.DescendantTypeSet()
	assert.True(t, d.Contains(syntax.SelectClause))
	assert.True(t, d.Contains(syntax.ObjectReference))
	assert.False(t, d.Contains(syntax.File))
}

func TestPathTo(t *testing.T) {
	root, toks := sampleTree(t)
	path := root.PathTo(toks[6])
	require.Len(t, path, 4)
	assert.Equal(t, syntax.File, path[0].Segment.Kind())
	assert.Equal(t, syntax.TableReference, path[3].Segment.Kind())
	assert.Equal(t, 2, path[2].Idx)
	assert.Equal(t, []int{0, 2}, path[1].CodeIdxs)

	assert.Equal(t, syntax.FromClause, root.ParentOf(toks[4]).Kind())
	assert.Nil(t, root.PathTo(root))
	assert.Nil(t, root.PathTo(NewKeyword("x")))
}

func TestCopyAndEdit(t *testing.T) {
	root, toks := sampleTree(t)
	stmt := root.Segments()[0]

	c := stmt.Copy()
	assert.NotEqual(t, stmt.ID(), c.ID())
	assert.Nil(t, c.Marker())
	assert.Equal(t, stmt.Raw(), c.Raw())
	assert.Nil(t, c.RawSegments()[0].Marker())

	e := toks[0].Edit("SELECT")
	assert.Equal(t, "SELECT", e.Raw())
	assert.NotEqual(t, toks[0].ID(), e.ID())
	assert.Equal(t, toks[0].Marker(), e.Marker())
}

func TestWithChildrenKeepsIdentity(t *testing.T) {
	root, toks := sampleTree(t)
	stmt := root.Segments()[0]
	n := stmt.WithChildren(stmt.Segments()[:1])
	assert.Equal(t, stmt.ID(), n.ID())
	assert.Equal(t, "select a", n.Raw())
	assert.Equal(t, templater.Slice{Start: 0, Stop: 8}, n.Marker().SourceSlice)
	_ = toks
}

func TestEqual(t *testing.T) {
	a, _ := sampleTree(t)
	b, _ := sampleTree(t)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(b.Segments()[0]))
}

func TestPredicates(t *testing.T) {
	tf := templater.FromString(" -- c\n")
	toks := tokens(t, tf, syntax.Whitespace, " ", syntax.InlineComment, "-- c", syntax.Newline, "\n")
	n := NewNode(syntax.File, toks)
	assert.False(t, n.IsCode())
	assert.True(t, toks[1].IsComment())
	assert.True(t, toks[1].IsType(syntax.Comment))
	assert.False(t, n.IsWhitespace())

	ind := NewIndent(nil)
	assert.True(t, ind.IsMeta())
	assert.Equal(t, 1, ind.IndentVal())
	assert.Equal(t, -1, NewDedent(nil).IndentVal())
	assert.True(t, NewImplicitIndent(nil).IsImplicit())
}

func TestInferNextPosition(t *testing.T) {
	tests := []struct {
		raw      string
		line     int
		pos      int
		wantLine int
		wantPos  int
	}{
		{"", 1, 1, 1, 1},
		{"abc", 1, 1, 1, 4},
		{"\n", 1, 5, 2, 1},
		{"ab\ncd", 3, 2, 4, 3},
		{"a\n\n", 1, 1, 3, 1},
	}
	for _, tt := range tests {
		l, p := InferNextPosition(tt.raw, tt.line, tt.pos)
		assert.Equal(t, tt.wantLine, l, "line after %q", tt.raw)
		assert.Equal(t, tt.wantPos, p, "pos after %q", tt.raw)
	}
}

func TestMarkerPoints(t *testing.T) {
	tf := templater.FromString("ab\ncd")
	m := NewMarker(templater.Slice{Start: 3, Stop: 5}, templater.Slice{Start: 3, Stop: 5}, tf)
	assert.Equal(t, 2, m.WorkingLineNo)
	assert.Equal(t, 1, m.WorkingLinePos)
	assert.True(t, m.StartPoint().IsPoint())
	assert.Equal(t, 5, m.EndPoint().SourceSlice.Start)
	assert.Equal(t, "cd", m.SourceStr())
	assert.True(t, m.IsLiteral())

	start := MarkerFromPoint(0, 0, tf)
	joined := MarkerFromPoints(start, m)
	assert.Equal(t, templater.Slice{Start: 0, Stop: 5}, joined.SourceSlice)
}

func TestStringifyAndRecord(t *testing.T) {
	root, _ := sampleTree(t)
	out := root.Stringify(false)
	assert.Contains(t, out, "|file:")
	assert.Contains(t, out, "'select'")
	assert.Contains(t, out, `'\n'`)

	rec := root.ToRecord(false)
	children, ok := rec["file"].([]Record)
	require.True(t, ok)
	require.Len(t, children, 1)
	_, ok = children[0]["select_statement"]
	assert.True(t, ok)
}

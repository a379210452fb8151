package fix_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/dialects/ansi"
	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/parser"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

func parseFile(t *testing.T, tf *templater.TemplatedFile) *segment.Segment {
	t.Helper()
	d := dialect.MustGet(ansi.Name)
	segs, errs := d.Lexer().Lex(tf)
	require.Empty(t, errs)
	tree, err := d.Parser(parser.Config{}).Parse(segs, tf.FName)
	require.NoError(t, err)
	return tree
}

func parse(t *testing.T, sql string) (*segment.Segment, *templater.TemplatedFile) {
	t.Helper()
	tf := templater.FromString(sql)
	return parseFile(t, tf), tf
}

func applyAll(t *testing.T, tree *segment.Segment, fixes ...fix.LintFix) *segment.Segment {
	t.Helper()
	infos, errs := fix.ComputeAnchorEditInfo(fixes)
	require.Empty(t, errs)
	out, _ := fix.Apply(tree, infos)
	return out
}

func aliasIdentifier(t *testing.T, tree *segment.Segment) *segment.Segment {
	t.Helper()
	alias := tree.Crawl(syntax.AliasExpression)
	require.Len(t, alias, 1)
	ids := alias[0].Crawl(syntax.NakedIdentifier)
	require.Len(t, ids, 1)
	return ids[0]
}

func TestSliceSourceFile(t *testing.T) {
	comment := templater.RawFileSlice{Raw: "{# b #}", SliceType: templater.SliceComment, SourceIdx: 1}
	tests := []struct {
		name       string
		patches    []fix.FixPatch
		sourceOnly []templater.RawFileSlice
		source     string
		want       []templater.Slice
		fixed      string
	}{
		{
			name:   "no patches",
			source: "a",
			want:   []templater.Slice{{Start: 0, Stop: 1}},
			fixed:  "a",
		},
		{
			name:    "replacement",
			patches: []fix.FixPatch{{SourceSlice: templater.Slice{Start: 1, Stop: 2}, FixedRaw: "d"}},
			source:  "abc",
			want:    []templater.Slice{{Start: 0, Stop: 1}, {Start: 1, Stop: 2}, {Start: 2, Stop: 3}},
			fixed:   "adc",
		},
		{
			name:    "insertion",
			patches: []fix.FixPatch{{SourceSlice: templater.Slice{Start: 1, Stop: 1}, FixedRaw: "b"}},
			source:  "ac",
			want:    []templater.Slice{{Start: 0, Stop: 1}, {Start: 1, Stop: 1}, {Start: 1, Stop: 2}},
			fixed:   "abc",
		},
		{
			name:    "deletion",
			patches: []fix.FixPatch{{SourceSlice: templater.Slice{Start: 1, Stop: 2}}},
			source:  "abc",
			want:    []templater.Slice{{Start: 0, Stop: 1}, {Start: 1, Stop: 2}, {Start: 2, Stop: 3}},
			fixed:   "ac",
		},
		{
			name:       "source only slice without patches",
			sourceOnly: []templater.RawFileSlice{{Raw: "{# b #}", SliceType: templater.SliceComment, SourceIdx: 2}},
			source:     "a {# b #} c",
			want:       []templater.Slice{{Start: 0, Stop: 11}},
			fixed:      "a {# b #} c",
		},
		{
			name:       "edit before a comment",
			patches:    []fix.FixPatch{{SourceSlice: templater.Slice{Start: 0, Stop: 1}, FixedRaw: "a "}},
			sourceOnly: []templater.RawFileSlice{comment},
			source:     "a{# b #}c",
			want:       []templater.Slice{{Start: 0, Stop: 1}, {Start: 1, Stop: 9}},
			fixed:      "a {# b #}c",
		},
		{
			name:       "edit after a comment keeps the comment apart",
			patches:    []fix.FixPatch{{SourceSlice: templater.Slice{Start: 8, Stop: 9}, FixedRaw: " c"}},
			sourceOnly: []templater.RawFileSlice{comment},
			source:     "a{# b #}cc",
			want: []templater.Slice{
				{Start: 0, Stop: 1}, {Start: 1, Stop: 8}, {Start: 8, Stop: 9}, {Start: 9, Stop: 10},
			},
			fixed: "a{# b #} cc",
		},
		{
			name:       "patch covering the comment replaces it",
			patches:    []fix.FixPatch{{SourceSlice: templater.Slice{Start: 1, Stop: 8}, FixedRaw: "{# fixed #}"}},
			sourceOnly: []templater.RawFileSlice{comment},
			source:     "a{# b #}c",
			want:       []templater.Slice{{Start: 0, Stop: 1}, {Start: 1, Stop: 8}, {Start: 8, Stop: 9}},
			fixed:      "a{# fixed #}c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fix.SliceSourceFile(tt.patches, tt.sourceOnly, tt.source)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.fixed, fix.BuildFixedString(got, tt.patches, tt.source))
		})
	}
}

func TestApplyEmptyIsIdentity(t *testing.T) {
	tree, tf := parse(t, "select a, b from t where c = 1\n")

	out, validate := fix.Apply(tree, nil)
	assert.Same(t, tree, out)
	assert.False(t, validate)

	out, _ = fix.Apply(tree, map[uint64]*fix.AnchorEditInfo{})
	assert.True(t, tree.Equal(out))
	assert.Equal(t, tf.SourceStr, fix.FixString(out, tf))
}

func TestApply(t *testing.T) {
	t.Run("create before inserts a keyword", func(t *testing.T) {
		tree, tf := parse(t, "select foo.bar from table1 foo")
		ident := aliasIdentifier(t, tree)

		out := applyAll(t, tree, fix.CreateBefore(ident, segment.NewKeyword("AS"), segment.NewWhitespace(" ")))

		assert.Equal(t, "select foo.bar from table1 AS foo", out.Raw())
		assert.Equal(t, "select foo.bar from table1 AS foo", fix.FixString(out, tf))
	})

	t.Run("create after keeps the anchor first", func(t *testing.T) {
		tree, tf := parse(t, "select a from t")
		cols := tree.Crawl(syntax.ColumnReference)
		require.Len(t, cols, 1)

		out := applyAll(t, tree, fix.CreateAfter(cols[0], []*segment.Segment{
			segment.NewSymbol(syntax.Comma, ","), segment.NewWhitespace(" "), segment.NewToken(syntax.NakedIdentifier, "b", nil),
		}))

		assert.Equal(t, "select a, b from t", fix.FixString(out, tf))
	})

	t.Run("delete leading whitespace", func(t *testing.T) {
		tree, tf := parse(t, "     SELECT 1")
		first := tree.RawSegments()[0]
		require.Equal(t, syntax.Whitespace, first.Kind())

		out := applyAll(t, tree, fix.Delete(first))

		assert.Equal(t, "SELECT 1", fix.FixString(out, tf))
	})

	t.Run("delete at the end of a node", func(t *testing.T) {
		tree, tf := parse(t, "select a from t   ")
		raws := tree.RawSegments()
		var last *segment.Segment
		for _, r := range raws {
			if r.Kind() == syntax.Whitespace {
				last = r
			}
		}
		require.NotNil(t, last)
		require.Equal(t, "   ", last.Raw())

		out := applyAll(t, tree, fix.Delete(last))

		assert.Equal(t, "select a from t", fix.FixString(out, tf))
		assert.Equal(t, tree.Marker().SourceSlice, out.Marker().SourceSlice, "rebuilt nodes keep their span")
	})

	t.Run("replace keeps untouched bytes", func(t *testing.T) {
		tree, tf := parse(t, "select a  ,  b\nfrom t -- note\n")
		var kw *segment.Segment
		for _, r := range tree.RawSegments() {
			if r.RawUpper() == "FROM" {
				kw = r
			}
		}
		require.NotNil(t, kw)

		out := applyAll(t, tree, fix.Replace(kw, []*segment.Segment{kw.Edit("FROM")}))

		assert.Equal(t, "select a  ,  b\nFROM t -- note\n", fix.FixString(out, tf))
	})

	t.Run("positions are realigned", func(t *testing.T) {
		tree, _ := parse(t, "select foo.bar from table1 foo")
		ident := aliasIdentifier(t, tree)

		out := applyAll(t, tree, fix.CreateBefore(ident, segment.NewKeyword("AS"), segment.NewWhitespace(" ")))

		for _, r := range out.RawSegments() {
			require.NotNil(t, r.Marker(), "segment %q has no position", r.Raw())
		}
		moved := aliasIdentifier(t, out)
		assert.Equal(t, 31, moved.Marker().WorkingLinePos)
	})
}

func TestComputeAnchorEditInfo(t *testing.T) {
	tree, _ := parse(t, "select foo from t")
	ident := tree.Crawl(syntax.NakedIdentifier)[0]

	t.Run("identical fixes are deduplicated", func(t *testing.T) {
		infos, errs := fix.ComputeAnchorEditInfo([]fix.LintFix{fix.Delete(ident), fix.Delete(ident)})
		require.Empty(t, errs)
		require.Contains(t, infos, ident.ID())
		assert.Equal(t, 1, infos[ident.ID()].Total())
		assert.True(t, infos[ident.ID()].IsValid())
	})

	t.Run("conflicting replaces keep the first", func(t *testing.T) {
		first := fix.Replace(ident, []*segment.Segment{ident.Edit("bar")})
		second := fix.Replace(ident, []*segment.Segment{ident.Edit("baz")})

		infos, errs := fix.ComputeAnchorEditInfo([]fix.LintFix{first, second})
		require.Len(t, errs, 1)
		var conflict *fix.ConflictError
		require.ErrorAs(t, errs[0], &conflict)
		assert.Equal(t, ident.ID(), conflict.AnchorID)
		assert.Contains(t, conflict.Error(), `kept "bar", dropped "baz"`)

		info := infos[ident.ID()]
		require.NotNil(t, info.FirstReplace)
		assert.Equal(t, "bar", info.FirstReplace.Edit[0].Raw())

		out, validate := fix.Apply(tree, infos)
		assert.Equal(t, "select bar from t", out.Raw())
		assert.False(t, validate, "a like for like replace needs no reparse")
	})

	t.Run("create before and after are valid together", func(t *testing.T) {
		info := &fix.AnchorEditInfo{}
		info.Add(fix.CreateAfter(ident, []*segment.Segment{segment.NewWhitespace(" ")}))
		info.Add(fix.CreateBefore(ident, segment.NewWhitespace(" ")))
		assert.True(t, info.IsValid())

		info.Add(fix.Delete(ident))
		assert.False(t, info.IsValid())
	})
}

func TestFixEditsAreUnpositioned(t *testing.T) {
	tree, _ := parse(t, "select foo from t")
	ident := tree.Crawl(syntax.NakedIdentifier)[0]
	require.NotNil(t, ident.Marker())

	f := fix.Replace(ident, []*segment.Segment{ident})
	require.Len(t, f.Edit, 1)
	assert.Nil(t, f.Edit[0].Marker())
	assert.NotEqual(t, ident.ID(), f.Edit[0].ID())
	assert.True(t, f.IsJustSourceEdit())
}

func TestGenerateSourcePatchesIsDeterministic(t *testing.T) {
	tree, tf := parse(t, "select a,b\nfrom t\nwhere x=1")
	var fixes []fix.LintFix
	for _, r := range tree.RawSegments() {
		if r.Kind() == syntax.Comma {
			fixes = append(fixes, fix.CreateAfter(r, []*segment.Segment{segment.NewWhitespace(" ")}))
		}
		if r.IsType(syntax.Keyword) {
			fixes = append(fixes, fix.Replace(r, []*segment.Segment{r.Edit(r.RawUpper())}))
		}
	}
	infos, errs := fix.ComputeAnchorEditInfo(fixes)
	require.Empty(t, errs)
	out, _ := fix.Apply(tree, infos)

	first := fix.GenerateSourcePatches(out, tf)
	for range 5 {
		assert.Equal(t, first, fix.GenerateSourcePatches(out, tf))
	}
	for i := 1; i < len(first); i++ {
		assert.LessOrEqual(t, first[i-1].SourceSlice.Stop, first[i].SourceSlice.Start, "patches overlap")
	}
	assert.Equal(t, "SELECT a, b\nFROM t\nWHERE x=1", fix.FixString(out, tf))
}

func TestHasTemplateConflicts(t *testing.T) {
	tf, err := templater.Placeholder{}.Process(context.Background(), "select :a from t", "q.sql", templater.Config{
		Context: map[string]any{"a": 1234},
	})
	require.NoError(t, err)
	tree := parseFile(t, tf)

	lit := tree.Crawl(syntax.NumericLiteral)
	require.Len(t, lit, 1)
	assert.True(t, fix.Replace(lit[0], []*segment.Segment{lit[0].Edit("5")}).HasTemplateConflicts(tf))

	tbl := tree.Crawl(syntax.NakedIdentifier)
	require.NotEmpty(t, tbl)
	last := tbl[len(tbl)-1]
	assert.False(t, fix.Replace(last, []*segment.Segment{last.Edit("u")}).HasTemplateConflicts(tf))
}

func TestUnifiedDiff(t *testing.T) {
	d, err := fix.UnifiedDiff("q.sql", "select 1\nfrom t\n", "SELECT 1\nfrom t\n")
	require.NoError(t, err)
	assert.Contains(t, d, "--- a/q.sql")
	assert.Contains(t, d, "-select 1")
	assert.Contains(t, d, "+SELECT 1")

	d, err = fix.UnifiedDiff("q.sql", "same", "same")
	require.NoError(t, err)
	assert.Empty(t, d)
}

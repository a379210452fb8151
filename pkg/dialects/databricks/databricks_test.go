package databricks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/dialects/databricks"
	"github.com/leapstack-labs/sqlgrain/pkg/parser"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

func parse(t *testing.T, sql string) *segment.Segment {
	t.Helper()
	d := dialect.MustGet(databricks.Name)
	segs, errs := d.Lexer().LexString(sql)
	require.Empty(t, errs)
	tree, err := d.Parser(parser.Config{}).Parse(segs, "t.sql")
	require.NoError(t, err)
	return tree
}

func TestKeywordSets(t *testing.T) {
	d := dialect.MustGet(databricks.Name)
	assert.True(t, d.IsReserved("qualify"))
	assert.True(t, d.IsKeyword("show"))
	assert.False(t, d.IsReserved("show"))
	assert.False(t, dialect.MustGet("ansi").IsReserved("qualify"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []syntax.Kind
	}{
		{
			name: "backtick identifiers",
			sql:  "select `my col` from `db`.`tbl`",
			want: []syntax.Kind{syntax.QuotedIdentifier, syntax.TableReference},
		},
		{
			name: "qualify",
			sql:  "select a, row_number() over (partition by a order by b) as rn from t qualify rn = 1",
			want: []syntax.Kind{syntax.QualifyClause, syntax.OverClause},
		},
		{
			name: "limit all",
			sql:  "select a from t order by a limit all",
			want: []syntax.Kind{syntax.LimitClause},
		},
		{
			name: "show tables",
			sql:  "show tables from sales like 'ord*'",
			want: []syntax.Kind{syntax.ShowStatement, syntax.SchemaReference},
		},
		{
			name: "show views without like",
			sql:  "show views in sales 'v*'",
			want: []syntax.Kind{syntax.ShowStatement},
		},
		{
			name: "json path",
			sql:  "select raw:store.bicycle.price, raw:items[0].id from t",
			want: []syntax.Kind{syntax.SemiStructuredExpression, syntax.ArrayAccessor},
		},
		{
			name: "named arguments",
			sql:  "select my_fn(a => 1, b => 'x')",
			want: []syntax.Kind{databricks.NamedArgument, syntax.Function},
		},
		{
			name: "semi join",
			sql:  "select a.x from a left semi join b on a.id = b.id",
			want: []syntax.Kind{syntax.JoinClause},
		},
		{
			name: "rlike",
			sql:  "select * from t where name rlike '^a.*'",
			want: []syntax.Kind{syntax.WhereClause},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.sql)
			assert.Equal(t, tt.sql, tree.Raw())
			assert.Empty(t, tree.Crawl(syntax.Unparsable), tree.Stringify(false))
			for _, k := range tt.want {
				assert.NotEmpty(t, tree.Crawl(k), "expected a %s node", k)
			}
		})
	}
}

func TestRightArrowLexes(t *testing.T) {
	segs, errs := dialect.MustGet(databricks.Name).Lexer().LexString("a=>1")
	require.Empty(t, errs)
	require.Len(t, segs, 4)
	assert.Equal(t, syntax.RightArrow, segs[1].Kind())
}

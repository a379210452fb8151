package syntax

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIdempotent(t *testing.T) {
	id1 := Register("test_idempotent")
	id2 := Register("test_idempotent")

	assert.Equal(t, id1, id2, "same name should return same kind")
	assert.True(t, id1.IsDynamic())
	assert.Equal(t, "test_idempotent", id1.String())
}

func TestRegisterBuiltinName(t *testing.T) {
	assert.Equal(t, SelectClause, Register("select_clause"))
	assert.False(t, SelectClause.IsDynamic())
}

func TestRegisterConcurrent(t *testing.T) {
	const numGoroutines = 100
	var wg sync.WaitGroup
	ids := make([]Kind, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ids[idx] = Register("test_concurrent")
		}(i)
	}
	wg.Wait()

	for i := 1; i < numGoroutines; i++ {
		require.Equal(t, ids[0], ids[i], "concurrent registration should return same kind")
	}
}

func TestLookup(t *testing.T) {
	k, ok := Lookup("alias_expression")
	require.True(t, ok)
	assert.Equal(t, AliasExpression, k)

	_, ok = Lookup("no_such_kind_12345")
	assert.False(t, ok)

	assert.Panics(t, func() { MustLookup("no_such_kind_12345") })
}

func TestBuiltinNamesComplete(t *testing.T) {
	for k := Unknown; k < maxBuiltin; k++ {
		assert.NotEmpty(t, builtinNames[k], "kind %d has no name", k)
	}
}

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		kind    Kind
		code    bool
		meta    bool
		comment bool
	}{
		{Keyword, true, false, false},
		{Whitespace, false, false, false},
		{Newline, false, false, false},
		{InlineComment, false, false, true},
		{Indent, false, true, false},
		{Placeholder, false, true, false},
		{Unlexable, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.kind.IsCode())
			assert.Equal(t, tt.meta, tt.kind.IsMeta())
			assert.Equal(t, tt.comment, tt.kind.IsComment())
		})
	}
}

func TestClassTypes(t *testing.T) {
	ct := ColumnReference.ClassTypes()
	assert.True(t, ct.Contains(ColumnReference))
	assert.True(t, ct.Contains(ObjectReference))
	assert.False(t, ct.Contains(TableReference))
}

func TestSet(t *testing.T) {
	var s Set
	assert.True(t, s.IsEmpty())

	s.Add(Keyword)
	s.Add(Kind(200))
	assert.True(t, s.Contains(Keyword))
	assert.True(t, s.Contains(Kind(200)))
	assert.False(t, s.Contains(Comma))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []Kind{Keyword, Kind(200)}, s.Slice())

	other := NewSet(Comma, Keyword)
	assert.True(t, s.Intersects(other))
	assert.False(t, NewSet(Comma).Intersects(NewSet(Dot)))

	u := NewSet(Comma).Union(NewSet(Dot))
	assert.True(t, u.ContainsAny(Dot))
	assert.Equal(t, "{comma, dot}", u.String())
}

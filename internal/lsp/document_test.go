package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	uri := "file:///q/a.sql"

	store.Open(uri, "select 1", 1)
	doc := store.Get(uri)
	require.NotNil(t, doc)
	assert.Equal(t, "select 1", doc.Content)

	store.Update(uri, "select 2", 3)
	assert.Equal(t, "select 2", store.Get(uri).Content)

	t.Run("stale versions are ignored", func(t *testing.T) {
		store.Update(uri, "select 0", 2)
		assert.Equal(t, 3, store.Get(uri).Version)
		assert.Equal(t, "select 2", store.Get(uri).Content)
	})

	t.Run("snapshots are not mutated", func(t *testing.T) {
		snap := store.Get(uri)
		store.Update(uri, "select 3", 4)
		assert.Equal(t, "select 2", snap.Content)
	})

	t.Run("update of closed document is a no-op", func(t *testing.T) {
		store.Update("file:///other.sql", "x", 1)
		assert.Nil(t, store.Get("file:///other.sql"))
	})

	store.Open("file:///q/b.sql", "", 1)
	assert.Len(t, store.List(), 2)
	store.Close(uri)
	assert.Nil(t, store.Get(uri))
}

func TestComputeLineOffsets(t *testing.T) {
	tests := []struct {
		content string
		want    []int
	}{
		{"", []int{0}},
		{"abc", []int{0}},
		{"a\nb", []int{0, 2}},
		{"\n\n\n", []int{0, 1, 2, 3}},
		{"line1\nline2\nline3", []int{0, 6, 12}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, computeLineOffsets(tt.content), "content %q", tt.content)
	}
}

func TestPositionConversions(t *testing.T) {
	// "é" is two bytes and one UTF-16 unit, "😀" four bytes and two units.
	doc := newDocument("file:///x.sql", "select 'é'\nselect '😀', a\r\nx", 1)

	tests := []struct {
		name   string
		offset int
		pos    Position
	}{
		{"start", 0, Position{0, 0}},
		{"before multibyte", 8, Position{0, 8}},
		{"after two byte rune", 10, Position{0, 9}},
		{"end of first line", 11, Position{0, 10}},
		{"second line", 12, Position{1, 0}},
		{"after surrogate pair", 24, Position{1, 10}},
		{"last line", 30, Position{2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pos, doc.OffsetToPosition(tt.offset))
			assert.Equal(t, tt.offset, doc.PositionToOffset(tt.pos))
		})
	}

	t.Run("clamping", func(t *testing.T) {
		assert.Equal(t, Position{0, 0}, doc.OffsetToPosition(-5))
		assert.Equal(t, Position{2, 1}, doc.OffsetToPosition(1000))
		assert.Equal(t, 11, doc.PositionToOffset(Position{0, 100}))
		assert.Equal(t, len(doc.Content), doc.PositionToOffset(Position{9, 0}))
	})
}

func TestLinePosToOffset(t *testing.T) {
	doc := newDocument("file:///x.sql", "select a\nfrom t\n", 1)
	assert.Equal(t, 0, doc.LinePosToOffset(1, 1))
	assert.Equal(t, 7, doc.LinePosToOffset(1, 8))
	assert.Equal(t, 9, doc.LinePosToOffset(2, 1))
	assert.Equal(t, 15, doc.LinePosToOffset(2, 99), "clamped to end of line")
	assert.Equal(t, len(doc.Content), doc.LinePosToOffset(9, 1))
}

func TestGetLineAndWordAt(t *testing.T) {
	doc := newDocument("file:///x.sql", "SELECT id, name\nFROM users", 1)
	assert.Equal(t, "SELECT id, name", doc.GetLine(0))
	assert.Equal(t, "FROM users", doc.GetLine(1))
	assert.Equal(t, "", doc.GetLine(5))

	word, start, end := doc.WordAt(8)
	assert.Equal(t, "id", word)
	assert.Equal(t, 7, start)
	assert.Equal(t, 9, end)

	word, _, _ = doc.WordAt(9)
	assert.Equal(t, "id", word)
	word, _, _ = doc.WordAt(10)
	assert.Equal(t, "", word)
}

func TestURIConversion(t *testing.T) {
	assert.Equal(t, "/tmp/a b.sql", URIToPath("file:///tmp/a%20b.sql"))
	assert.Equal(t, "file:///tmp/a%20b.sql", PathToURI("/tmp/a b.sql"))
	assert.Equal(t, "/tmp/x.sql", URIToPath(PathToURI("/tmp/x.sql")))
	assert.Equal(t, "untitled:1", URIToPath("untitled:1"))
}

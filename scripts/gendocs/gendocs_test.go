package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPage(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(b)
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	index := readPage(t, dir, "index.md")
	assert.Contains(t, index, generatedMarker)
	assert.Contains(t, index, "[`lint`](/cli/lint)")
	assert.Contains(t, index, "`--dialect`")

	lint := readPage(t, dir, "lint.md")
	assert.Contains(t, lint, "sqlgrain lint [paths...]")
	assert.Contains(t, lint, "`--watch`")
}

func TestGenerateRuleDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateRuleDocs(dir))

	index := readPage(t, dir, "index.md")
	assert.Contains(t, index, "[AL01](/rules/aliasing#al01)")

	layout := readPage(t, dir, "layout.md")
	assert.Contains(t, layout, "## LT01: layout.spacing")
	assert.Contains(t, layout, "**Fixable**: yes")
}

func TestMarkdownTableEscapesPipes(t *testing.T) {
	w := NewMarkdownWriter()
	w.Table([]string{"a"}, [][]string{{"x | y"}})
	assert.Equal(t, "| a |\n| --- |\n| x \\| y |\n\n", string(w.Bytes()))
}

func TestDedent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"common indent", "  a\n    b\n\n  c", "a\n  b\n\nc"},
		{"no indent", "a\n b", "a\n b"},
		{"blank", "   \n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dedent(tt.in))
		})
	}
}

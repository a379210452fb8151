package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_PlainText(t *testing.T) {
	input := "SELECT * FROM users"
	tokens, err := NewLexer(input, "test.sql").Tokenize()
	require.NoError(t, err, "unexpected error")

	require.Len(t, tokens, 2, "expected 2 tokens") // TEXT + EOF
	assert.Equal(t, TokenText, tokens[0].Type)
	assert.Equal(t, input, tokens[0].Value)
	assert.Equal(t, TokenEOF, tokens[1].Type)
}

func TestLexer_Tokens(t *testing.T) {
	input := "SELECT {{ col }} FROM {# note #}t{% if x %} WHERE 1{% endif %}"
	tokens, err := NewLexer(input, "test.sql").Tokenize()
	require.NoError(t, err, "unexpected error")

	expected := []struct {
		typ    TokenType
		val    string
		raw    string
		offset int
	}{
		{TokenText, "SELECT ", "SELECT ", 0},
		{TokenExpr, "col", "{{ col }}", 7},
		{TokenText, " FROM ", " FROM ", 16},
		{TokenComment, "note", "{# note #}", 22},
		{TokenText, "t", "t", 32},
		{TokenStmt, "if x", "{% if x %}", 33},
		{TokenText, " WHERE 1", " WHERE 1", 43},
		{TokenStmt, "endif", "{% endif %}", 51},
		{TokenEOF, "", "", 62},
	}

	require.Len(t, tokens, len(expected), "wrong number of tokens")
	for i, exp := range expected {
		assert.Equal(t, exp.typ, tokens[i].Type, "token[%d] type", i)
		assert.Equal(t, exp.val, tokens[i].Value, "token[%d] value", i)
		assert.Equal(t, exp.raw, tokens[i].Raw, "token[%d] raw", i)
		assert.Equal(t, exp.offset, tokens[i].Offset, "token[%d] offset", i)
	}
}

func TestLexer_WhitespaceControl(t *testing.T) {
	tokens, err := NewLexer("{%- if x -%}a{{- y }}", "test.sql").Tokenize()
	require.NoError(t, err)

	require.Len(t, tokens, 4)
	assert.True(t, tokens[0].TrimBefore)
	assert.True(t, tokens[0].TrimAfter)
	assert.Equal(t, "if x", tokens[0].Value)
	assert.True(t, tokens[2].TrimBefore)
	assert.False(t, tokens[2].TrimAfter)
	assert.Equal(t, "y", tokens[2].Value)
}

func TestLexer_Unclosed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
		col   int
	}{
		{"expression", "SELECT {{ a ", "unclosed expression: missing '}}'", 8},
		{"statement", "{% for x in items SELECT", "unclosed statement: missing '%}'", 1},
		{"comment", "a {# note", "unclosed comment: missing '#}'", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.input, "test.sql").Tokenize()
			var lexErr *LexError
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, tt.msg, lexErr.Message())
			assert.Equal(t, 1, lexErr.Position().Line)
			assert.Equal(t, tt.col, lexErr.Position().Column)
		})
	}
}

func TestLexer_NestedBracesAndStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`{{ {"key": "value"}["key"] }}`, `{"key": "value"}["key"]`},
		{`{{ "}}" }}`, `"}}"`},
		{`{{ 'it\'s' }}`, `'it\'s'`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewLexer(tt.input, "test.sql").Tokenize()
			require.NoError(t, err)
			require.Len(t, tokens, 2)
			assert.Equal(t, TokenExpr, tokens[0].Type)
			assert.Equal(t, tt.want, tokens[0].Value)
		})
	}
}

func TestLexer_PositionTracking(t *testing.T) {
	tokens, err := NewLexer("line1\nline2\n  {{ expr }}", "test.sql").Tokenize()
	require.NoError(t, err)

	expr := tokens[1]
	require.Equal(t, TokenExpr, expr.Type)
	assert.Equal(t, 3, expr.Pos.Line)
	assert.Equal(t, 3, expr.Pos.Column)
}

func TestLexer_CommentKeepsBraces(t *testing.T) {
	tokens, err := NewLexer("{# { unbalanced #}x", "test.sql").Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, TokenComment, tokens[0].Type)
	assert.Equal(t, "x", tokens[1].Value)
}

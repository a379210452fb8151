package starlark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteFilters(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    string
		wantErr bool
	}{
		{name: "no filter", expr: "a + b", want: "a + b"},
		{name: "single", expr: "name | upper", want: "__filters__.upper((name))"},
		{name: "chained", expr: "name | trim | lower", want: "__filters__.lower((__filters__.trim((name))))"},
		{name: "arguments", expr: `x | default("a")`, want: `__filters__.default((x), "a")`},
		{name: "pipe in string", expr: `"a|b"`, want: `"a|b"`},
		{name: "pipe in brackets", expr: `f(a | b)`, want: `f(a | b)`},
		{name: "unknown filter", expr: "x | shout", wantErr: true},
		{name: "missing value", expr: " | upper", wantErr: true},
		{name: "malformed", expr: "x | default(1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RewriteFilters(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilters(t *testing.T) {
	ctx, err := NewExecutionContext(map[string]any{
		"name": " Orders ",
		"cols": []string{"a", "b"},
	})
	require.NoError(t, err)

	tests := []struct {
		expr string
		want string
	}{
		{expr: "name | trim | upper", want: "ORDERS"},
		{expr: "name | lower", want: " orders "},
		{expr: `"orders" | capitalize`, want: "Orders"},
		{expr: `cols | join(", ")`, want: "a, b"},
		{expr: "cols | length", want: "2"},
		{expr: `missing | default("x")`, want: "x"},
		{expr: `name | replace("Orders", "items")`, want: " items "},
		{expr: "3 | string", want: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ctx.EvalString(context.Background(), tt.expr, "test.sql", 1, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

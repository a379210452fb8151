package starlark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func newTestContext(t *testing.T) *ExecutionContext {
	t.Helper()
	ctx, err := NewExecutionContext(map[string]any{
		"env":    "prod",
		"target": map[string]any{"schema": "analytics", "type": "trino"},
		"tables": []any{"orders", "items"},
	})
	require.NoError(t, err)
	return ctx
}

func TestNewExecutionContext(t *testing.T) {
	ctx := newTestContext(t)
	globals := ctx.Globals()
	for _, key := range []string{"env", "target", "tables", "var"} {
		_, ok := globals[key]
		assert.True(t, ok, "global %q not found", key)
	}
}

func TestNewExecutionContext_ShadowsBuiltins(t *testing.T) {
	ctx, err := NewExecutionContext(map[string]any{"ref": "mine"})
	require.NoError(t, err)
	got, err := ctx.EvalString(context.Background(), "ref", "test.sql", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "mine", got)
}

func TestNewExecutionContext_Unsupported(t *testing.T) {
	_, err := NewExecutionContext(map[string]any{"bad": make(chan int)})
	assert.ErrorContains(t, err, `templater context "bad"`)
}

func TestExecutionContext_EvalString(t *testing.T) {
	ctx := newTestContext(t)

	tests := []struct {
		name    string
		expr    string
		want    string
		wantErr bool
	}{
		{name: "simple string", expr: `"hello"`, want: "hello"},
		{name: "context variable", expr: `env`, want: "prod"},
		{name: "attribute access", expr: `target.schema`, want: "analytics"},
		{name: "index access", expr: `target["type"]`, want: "trino"},
		{name: "concatenation", expr: `target.schema + "." + tables[0]`, want: "analytics.orders"},
		{name: "conditional", expr: `"production" if env == "prod" else "development"`, want: "production"},
		{name: "arithmetic", expr: `1 + 2`, want: "3"},
		{name: "undefined renders its name", expr: `my_schema`, want: "my_schema"},
		{name: "undefined attribute", expr: `this.name`, want: "this.name"},
		{name: "none renders empty", expr: `None`, want: ""},
		{name: "syntax error", expr: `if`, wantErr: true},
		{name: "runtime error", expr: `1 + "a"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ctx.EvalString(context.Background(), tt.expr, "test.sql", 1, nil)
			if tt.wantErr {
				var evalErr *EvalError
				assert.ErrorAs(t, err, &evalErr)
				return
			}
			require.NoError(t, err, "unexpected error")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecutionContext_Locals(t *testing.T) {
	ctx := newTestContext(t)
	locals := starlark.StringDict{"env": starlark.String("dev"), "col": starlark.String("id")}

	got, err := ctx.EvalString(context.Background(), `env + ":" + col`, "test.sql", 3, locals)
	require.NoError(t, err)
	assert.Equal(t, "dev:id", got)
}

func TestExecutionContext_EvalBool(t *testing.T) {
	ctx := newTestContext(t)

	tests := []struct {
		expr string
		want bool
	}{
		{expr: `env == "prod"`, want: true},
		{expr: `len(tables) > 5`, want: false},
		{expr: `missing`, want: false},
		{expr: `tables`, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ctx.EvalBool(context.Background(), tt.expr, "test.sql", 1, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecutionContext_Cancelled(t *testing.T) {
	pool := NewThreadPool(4)
	ctx, err := NewExecutionContext(nil, WithThreadPool(pool))
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ctx.EvalExpr(cancelled, `[x for x in range(100000000)]`, "test.sql", 1, nil)
	assert.Error(t, err)
}

func TestEvalError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  EvalError
		want string
	}{
		{
			name: "with line",
			err:  EvalError{File: "model.sql", Line: 10, Expr: "x +", Message: "got end of file"},
			want: `model.sql:10: error evaluating "x +": got end of file`,
		},
		{
			name: "without line",
			err:  EvalError{File: "model.sql", Expr: "bad", Message: "syntax error"},
			want: `model.sql: error evaluating "bad": syntax error`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error(), "Error()")
		})
	}
}

func TestNewExecutionContext_WithModules(t *testing.T) {
	upper := starlark.NewBuiltin("shout", func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
		var s string
		if err := starlark.UnpackPositionalArgs("shout", args, nil, 1, &s); err != nil {
			return nil, err
		}
		return starlark.String(s + "!"), nil
	})
	modules := starlark.StringDict{"shout": upper, "env": starlark.String("module")}

	ctx, err := NewExecutionContext(map[string]any{"env": "prod"}, WithModules(modules))
	require.NoError(t, err)

	got, err := ctx.EvalString(context.Background(), `shout("hi")`, "test.sql", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi!", got)

	got, err = ctx.EvalString(context.Background(), "env", "test.sql", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "prod", got)
}

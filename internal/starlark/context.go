package starlark

import (
	"context"
	"fmt"
	"maps"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// ExecutionContext holds the globals one template render evaluates against.
// It is safe for concurrent use once built.
type ExecutionContext struct {
	globals starlark.StringDict
	modules starlark.StringDict
	pool    *ThreadPool
}

// ContextOption configures an ExecutionContext.
type ContextOption func(*ExecutionContext)

// WithThreadPool shares a thread pool between contexts.
func WithThreadPool(pool *ThreadPool) ContextOption {
	return func(ctx *ExecutionContext) {
		ctx.pool = pool
	}
}

// WithModules adds macro namespaces to the globals. They shadow the
// predeclared helpers and are shadowed by context variables.
func WithModules(modules starlark.StringDict) ContextOption {
	return func(ctx *ExecutionContext) {
		ctx.modules = modules
	}
}

// NewExecutionContext converts vars (usually templater_context) into
// globals. Context variables shadow the predeclared helpers.
func NewExecutionContext(vars map[string]any, opts ...ContextOption) (*ExecutionContext, error) {
	ctx := &ExecutionContext{}
	for _, opt := range opts {
		opt(ctx)
	}

	user := make(starlark.StringDict, len(vars))
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := GoToStarlark(vars[k])
		if err != nil {
			return nil, fmt.Errorf("templater context %q: %w", k, err)
		}
		user[k] = v
	}

	globals := Predeclared(user)
	maps.Copy(globals, ctx.modules)
	maps.Copy(globals, user)
	globals.Freeze()

	ctx.globals = globals
	if ctx.pool == nil {
		ctx.pool = NewThreadPool(0)
	}
	return ctx, nil
}

// Globals returns the globals expressions are evaluated against.
func (ctx *ExecutionContext) Globals() starlark.StringDict {
	return ctx.globals
}

// EvalExpr evaluates a template expression, pipe filters included. Names that
// are neither global nor local evaluate to Undefined.
func (ctx *ExecutionContext) EvalExpr(goctx context.Context, expr, filename string, line int, locals starlark.StringDict) (starlark.Value, error) {
	evalErr := func(err error) error {
		return &EvalError{File: filename, Line: line, Expr: expr, Message: err.Error()}
	}

	if err := goctx.Err(); err != nil {
		return nil, evalErr(err)
	}
	src, err := RewriteFilters(expr)
	if err != nil {
		return nil, evalErr(err)
	}
	opts := syntax.LegacyFileOptions()
	parsed, err := opts.ParseExpr(filename, src, 0)
	if err != nil {
		return nil, evalErr(err)
	}

	env := make(starlark.StringDict, len(ctx.globals)+len(locals))
	maps.Copy(env, ctx.globals)
	maps.Copy(env, locals)
	syntax.Walk(parsed, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok {
			if _, known := env[id.Name]; !known && !starlark.Universe.Has(id.Name) {
				env[id.Name] = Undefined{Name: id.Name}
			}
		}
		return true
	})

	thread := ctx.pool.Get(filename)
	stop := context.AfterFunc(goctx, func() { thread.Cancel(goctx.Err().Error()) })
	result, err := starlark.EvalOptions(opts, thread, filename, src, env)
	if stop() {
		ctx.pool.Put(thread)
	}
	if err != nil {
		return nil, evalErr(err)
	}
	return result, nil
}

// EvalString evaluates expr and renders the result as template text.
func (ctx *ExecutionContext) EvalString(goctx context.Context, expr, filename string, line int, locals starlark.StringDict) (string, error) {
	v, err := ctx.EvalExpr(goctx, expr, filename, line, locals)
	if err != nil {
		return "", err
	}
	return ToText(v), nil
}

// EvalBool evaluates a condition with Starlark truthiness.
func (ctx *ExecutionContext) EvalBool(goctx context.Context, expr, filename string, line int, locals starlark.StringDict) (bool, error) {
	v, err := ctx.EvalExpr(goctx, expr, filename, line, locals)
	if err != nil {
		return false, err
	}
	return bool(v.Truth()), nil
}

// EvalError represents an error during expression evaluation.
type EvalError struct {
	File    string
	Line    int
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: error evaluating %q: %s", e.File, e.Line, e.Expr, e.Message)
	}
	return fmt.Sprintf("%s: error evaluating %q: %s", e.File, e.Expr, e.Message)
}

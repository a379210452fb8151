package starlark

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// FiltersGlobal is the global that holds the filter functions. Expressions
// with "| name" are rewritten into calls on it.
const FiltersGlobal = "__filters__"

// Predeclared returns the globals every template sees before the context
// variables are added: lowercase literals, the dbt style helpers and the
// filter namespace.
//
// vars backs var(), so {{ var("schema", "main") }} reads templater_context.
func Predeclared(vars starlark.StringDict) starlark.StringDict {
	return starlark.StringDict{
		"true":           starlark.True,
		"false":          starlark.False,
		"none":           starlark.None,
		"var":            starlark.NewBuiltin("var", varBuiltin(vars)),
		"env_var":        starlark.NewBuiltin("env_var", envVar),
		"ref":            starlark.NewBuiltin("ref", ref),
		"source":         starlark.NewBuiltin("source", source),
		"config":         starlark.NewBuiltin("config", config),
		"is_incremental": starlark.NewBuiltin("is_incremental", isIncremental),
		FiltersGlobal:    filters,
	}
}

func varBuiltin(vars starlark.StringDict) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		var def starlark.Value
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "default?", &def); err != nil {
			return nil, err
		}
		if v, ok := vars[name]; ok {
			return v, nil
		}
		if def != nil {
			return def, nil
		}
		return Undefined{Name: name}, nil
	}
}

func envVar(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var def starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "default?", &def); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv(name); ok {
		return starlark.String(v), nil
	}
	if def != nil {
		return def, nil
	}
	return nil, fmt.Errorf("env_var: environment variable %q is not set", name)
}

// ref and source render the relation name so dbt models still parse.
func ref(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var parts []string
	for _, a := range args {
		s, ok := starlark.AsString(a)
		if !ok {
			return nil, fmt.Errorf("%s: got %s, want string", b.Name(), a.Type())
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 || len(parts) > 2 {
		return nil, fmt.Errorf("%s: got %d arguments, want 1 or 2", b.Name(), len(parts))
	}
	return starlark.String(parts[len(parts)-1]), nil
}

func source(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var src, table string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "source_name", &src, "table_name", &table); err != nil {
		return nil, err
	}
	return starlark.String(src + "." + table), nil
}

func config(_ *starlark.Thread, _ *starlark.Builtin, _ starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	return starlark.String(""), nil
}

func isIncremental(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	return starlark.False, nil
}

var filterFuncs = map[string]func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error){
	"upper":      stringFilter(strings.ToUpper),
	"lower":      stringFilter(strings.ToLower),
	"trim":       stringFilter(strings.TrimSpace),
	"capitalize": stringFilter(capitalize),
	"string":     stringFilter(func(s string) string { return s }),
	"default":    defaultFilter,
	"join":       joinFilter,
	"replace":    replaceFilter,
	"length":     lengthFilter,
}

var filters = func() starlark.Value {
	members := make(starlark.StringDict, len(filterFuncs))
	for name, fn := range filterFuncs {
		members[name] = starlark.NewBuiltin(name, fn)
	}
	return starlarkstruct.FromStringDict(starlark.String("filters"), members)
}()

// FilterNames returns the supported filter names, sorted.
func FilterNames() []string {
	names := make([]string, 0, len(filterFuncs))
	for name := range filterFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stringFilter(fn func(string) string) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var v starlark.Value
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
			return nil, err
		}
		return starlark.String(fn(ToText(v))), nil
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func defaultFilter(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v, def starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &v, &def); err != nil {
		return nil, err
	}
	if _, undefined := v.(Undefined); undefined || v == starlark.None {
		return def, nil
	}
	return v, nil
}

func joinFilter(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var seq starlark.Iterable
	sep := ""
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &seq, &sep); err != nil {
		return nil, err
	}
	it := seq.Iterate()
	defer it.Done()
	var parts []string
	var x starlark.Value
	for it.Next(&x) {
		parts = append(parts, ToText(x))
	}
	return starlark.String(strings.Join(parts, sep)), nil
}

func replaceFilter(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	var old, repl string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 3, &v, &old, &repl); err != nil {
		return nil, err
	}
	return starlark.String(strings.ReplaceAll(ToText(v), old, repl)), nil
}

func lengthFilter(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
		return nil, err
	}
	n := starlark.Len(v)
	if n < 0 {
		return nil, fmt.Errorf("%s: %s has no length", b.Name(), v.Type())
	}
	return starlark.MakeInt(n), nil
}

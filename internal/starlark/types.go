// Package starlark evaluates template expressions with go.starlark.net.
// Values from templater_context are converted to Starlark values, nested maps
// allow attribute access as well as indexing.
package starlark

import (
	"fmt"
	"slices"

	"go.starlark.net/starlark"
)

// GoToStarlark converts a templater_context value. Maps become *AttrDict;
// YAML-decoded map[any]any is accepted when every key is a string.
func GoToStarlark(v any) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return val, nil
	case string:
		return starlark.String(val), nil
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int32:
		return starlark.MakeInt64(int64(val)), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case uint:
		return starlark.MakeUint(val), nil
	case uint64:
		return starlark.MakeUint64(val), nil
	case float32:
		return starlark.Float(val), nil
	case float64:
		return starlark.Float(val), nil
	case []string:
		return listOf(val, func(s string) (starlark.Value, error) { return starlark.String(s), nil })
	case []any:
		return listOf(val, GoToStarlark)
	}
	m, err := stringKeyed(v)
	if err != nil {
		return nil, err
	}
	dict := starlark.NewDict(len(m))
	for k, item := range m {
		sv, err := GoToStarlark(item)
		if err != nil {
			return nil, fmt.Errorf("dict key %q: %w", k, err)
		}
		if err := dict.SetKey(starlark.String(k), sv); err != nil {
			return nil, fmt.Errorf("dict key %q: %w", k, err)
		}
	}
	return &AttrDict{Dict: dict}, nil
}

func listOf[T any](items []T, conv func(T) (starlark.Value, error)) (starlark.Value, error) {
	elems := make([]starlark.Value, len(items))
	for i, item := range items {
		sv, err := conv(item)
		if err != nil {
			return nil, fmt.Errorf("list index %d: %w", i, err)
		}
		elems[i] = sv
	}
	return starlark.NewList(elems), nil
}

// stringKeyed normalises the supported map shapes.
func stringKeyed(v any) (map[string]any, error) {
	switch val := v.(type) {
	case map[string]any:
		return val, nil
	case map[string]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return m, nil
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %T", k)
			}
			m[ks] = item
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported type: %T", v)
}

// ToGo converts a Starlark value back to plain Go. Ints that overflow int64
// come back as their decimal string; unknown values as their String form.
func ToGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(val), nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Float:
		return float64(val), nil
	case starlark.Int:
		if i, ok := val.Int64(); ok {
			return i, nil
		}
		return val.String(), nil
	case starlark.Indexable:
		out := make([]any, val.Len())
		for i := range out {
			gv, err := ToGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = gv
		}
		return out, nil
	case *AttrDict:
		return ToGo(val.Dict)
	case *starlark.Dict:
		out := make(map[string]any, val.Len())
		for _, kv := range val.Items() {
			key, ok := kv[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %T", kv[0])
			}
			gv, err := ToGo(kv[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", key, err)
			}
			out[string(key)] = gv
		}
		return out, nil
	}
	return v.String(), nil
}

// ToText renders a value the way a template prints it: strings unquoted,
// None and undefined names as their template text.
func ToText(v starlark.Value) string {
	switch val := v.(type) {
	case starlark.String:
		return string(val)
	case starlark.NoneType:
		return ""
	case Undefined:
		return val.Name
	default:
		return v.String()
	}
}

// AttrDict is a dict whose keys can also be read as attributes, so both
// cfg.schema and cfg["schema"] work. Dict methods win over keys.
type AttrDict struct {
	*starlark.Dict
}

var (
	_ starlark.HasAttrs        = (*AttrDict)(nil)
	_ starlark.IterableMapping = (*AttrDict)(nil)
)

// Attr implements starlark.HasAttrs.
func (d *AttrDict) Attr(name string) (starlark.Value, error) {
	if v, err := d.Dict.Attr(name); v != nil || err != nil {
		return v, err
	}
	v, found, err := d.Get(starlark.String(name))
	if err != nil || !found {
		return nil, err
	}
	return v, nil
}

// AttrNames implements starlark.HasAttrs.
func (d *AttrDict) AttrNames() []string {
	names := d.Dict.AttrNames()
	for _, k := range d.Keys() {
		if s, ok := k.(starlark.String); ok {
			names = append(names, string(s))
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Undefined stands in for a name missing from the context. It prints as the
// name itself so the rendered SQL stays parseable.
type Undefined struct {
	Name string
}

var _ starlark.HasAttrs = Undefined{}

func (u Undefined) String() string        { return u.Name }
func (u Undefined) Type() string          { return "undefined" }
func (u Undefined) Freeze()               {}
func (u Undefined) Truth() starlark.Bool  { return starlark.False }
func (u Undefined) Hash() (uint32, error) { return starlark.String(u.Name).Hash() }

// Attr returns another undefined value named by the dotted path.
func (u Undefined) Attr(name string) (starlark.Value, error) {
	return Undefined{Name: u.Name + "." + name}, nil
}

// AttrNames implements starlark.HasAttrs.
func (u Undefined) AttrNames() []string { return nil }

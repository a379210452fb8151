package starlark

import (
	"fmt"
	"slices"
	"strings"
)

// RewriteFilters turns the pipe filters of a template expression into
// Starlark calls: `name | upper` becomes `__filters__.upper((name))` and
// `x | default("a")` becomes `__filters__.default((x), "a")`. Pipes inside
// strings or brackets are left alone.
func RewriteFilters(expr string) (string, error) {
	parts := splitPipes(expr)
	if len(parts) == 1 {
		return expr, nil
	}
	out := strings.TrimSpace(parts[0])
	if out == "" {
		return "", fmt.Errorf("filter without a value in %q", expr)
	}
	for _, f := range parts[1:] {
		f = strings.TrimSpace(f)
		name, args := f, ""
		if i := strings.IndexByte(f, '('); i >= 0 {
			if !strings.HasSuffix(f, ")") {
				return "", fmt.Errorf("malformed filter %q", f)
			}
			name, args = strings.TrimSpace(f[:i]), strings.TrimSpace(f[i+1:len(f)-1])
		}
		if !slices.Contains(FilterNames(), name) {
			return "", fmt.Errorf("unknown filter %q (available: %s)", name, strings.Join(FilterNames(), ", "))
		}
		call := FiltersGlobal + "." + name + "((" + out + ")"
		if args != "" {
			call += ", " + args
		}
		out = call + ")"
	}
	return out, nil
}

func splitPipes(expr string) []string {
	var parts []string
	depth, start := 0, 0
	var quote byte
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == '|' && depth == 0:
			parts = append(parts, expr[start:i])
			start = i + 1
		}
	}
	return append(parts, expr[start:])
}

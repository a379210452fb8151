package macro

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/syntax"
)

// Function describes one public def of a macro file.
type Function struct {
	Name string `json:"name" yaml:"name"`
	// Params are rendered as written: "x", "scale=2", "*args".
	Params []string `json:"params" yaml:"params"`
	Doc    string   `json:"doc,omitempty" yaml:"doc,omitempty"`
	Line   int      `json:"line" yaml:"line"`
}

// Signature renders the function as name(params).
func (f *Function) Signature() string {
	return f.Name + "(" + strings.Join(f.Params, ", ") + ")"
}

// Summary is the first line of the docstring.
func (f *Function) Summary() string {
	first, _, _ := strings.Cut(f.Doc, "\n")
	return strings.TrimSpace(first)
}

// Namespace describes a macro file without executing it.
type Namespace struct {
	Name      string      `json:"namespace" yaml:"namespace"`
	Path      string      `json:"path" yaml:"path"`
	Functions []*Function `json:"functions" yaml:"functions"`
}

// Describe parses a macro file and lists its public functions.
func Describe(path string, content []byte) (*Namespace, error) {
	f, err := syntax.Parse(path, content, 0)
	if err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	ns := &Namespace{Name: strings.TrimSuffix(filepath.Base(path), ".star"), Path: path}
	for _, stmt := range f.Stmts {
		def, ok := stmt.(*syntax.DefStmt)
		if !ok || strings.HasPrefix(def.Name.Name, "_") {
			continue
		}
		params := make([]string, 0, len(def.Params))
		for _, p := range def.Params {
			params = append(params, paramString(p))
		}
		ns.Functions = append(ns.Functions, &Function{
			Name:   def.Name.Name,
			Params: params,
			Doc:    docstring(def.Body),
			Line:   int(def.Name.NamePos.Line),
		})
	}
	return ns, nil
}

// DescribeDirs describes every .star file of dirs in load order.
func DescribeDirs(dirs ...string) ([]*Namespace, error) {
	var out []*Namespace
	for _, dir := range dirs {
		files, err := starFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a configured macro directory
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			ns, err := Describe(path, content)
			if err != nil {
				return nil, err
			}
			out = append(out, ns)
		}
	}
	return out, nil
}

func paramString(p syntax.Expr) string {
	switch p := p.(type) {
	case *syntax.Ident:
		return p.Name
	case *syntax.BinaryExpr:
		return paramString(p.X) + "=" + defaultString(p.Y)
	case *syntax.UnaryExpr:
		if p.X == nil {
			return p.Op.String()
		}
		return p.Op.String() + paramString(p.X)
	}
	return "?"
}

func defaultString(e syntax.Expr) string {
	switch e := e.(type) {
	case *syntax.Literal:
		return e.Raw
	case *syntax.Ident:
		return e.Name
	case *syntax.ListExpr:
		return "[...]"
	case *syntax.DictExpr:
		return "{...}"
	case *syntax.UnaryExpr:
		return e.Op.String() + defaultString(e.X)
	}
	return "..."
}

func docstring(body []syntax.Stmt) string {
	if len(body) == 0 {
		return ""
	}
	expr, ok := body[0].(*syntax.ExprStmt)
	if !ok {
		return ""
	}
	lit, ok := expr.X.(*syntax.Literal)
	if !ok || lit.Token != syntax.STRING {
		return ""
	}
	s, _ := lit.Value.(string)
	return strings.TrimSpace(s)
}

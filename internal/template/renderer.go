package template

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	starctx "github.com/leapstack-labs/sqlgrain/internal/starlark"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

// Output is a rendered template with the mapping of every output range
// back to the source range that produced it.
type Output struct {
	Text   string
	Slices []templater.TemplatedFileSlice
}

type renderer struct {
	goctx  context.Context
	ectx   *starctx.ExecutionContext
	file   string
	out    strings.Builder
	slices []templater.TemplatedFileSlice
}

// Render evaluates a parsed template. Block tags, comments and set
// statements produce zero length slices so their source stays mapped.
func Render(goctx context.Context, tmpl *Template, ectx *starctx.ExecutionContext) (*Output, error) {
	r := &renderer{
		goctx:  goctx,
		ectx:   ectx,
		file:   tmpl.File,
		slices: []templater.TemplatedFileSlice{},
	}
	if err := r.renderNodes(tmpl.Nodes, starlark.StringDict{}); err != nil {
		return nil, err
	}
	return &Output{Text: r.out.String(), Slices: r.slices}, nil
}

// RenderString parses and renders input.
func RenderString(goctx context.Context, input, file string, ectx *starctx.ExecutionContext) (string, error) {
	tmpl, err := Parse(input, file)
	if err != nil {
		return "", err
	}
	out, err := Render(goctx, tmpl, ectx)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

func (r *renderer) emit(sliceType string, src templater.Slice, text string) {
	start := r.out.Len()
	r.out.WriteString(text)
	r.slices = append(r.slices, templater.TemplatedFileSlice{
		SliceType:      sliceType,
		SourceSlice:    src,
		TemplatedSlice: templater.Slice{Start: start, Stop: r.out.Len()},
	})
}

func (r *renderer) renderNodes(nodes []Node, scope starlark.StringDict) error {
	for _, n := range nodes {
		if err := r.goctx.Err(); err != nil {
			return err
		}
		if err := r.renderNode(n, scope); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) renderNode(n Node, scope starlark.StringDict) error {
	switch n := n.(type) {
	case *TextNode:
		if !n.Source.IsZero() {
			r.emit(templater.SliceLiteral, n.Source, n.Text)
		}

	case *ExprNode:
		text, err := r.ectx.EvalString(r.goctx, n.Expr, r.file, n.Pos().Line, scope)
		if err != nil {
			return evalFailure(n.Pos(), n.Expr, err)
		}
		r.emit(templater.SliceTemplated, n.Source, text)

	case *CommentNode:
		r.emit(templater.SliceComment, n.Source, "")

	case *SetNode:
		v, err := r.ectx.EvalExpr(r.goctx, n.Expr, r.file, n.Pos().Line, scope)
		if err != nil {
			return evalFailure(n.Pos(), n.Expr, err)
		}
		scope[n.Name] = v
		r.emit(templater.SliceTemplated, n.Source, "")

	case *IfBlock:
		return r.renderIf(n, scope)

	case *ForBlock:
		return r.renderFor(n, scope)

	default:
		return NewRenderErrorf(n.Pos(), "unexpected node %T", n)
	}
	return nil
}

func (r *renderer) renderIf(n *IfBlock, scope starlark.StringDict) error {
	r.emit(templater.SliceBlockStart, n.Branches[0].Tag.Source, "")
	for i, b := range n.Branches {
		taken := b.IsElse
		if !taken {
			ok, err := r.ectx.EvalBool(r.goctx, b.Condition, r.file, b.Tag.Pos.Line, scope)
			if err != nil {
				return evalFailure(b.Tag.Pos, b.Condition, err)
			}
			taken = ok
		}
		if !taken {
			continue
		}
		if i > 0 {
			r.emit(templater.SliceBlockMid, b.Tag.Source, "")
		}
		if err := r.renderNodes(b.Body, scope); err != nil {
			return err
		}
		break
	}
	r.emit(templater.SliceBlockEnd, n.End.Source, "")
	return nil
}

func (r *renderer) renderFor(n *ForBlock, scope starlark.StringDict) error {
	r.emit(templater.SliceBlockStart, n.Open.Source, "")

	iter, err := r.ectx.EvalExpr(r.goctx, n.IterExpr, r.file, n.Pos().Line, scope)
	if err != nil {
		return evalFailure(n.Pos(), n.IterExpr, err)
	}
	items, err := iterate(iter)
	if err != nil {
		return NewRenderErrorf(n.Pos(), "cannot loop over %q: %v", n.IterExpr, err)
	}

	for i, item := range items {
		local := maps.Clone(scope)
		if err := bind(local, n.VarNames, item); err != nil {
			return NewRenderErrorf(n.Pos(), "%v", err)
		}
		local["loop"] = loopInfo(i, len(items))
		if err := r.renderNodes(n.Body, local); err != nil {
			return err
		}
	}

	if len(items) == 0 && n.ElseTag != nil {
		r.emit(templater.SliceBlockMid, n.ElseTag.Source, "")
		if err := r.renderNodes(n.Else, scope); err != nil {
			return err
		}
	}
	r.emit(templater.SliceBlockEnd, n.End.Source, "")
	return nil
}

// iterate collects the items of v. Undefined names loop zero times.
func iterate(v starlark.Value) ([]starlark.Value, error) {
	if _, ok := v.(starctx.Undefined); ok {
		return nil, nil
	}
	iterable, ok := v.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("%s is not iterable", v.Type())
	}
	it := iterable.Iterate()
	defer it.Done()
	var items []starlark.Value
	var x starlark.Value
	for it.Next(&x) {
		items = append(items, x)
	}
	return items, nil
}

func bind(scope starlark.StringDict, names []string, item starlark.Value) error {
	if len(names) == 1 {
		scope[names[0]] = item
		return nil
	}
	seq, ok := item.(starlark.Indexable)
	if !ok || seq.Len() != len(names) {
		return fmt.Errorf("cannot unpack %s into %d names", item.String(), len(names))
	}
	for i, name := range names {
		scope[name] = seq.Index(i)
	}
	return nil
}

func loopInfo(i, n int) starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String("loop"), starlark.StringDict{
		"index":    starlark.MakeInt(i + 1),
		"index0":   starlark.MakeInt(i),
		"revindex": starlark.MakeInt(n - i),
		"first":    starlark.Bool(i == 0),
		"last":     starlark.Bool(i == n-1),
		"length":   starlark.MakeInt(n),
	})
}

func evalFailure(pos Position, expr string, err error) *RenderError {
	msg := err.Error()
	var ee *starctx.EvalError
	if errors.As(err, &ee) {
		msg = ee.Message
	}
	return &RenderError{located: at(pos, "error evaluating %q: %s", expr, msg), Cause: err}
}

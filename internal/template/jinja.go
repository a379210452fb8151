package template

import (
	"context"
	"errors"

	"github.com/leapstack-labs/sqlgrain/internal/macro"
	starctx "github.com/leapstack-labs/sqlgrain/internal/starlark"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

// Jinja is the templater registered as "jinja".
type Jinja struct {
	pool   *starctx.ThreadPool
	macros *macro.Cache
}

func init() {
	templater.Register(NewJinja())
}

// NewJinja creates a jinja templater with its own thread pool and macro cache.
func NewJinja() *Jinja {
	return &Jinja{pool: starctx.NewThreadPool(0), macros: macro.NewCache()}
}

// Name implements templater.Templater.
func (*Jinja) Name() string { return "jinja" }

// Description implements templater.Templater.
func (*Jinja) Description() string {
	return "Renders {{ }}, {% %} and {# #} templates, evaluating expressions against templater_context."
}

// Process implements templater.Templater. Template problems are returned as
// *templater.TemplateError.
func (j *Jinja) Process(ctx context.Context, in, fname string, cfg templater.Config) (*templater.TemplatedFile, error) {
	tmpl, err := Parse(in, fname)
	if err != nil {
		return nil, toTemplateError(err)
	}
	if !hasTags(tmpl.Tokens) {
		return templater.New(in, fname, nil, nil, nil)
	}

	opts := []starctx.ContextOption{starctx.WithThreadPool(j.pool)}
	if len(cfg.MacroPaths) > 0 {
		reg, err := j.macros.Load(cfg.MacroPaths)
		if err != nil {
			return nil, err
		}
		opts = append(opts, starctx.WithModules(reg.ToStarlarkDict()))
	}
	ectx, err := starctx.NewExecutionContext(cfg.Context, opts...)
	if err != nil {
		return nil, err
	}
	out, err := Render(ctx, tmpl, ectx)
	if err != nil {
		return nil, toTemplateError(err)
	}
	return templater.New(in, fname, &out.Text, out.Slices, RawSlices(tmpl.Tokens))
}

// RawSlices classifies every token of the source, in order.
func RawSlices(tokens []Token) []templater.RawFileSlice {
	var raw []templater.RawFileSlice
	blockIdx := 0
	for _, tok := range tokens {
		if tok.Type == TokenEOF {
			continue
		}
		sliceType := sliceTypeOf(tok)
		switch sliceType {
		case templater.SliceBlockStart, templater.SliceBlockMid, templater.SliceBlockEnd:
			blockIdx++
		}
		raw = append(raw, templater.RawFileSlice{
			Raw:       tok.Raw,
			SliceType: sliceType,
			SourceIdx: tok.Offset,
			BlockIdx:  blockIdx,
		})
	}
	return raw
}

func sliceTypeOf(tok Token) string {
	switch tok.Type {
	case TokenExpr:
		return templater.SliceTemplated
	case TokenComment:
		return templater.SliceComment
	case TokenStmt:
		kind, _ := StmtKindOf(tok.Value)
		switch kind {
		case StmtIf, StmtFor:
			return templater.SliceBlockStart
		case StmtElif, StmtElse:
			return templater.SliceBlockMid
		case StmtEndIf, StmtEndFor:
			return templater.SliceBlockEnd
		}
		return templater.SliceTemplated
	}
	return templater.SliceLiteral
}

func hasTags(tokens []Token) bool {
	for _, tok := range tokens {
		if tok.Type != TokenText && tok.Type != TokenEOF {
			return true
		}
	}
	return false
}

func toTemplateError(err error) error {
	var te Error
	if !errors.As(err, &te) {
		return err
	}
	pos := te.Position()
	return &templater.TemplateError{Line: pos.Line, Column: pos.Column, Message: te.Message()}
}

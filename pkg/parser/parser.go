package parser

import (
	"errors"
	"log/slog"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// DefaultRoot is the library name of the file grammar.
const DefaultRoot = "FileSegment"

// Parser turns lexed segments into a tree using a grammar library.
type Parser struct {
	lib    Library
	cfg    Config
	root   string
	logger *slog.Logger
}

// New creates a parser over lib.
func New(lib Library, cfg Config) *Parser {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{lib: lib, cfg: cfg, root: DefaultRoot, logger: logger}
}

// WithRoot parses from another grammar than the file grammar.
func (p *Parser) WithRoot(name string) *Parser {
	c := *p
	c.root = name
	return &c
}

// Parse builds a file node from the lexed segments. The tree always holds
// every input segment: anything the grammar cannot match is wrapped in
// unparsable nodes. A non-nil error is a *ParseError for input the engine
// could not even match tentatively, such as unbalanced brackets; the tree
// returned alongside it is a single unparsable node.
func (p *Parser) Parse(segments []*segment.Segment, fname string) (*segment.Segment, error) {
	start := 0
	for start < len(segments) && !segments[start].IsCode() {
		start++
	}
	end := len(segments)
	for end > start && !segments[end-1].IsCode() {
		end--
	}
	if start == end {
		return segment.NewNode(syntax.File, segments), nil
	}

	grammar := p.lib.Grammar(p.root)
	if n, ok := grammar.(*NodeGrammar); ok {
		grammar = n.Grammar()
	}

	ctx := NewContext(p.lib, p.cfg)
	bounded := segments[:end]
	res, err := grammar.Match(bounded, start, ctx)
	if err != nil {
		var pe *ParseError
		if !errors.As(err, &pe) {
			pe = &ParseError{Message: err.Error(), Err: err}
		}
		p.logger.Debug("root parse failed", "file", fname, "error", pe)
		content := []*segment.Segment{segment.NewUnparsable(segments[start:end], pe.Message)}
		return p.file(segments, start, end, content), pe
	}

	var content []*segment.Segment
	switch {
	case !res.HasMatch():
		content = []*segment.Segment{segment.NewUnparsable(segments[start:end], grammar.String())}
	case res.Span.End < end:
		content = res.Apply(segments)
		tail := res.Span.End
		for tail < end && !segments[tail].IsCode() {
			content = append(content, segments[tail])
			tail++
		}
		content = append(content, segment.NewUnparsable(segments[tail:end], "Nothing else in FileSegment."))
	default:
		content = res.Apply(segments)
	}
	p.logger.Debug("parsed file", "file", fname, "segments", len(segments), "cache_entries", len(ctx.cache))
	return p.file(segments, start, end, content), nil
}

func (p *Parser) file(segments []*segment.Segment, start, end int, content []*segment.Segment) *segment.Segment {
	children := make([]*segment.Segment, 0, start+len(content)+len(segments)-end)
	children = append(children, segments[:start]...)
	children = append(children, content...)
	children = append(children, segments[end:]...)
	return segment.NewNode(syntax.File, children)
}

package template

import (
	"regexp"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

var (
	forPattern = regexp.MustCompile(`^([A-Za-z_]\w*(?:\s*,\s*[A-Za-z_]\w*)*)\s+in\s+(.+)$`)
	setPattern = regexp.MustCompile(`^([A-Za-z_]\w*)\s*=\s*(.+)$`)
)

// Parse lexes and parses a template.
func Parse(input, file string) (*Template, error) {
	tokens, err := NewLexer(input, file).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	nodes, term, kind, err := p.parseNodes(nil)
	if err != nil {
		return nil, err
	}
	if term != nil {
		return nil, NewUnmatchedBlockError(term.Pos, kind)
	}
	return &Template{Nodes: nodes, Tokens: tokens, File: file}, nil
}

type parser struct {
	tokens []Token
	pos    int
}

// StmtKindOf returns the kind of a statement and the text after its keyword.
func StmtKindOf(stmt string) (StmtKind, string) {
	keyword, rest := stmt, ""
	if i := strings.IndexAny(stmt, " \t\r\n"); i >= 0 {
		keyword, rest = stmt[:i], strings.TrimSpace(stmt[i:])
	}
	switch keyword {
	case "for":
		return StmtFor, rest
	case "endfor":
		return StmtEndFor, rest
	case "if":
		return StmtIf, rest
	case "elif":
		return StmtElif, rest
	case "else":
		return StmtElse, rest
	case "endif":
		return StmtEndIf, rest
	case "set":
		return StmtSet, rest
	}
	return StmtUnknown, rest
}

// parseNodes parses until EOF or a statement in stops. The terminating
// statement token is returned with its kind; a nil token means EOF.
func (p *parser) parseNodes(stops []StmtKind) ([]Node, *Token, StmtKind, error) {
	var nodes []Node
	for p.pos < len(p.tokens) {
		idx := p.pos
		tok := p.tokens[idx]
		p.pos++

		switch tok.Type {
		case TokenEOF:
			return nodes, nil, StmtUnknown, nil

		case TokenText:
			nodes = append(nodes, p.textNode(idx))

		case TokenExpr:
			if tok.Value == "" {
				return nil, nil, StmtUnknown, NewParseError(tok.Pos, "empty expression")
			}
			nodes = append(nodes, &ExprNode{nodeBase: nodeBase{pos: tok.Pos}, Expr: tok.Value, Source: sourceOf(tok)})

		case TokenComment:
			nodes = append(nodes, &CommentNode{nodeBase: nodeBase{pos: tok.Pos}, Source: sourceOf(tok)})

		case TokenStmt:
			kind, rest := StmtKindOf(tok.Value)
			switch kind {
			case StmtSet:
				m := setPattern.FindStringSubmatch(rest)
				if m == nil {
					return nil, nil, StmtUnknown, NewParseErrorf(tok.Pos, "malformed set statement %q", tok.Value)
				}
				nodes = append(nodes, &SetNode{nodeBase: nodeBase{pos: tok.Pos}, Name: m[1], Expr: m[2], Source: sourceOf(tok)})
			case StmtIf:
				block, err := p.parseIf(tok, rest)
				if err != nil {
					return nil, nil, StmtUnknown, err
				}
				nodes = append(nodes, block)
			case StmtFor:
				block, err := p.parseFor(tok, rest)
				if err != nil {
					return nil, nil, StmtUnknown, err
				}
				nodes = append(nodes, block)
			case StmtUnknown:
				keyword, _, _ := strings.Cut(tok.Value, " ")
				return nil, nil, StmtUnknown, NewParseErrorf(tok.Pos, "unknown tag %q", keyword)
			default:
				if !slices.Contains(stops, kind) {
					return nil, nil, StmtUnknown, NewUnmatchedBlockError(tok.Pos, kind)
				}
				return nodes, &p.tokens[idx], kind, nil
			}
		}
	}
	return nodes, nil, StmtUnknown, nil
}

func (p *parser) parseIf(open Token, cond string) (*IfBlock, error) {
	if cond == "" {
		return nil, NewParseError(open.Pos, "'if' requires a condition")
	}
	block := &IfBlock{nodeBase: nodeBase{pos: open.Pos}}
	current := Branch{Condition: cond, Tag: tagOf(open)}
	for {
		body, term, kind, err := p.parseNodes([]StmtKind{StmtElif, StmtElse, StmtEndIf})
		if err != nil {
			return nil, err
		}
		if term == nil {
			return nil, NewUnmatchedBlockError(open.Pos, StmtIf)
		}
		current.Body = body
		block.Branches = append(block.Branches, current)

		_, rest := StmtKindOf(term.Value)
		switch kind {
		case StmtElif:
			if current.IsElse {
				return nil, NewParseError(term.Pos, "'elif' after 'else'")
			}
			if rest == "" {
				return nil, NewParseError(term.Pos, "'elif' requires a condition")
			}
			current = Branch{Condition: rest, Tag: tagOf(*term)}
		case StmtElse:
			if current.IsElse {
				return nil, NewParseError(term.Pos, "duplicate 'else'")
			}
			current = Branch{IsElse: true, Tag: tagOf(*term)}
		default:
			block.End = tagOf(*term)
			return block, nil
		}
	}
}

func (p *parser) parseFor(open Token, rest string) (*ForBlock, error) {
	m := forPattern.FindStringSubmatch(rest)
	if m == nil {
		return nil, NewParseErrorf(open.Pos, "malformed for statement %q (expected 'for x in items')", open.Value)
	}
	block := &ForBlock{nodeBase: nodeBase{pos: open.Pos}, IterExpr: strings.TrimSpace(m[2]), Open: tagOf(open)}
	for _, name := range strings.Split(m[1], ",") {
		block.VarNames = append(block.VarNames, strings.TrimSpace(name))
	}

	body, term, kind, err := p.parseNodes([]StmtKind{StmtElse, StmtEndFor})
	if err != nil {
		return nil, err
	}
	if term == nil {
		return nil, NewUnmatchedBlockError(open.Pos, StmtFor)
	}
	block.Body = body
	if kind == StmtElse {
		tag := tagOf(*term)
		block.ElseTag = &tag
		block.Else, term, _, err = p.parseNodes([]StmtKind{StmtEndFor})
		if err != nil {
			return nil, err
		}
		if term == nil {
			return nil, NewUnmatchedBlockError(open.Pos, StmtFor)
		}
	}
	block.End = tagOf(*term)
	return block, nil
}

// textNode applies whitespace control from the neighbouring tags.
func (p *parser) textNode(idx int) *TextNode {
	tok := p.tokens[idx]
	start, stop := tok.Offset, tok.End()
	if idx > 0 && p.tokens[idx-1].TrimAfter {
		start += len(tok.Raw) - len(strings.TrimLeft(tok.Raw, " \t\r\n"))
	}
	if idx+1 < len(p.tokens) && p.tokens[idx+1].TrimBefore {
		stop -= len(tok.Raw) - len(strings.TrimRight(tok.Raw, " \t\r\n"))
	}
	if stop < start {
		stop = start
	}
	src := templater.Slice{Start: start, Stop: stop}
	return &TextNode{
		nodeBase: nodeBase{pos: tok.Pos},
		Text:     tok.Raw[start-tok.Offset : stop-tok.Offset],
		Source:   src,
	}
}

func sourceOf(tok Token) templater.Slice {
	return templater.Slice{Start: tok.Offset, Stop: tok.End()}
}

func tagOf(tok Token) Tag {
	return Tag{Source: sourceOf(tok), Pos: tok.Pos}
}

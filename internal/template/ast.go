// Package template is the jinja templater: {{ expr }} expressions,
// {% %} statements and {# #} comments. Expressions are evaluated with
// Starlark, and rendering records how every output byte maps to the source.
package template

import "github.com/leapstack-labs/sqlgrain/pkg/templater"

// Position tracks source location for error reporting.
type Position struct {
	File   string
	Line   int
	Column int
}

// Node is the interface for all template AST nodes.
type Node interface {
	Pos() Position
	node() // marker method to restrict implementation
}

// nodeBase provides common Position handling for all nodes.
type nodeBase struct {
	pos Position
}

func (n *nodeBase) Pos() Position { return n.pos }
func (n *nodeBase) node()         {}

// Tag is one {% %} tag of a block, with its source range.
type Tag struct {
	Source templater.Slice
	Pos    Position
}

// TextNode is literal SQL. Source is the range left after whitespace
// control trimmed it.
type TextNode struct {
	nodeBase
	Text   string
	Source templater.Slice
}

// ExprNode is a {{ expr }} expression.
type ExprNode struct {
	nodeBase
	Expr   string
	Source templater.Slice
}

// CommentNode is a {# #} comment. It renders nothing.
type CommentNode struct {
	nodeBase
	Source templater.Slice
}

// SetNode is {% set name = expr %}.
type SetNode struct {
	nodeBase
	Name   string
	Expr   string
	Source templater.Slice
}

// StmtKind identifies the type of control flow statement.
type StmtKind int

// StmtKind constants for control flow statement types.
const (
	StmtUnknown StmtKind = iota
	StmtFor
	StmtEndFor
	StmtIf
	StmtElif
	StmtElse
	StmtEndIf
	StmtSet
)

func (k StmtKind) String() string {
	switch k {
	case StmtFor:
		return "for"
	case StmtEndFor:
		return "endfor"
	case StmtIf:
		return "if"
	case StmtElif:
		return "elif"
	case StmtElse:
		return "else"
	case StmtEndIf:
		return "endif"
	case StmtSet:
		return "set"
	default:
		return "unknown"
	}
}

// ForBlock is a for loop. Else renders when the iterable is empty.
type ForBlock struct {
	nodeBase
	VarNames []string
	IterExpr string
	Body     []Node
	Else     []Node
	Open     Tag
	ElseTag  *Tag
	End      Tag
}

// IfBlock is an if/elif/else conditional. The last branch has an empty
// Condition when it is an else.
type IfBlock struct {
	nodeBase
	Branches []Branch
	End      Tag
}

// Branch is one arm of an IfBlock.
type Branch struct {
	Condition string
	Body      []Node
	Tag       Tag
	IsElse    bool
}

// Template represents a complete parsed template.
type Template struct {
	Nodes  []Node
	Tokens []Token
	File   string
}

package types

import "strconv"

// NodeType identifies the type of an AST node.
type NodeType string

// AST node types.
const (
	// Literals
	NodeNumber  NodeType = "number"
	NodeBoolean NodeType = "boolean"
	NodeString  NodeType = "string" // only legal as a string-keyed accessor argument

	// References
	NodeVariable NodeType = "variable" // bare identifier, resolved through the context
	NodeCall     NodeType = "call"     // built-in function or domain accessor

	// Operators
	NodeBinary NodeType = "binary" // + - * / % ^ > < >= <= == !=
	NodeUnary  NodeType = "unary"  // - !
)

// Position locates a token or node in the source text.
// Line and Column are 1-based, Column counts runes. Offset is the 0-based byte offset.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"-"`
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Node is a node of the Abstract Syntax Tree.
//
// Nodes are built bottom-up by the parser. Every node is owned by exactly one
// parent and there are no parent pointers, so the tree is acyclic by
// construction. Once parsing completes a tree is never modified.
type Node struct {
	Type NodeType
	Pos  Position

	Num  float64 // NodeNumber
	Bool bool    // NodeBoolean
	Str  string  // NodeString value, NodeVariable/NodeCall name, operator symbol

	LHS  *Node   // binary left operand, unary operand
	RHS  *Node   // binary right operand
	Args []*Node // call arguments
}

// NewNode creates a new AST node of the specified type.
func NewNode(nodeType NodeType, pos Position) *Node {
	return &Node{
		Type: nodeType,
		Pos:  pos,
	}
}

// Walk visits n and its descendants in source order (pre-order, left to right).
// Returning false from fn skips the children of the visited node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n.Type {
	case NodeBinary:
		Walk(n.LHS, fn)
		Walk(n.RHS, fn)
	case NodeUnary:
		Walk(n.LHS, fn)
	case NodeCall:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node) bool {
		total++
		return true
	})
	return total
}

// String renders the node back into fully parenthesised formula syntax.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case NodeNumber:
		return strconv.FormatFloat(n.Num, 'g', -1, 64)
	case NodeBoolean:
		return strconv.FormatBool(n.Bool)
	case NodeString:
		return strconv.Quote(n.Str)
	case NodeVariable:
		return n.Str
	case NodeUnary:
		return n.Str + n.LHS.String()
	case NodeBinary:
		return "(" + n.LHS.String() + " " + n.Str + " " + n.RHS.String() + ")"
	case NodeCall:
		s := n.Str + "("
		for i, a := range n.Args {
			if i > 0 {
				s += ", "
			}
			s += a.String()
		}
		return s + ")"
	default:
		return string(n.Type)
	}
}

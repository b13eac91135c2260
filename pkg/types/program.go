// Package types defines the core data model of the formula engine.
//
// This package contains type definitions for:
//   - Node: Abstract Syntax Tree nodes with source positions
//   - Program: a parsed formula ready for evaluation
//   - FormulaContext: the read-only values a formula is evaluated against
//   - ValidationResult / ExecutionResult: the engine's result envelopes
//   - Error: structured errors with kinds and positions
package types

// Program represents a parsed formula.
//
// A Program can be evaluated many times against different contexts. It is
// never modified after parsing and is safe for concurrent use by multiple
// goroutines.
type Program struct {
	root   *Node
	source string
	nodes  int
}

// NewProgram creates a new Program from an AST.
func NewProgram(root *Node, source string, nodes int) *Program {
	return &Program{
		root:   root,
		source: source,
		nodes:  nodes,
	}
}

// Root returns the root node of the Abstract Syntax Tree.
func (p *Program) Root() *Node {
	return p.root
}

// Source returns the original source text of the formula.
func (p *Program) Source() string {
	return p.source
}

// NodeCount returns the number of AST nodes produced by the parser.
func (p *Program) NodeCount() int {
	return p.nodes
}

// String returns the source text.
func (p *Program) String() string {
	return p.source
}

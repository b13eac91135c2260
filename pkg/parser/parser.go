// Package parser implements the tokenizer and parser of the formula language.
//
// The parser is a hand-written recursive descent parser using precedence
// climbing. It produces an immutable AST and reports every failure as a
// positioned *types.Error.
//
// # Architecture
//
// The parser consists of two components:
//   - Lexer: Tokenizes the formula into a stream of tokens
//   - Parser: Builds an Abstract Syntax Tree (AST) from tokens
//
// # Example
//
//	prog, err := parser.Parse(`dimension("fluency") * 0.4 + 60`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(prog.Root())
//
// # Grammar
//
// From tightest to loosest binding:
//   - unary - and !
//   - ^ (right-associative)
//   - * / %
//   - + -
//   - > < >= <= == != (left-associative, non-chaining)
//
// Logical combination is written with the and, or and not functions.
package parser

import (
	"github.com/sandrolain/goformula/pkg/types"
)

// Default complexity bounds.
const (
	DefaultMaxNodes = 500
	DefaultMaxDepth = 100
)

// Parse tokenizes and parses a formula.
//
// Example:
//
//	prog, err := parser.Parse("2 + 3 * 4")
//	if err != nil {
//	    var fe *types.Error
//	    if errors.As(err, &fe) {
//	        fmt.Printf("%s at %s\n", fe.Kind, fe.Position)
//	    }
//	    return
//	}
func Parse(source string, opts ...CompileOption) (*types.Program, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return ParseTokens(source, tokens, opts...)
}

// ParseTokens parses a token stream produced by Tokenize for source.
func ParseTokens(source string, tokens []Token, opts ...CompileOption) (*types.Program, error) {
	p := NewParser(source, tokens, opts...)
	return p.Parse()
}

// CompileOption configures parsing behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxNodes limits the number of AST nodes. Zero or less disables the check.
	MaxNodes int
	// MaxDepth limits expression nesting to prevent stack overflow.
	// Zero or less disables the check.
	MaxDepth int
}

// WithMaxNodes sets the maximum number of AST nodes.
func WithMaxNodes(n int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxNodes = n
	}
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}

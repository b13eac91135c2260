package parser

import (
	"fmt"

	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/types"
)

// Parser builds an AST from a token stream.
// Binary operators are parsed by precedence climbing; binding powers come
// from the operator registry.
type Parser struct {
	source  string
	tokens  []Token
	pos     int
	current Token
	opts    CompileOptions
	depth   int
	nodes   int
}

// NewParser creates a new parser over tokens. The stream must end with a
// TokenEOF, as returned by Tokenize.
func NewParser(source string, tokens []Token, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxNodes: DefaultMaxNodes,
		MaxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEOF {
		end := types.Position{Line: 1, Column: 1}
		if len(tokens) > 0 {
			end = tokens[len(tokens)-1].Pos
		}
		tokens = append(tokens[:len(tokens):len(tokens)], Token{Type: TokenEOF, Pos: end})
	}

	p := &Parser{
		source: source,
		tokens: tokens,
		opts:   options,
	}
	p.current = tokens[0]
	return p
}

// Parse parses exactly one expression and returns the Program.
func (p *Parser) Parse() (*types.Program, error) {
	if p.current.Type == TokenEOF {
		return nil, p.error("empty expression").WithHint("write a formula, e.g. dimension(\"fluency\") * 0.5")
	}

	root, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	switch p.current.Type {
	case TokenEOF:
	case TokenRParen:
		return nil, p.error("unmatched ')'").WithHint("remove the extra ')' or add a matching '('")
	default:
		return nil, p.error(fmt.Sprintf("unexpected %s after end of expression", p.current.describe())).
			WithHint("add an operator between the two operands")
	}

	return types.NewProgram(root, p.source, p.nodes), nil
}

// precedence returns the binding power of the current token.
func (p *Parser) precedence() int {
	if p.current.Type != TokenOperator {
		return 0
	}
	return functions.BinaryPrecedence(p.current.Text)
}

// advance moves to the next token. It stops at the trailing TokenEOF.
func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.current = p.tokens[p.pos]
}

// error creates a syntax error at the current token.
func (p *Parser) error(message string) *types.Error {
	return types.NewError(types.ErrSyntax, message, p.current.Pos).WithToken(p.current.Text)
}

// newNode creates a node and enforces the node budget.
func (p *Parser) newNode(nodeType types.NodeType, pos types.Position) (*types.Node, error) {
	p.nodes++
	if p.opts.MaxNodes > 0 && p.nodes > p.opts.MaxNodes {
		return nil, types.NewError(types.ErrComplexityExceeded,
			fmt.Sprintf("formula exceeds the maximum of %d nodes", p.opts.MaxNodes), pos)
	}
	return types.NewNode(nodeType, pos), nil
}

// parseExpression parses an expression with operator precedence.
// rbp is the right binding power (minimum precedence).
func (p *Parser) parseExpression(rbp int) (*types.Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return nil, types.NewError(types.ErrComplexityExceeded,
			fmt.Sprintf("formula exceeds the maximum nesting depth of %d", p.opts.MaxDepth), p.current.Pos)
	}

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for rbp < p.precedence() {
		left, err = p.parseBinaryOp(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parsePrefix parses an operand: a literal, name, call, unary operation or
// parenthesised group.
func (p *Parser) parsePrefix() (*types.Node, error) {
	t := p.current

	switch t.Type {
	case TokenNumber:
		node, err := p.newNode(types.NodeNumber, t.Pos)
		if err != nil {
			return nil, err
		}
		node.Num = t.Num
		p.advance()
		return node, nil

	case TokenString:
		node, err := p.newNode(types.NodeString, t.Pos)
		if err != nil {
			return nil, err
		}
		node.Str = t.Str
		p.advance()
		return node, nil

	case TokenIdentifier:
		return p.parseName()

	case TokenOperator:
		if _, ok := functions.LookupUnary(t.Text); ok {
			return p.parseUnary()
		}
		return nil, p.error(fmt.Sprintf("unexpected operator %s", t.describe())).WithHint("an operand is missing before the operator")

	case TokenLParen:
		return p.parseGrouping()

	case TokenEOF:
		return nil, p.error("unexpected end of input").WithHint("the formula ends where an operand is expected")

	default:
		return nil, p.error(fmt.Sprintf("unexpected %s", t.describe()))
	}
}

// parseName parses an identifier: a boolean literal, a call or a variable.
func (p *Parser) parseName() (*types.Node, error) {
	t := p.current

	if b, ok := lookupKeyword(t.Text); ok {
		node, err := p.newNode(types.NodeBoolean, t.Pos)
		if err != nil {
			return nil, err
		}
		node.Bool = b
		p.advance()
		return node, nil
	}

	p.advance()
	if p.current.Type == TokenLParen {
		return p.parseFunctionCall(t)
	}

	node, err := p.newNode(types.NodeVariable, t.Pos)
	if err != nil {
		return nil, err
	}
	node.Str = t.Text
	return node, nil
}

// parseFunctionCall parses an argument list. Called when the current token is
// the '(' following the function name.
func (p *Parser) parseFunctionCall(name Token) (*types.Node, error) {
	open := p.current
	p.advance() // Skip '('

	node, err := p.newNode(types.NodeCall, name.Pos)
	if err != nil {
		return nil, err
	}
	node.Str = name.Text
	node.Args = []*types.Node{}

	if p.current.Type == TokenRParen {
		p.advance()
		return node, nil
	}

	for {
		arg, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.Args = append(node.Args, arg)

		switch p.current.Type {
		case TokenComma:
			p.advance()
		case TokenRParen:
			p.advance()
			return node, nil
		case TokenEOF:
			return nil, p.error(fmt.Sprintf("missing ')' to close call to %s", name.Text)).
				WithHint(fmt.Sprintf("'(' opened at %s is never closed", open.Pos))
		default:
			return nil, p.error(fmt.Sprintf("expected ',' or ')' in call to %s, got %s", name.Text, p.current.describe()))
		}
	}
}

// parseUnary parses a prefix - or !. The operand binds tighter than any
// binary operator, so -2^2 is (-2)^2.
func (p *Parser) parseUnary() (*types.Node, error) {
	t := p.current
	p.advance()

	operand, err := p.parseExpression(functions.PrecUnary)
	if err != nil {
		return nil, err
	}

	node, err := p.newNode(types.NodeUnary, t.Pos)
	if err != nil {
		return nil, err
	}
	node.Str = t.Text
	node.LHS = operand
	return node, nil
}

// parseGrouping parses a parenthesised expression.
func (p *Parser) parseGrouping() (*types.Node, error) {
	open := p.current
	p.advance() // Skip '('

	if p.current.Type == TokenRParen {
		return nil, p.error("empty parentheses")
	}

	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenRParen {
		return nil, p.error(fmt.Sprintf("expected ')' but got %s", p.current.describe())).
			WithHint(fmt.Sprintf("'(' opened at %s is never closed", open.Pos))
	}
	p.advance()
	return expr, nil
}

// parseBinaryOp parses the right operand of the current infix operator.
func (p *Parser) parseBinaryOp(left *types.Node) (*types.Node, error) {
	t := p.current
	op, _ := functions.LookupBinary(t.Text)
	p.advance()

	rbp := op.Precedence
	if op.RightAssoc {
		rbp--
	}

	right, err := p.parseExpression(rbp)
	if err != nil {
		return nil, err
	}

	node, err := p.newNode(types.NodeBinary, t.Pos)
	if err != nil {
		return nil, err
	}
	node.Str = op.Symbol
	node.LHS = left
	node.RHS = right
	return node, nil
}

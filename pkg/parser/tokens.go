package parser

import "github.com/sandrolain/goformula/pkg/types"

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota

	// Literals
	TokenNumber     // 123, 3.14, 1e-10
	TokenString     // "fluency"
	TokenIdentifier // dimension, x, true

	// Symbols
	TokenOperator // + - * / % ^ > < >= <= == != !
	TokenLParen   // (
	TokenRParen   // )
	TokenComma    // ,
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenNumber:
		return "(number)"
	case TokenString:
		return "(string)"
	case TokenIdentifier:
		return "(identifier)"
	case TokenOperator:
		return "(operator)"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenComma:
		return ","
	default:
		return "(unknown)"
	}
}

// Token represents a lexical token of a formula.
type Token struct {
	Type TokenType      // Type of the token
	Text string         // Source text of the token
	Num  float64        // Parsed value of a TokenNumber
	Str  string         // Unquoted value of a TokenString
	Pos  types.Position // Starting position in the input string
}

// describe returns a short description of the token for error messages.
func (t Token) describe() string {
	if t.Type == TokenEOF {
		return "end of input"
	}
	return "'" + t.Text + "'"
}

// operators1 maps single-character operators.
var operators1 = [...]bool{
	'+': true,
	'-': true,
	'*': true,
	'/': true,
	'%': true,
	'^': true,
	'>': true,
	'<': true,
	'!': true,
}

// operators2 lists the two-character operators keyed by their first character.
var operators2 = map[rune]rune{
	'>': '=',
	'<': '=',
	'=': '=',
	'!': '=',
}

// isOperator1 reports whether r is a single-character operator.
func isOperator1(r rune) bool {
	return r >= 0 && int(r) < len(operators1) && operators1[r]
}

// lookupKeyword returns the boolean literal value of an identifier.
func lookupKeyword(s string) (value bool, ok bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
